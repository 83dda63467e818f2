package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAdmin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrate_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bot.db")

	out, err := runAdmin(t, "migrate", "up", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations completed successfully")

	out, err = runAdmin(t, "migrate", "version", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Current migration version: 1")

	out, err = runAdmin(t, "migrate", "down", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Rollback completed successfully")

	out, err = runAdmin(t, "migrate", "version", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Current migration version: 0")
}

func TestMigrate_InvalidArgs(t *testing.T) {
	_, err := runAdmin(t, "migrate", "sideways")
	assert.Error(t, err)

	_, err = runAdmin(t, "migrate", "up", "--target", "postgres")
	assert.Error(t, err)
}
