package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tgbots/internal/analytics/ch"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "botadmin",
		Short:        "Maintenance commands for the Telegram bots",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

// clickHouseConfig reads the same CLICKHOUSE_* variables as the server
func clickHouseConfig() ch.Config {
	port, err := strconv.Atoi(getEnv("CLICKHOUSE_PORT", "9000"))
	if err != nil {
		port = 9000
	}
	return ch.Config{
		Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
		Port:     port,
		Database: getEnv("CLICKHOUSE_DATABASE", "default"),
		User:     getEnv("CLICKHOUSE_USER", "default"),
		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		UseTLS:   getEnv("CLICKHOUSE_USE_TLS", "false") == "true",
	}
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
