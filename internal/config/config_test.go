package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knownVars = []string{
	"BOT_VARIANT", "ADMIN_USER_IDS", "BOT_POLLING", "WEBHOOK_PATH", "PORT",
	"DATABASE_PATH", "USE_MOCK_DB", "CLICKHOUSE_HOST", "CLICKHOUSE_PORT",
	"CLICKHOUSE_DATABASE", "CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
	"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "OPENROUTER_MODEL",
	"GEOCODING_BASE_URL", "WEATHER_BASE_URL", "COLLAB_TIMEOUT", "DOCUMENT_TIMEOUT",
	"MAX_DOCUMENT_BYTES", "DEDUP_CAPACITY", "DEDUP_TTL", "LOG_LEVEL", "LOG_FORMAT",
}

// setRequired sets the mandatory variables and blanks the rest
func setRequired(t *testing.T) {
	for _, key := range knownVars {
		t.Setenv(key, "")
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, VariantWardrobe, cfg.Variant)
	assert.Equal(t, "/webhook", cfg.WebhookPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bot.db", cfg.DatabasePath)
	assert.False(t, cfg.Polling)
	assert.False(t, cfg.UseMockDB)
	assert.Empty(t, cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterBaseURL)
	assert.Equal(t, 10*time.Second, cfg.CollabTimeout)
	assert.Equal(t, time.Minute, cfg.DocumentTimeout)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxDocumentBytes)
	assert.Equal(t, 10000, cfg.DedupCapacity)
	assert.Equal(t, 10*time.Minute, cfg.DedupTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AdminUserIDs)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_VARIANT", "Document")
	t.Setenv("WEBHOOK_PATH", "tg")
	t.Setenv("ADMIN_USER_IDS", " 1, 22 ,")
	t.Setenv("CLICKHOUSE_HOST", "ch.local")
	t.Setenv("CLICKHOUSE_PORT", "9440")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")
	t.Setenv("DOCUMENT_TIMEOUT", "2m")
	t.Setenv("DEDUP_TTL", "30s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, VariantDocument, cfg.Variant)
	assert.Equal(t, "/tg", cfg.WebhookPath)
	assert.Equal(t, []string{"1", "22"}, cfg.AdminUserIDs)
	assert.Equal(t, "ch.local", cfg.ClickHouseHost)
	assert.Equal(t, 9440, cfg.ClickHousePort)
	assert.True(t, cfg.ClickHouseUseTLS)
	assert.Equal(t, 2*time.Minute, cfg.DocumentTimeout)
	assert.Equal(t, 30*time.Second, cfg.DedupTTL)
}

func TestLoadFromEnv_PollingWithoutWebhook(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("BOT_POLLING", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Polling)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing token", map[string]string{"TELEGRAM_BOT_TOKEN": ""}, "TELEGRAM_BOT_TOKEN"},
		{"missing webhook", map[string]string{"WEBHOOK_URL": ""}, "WEBHOOK_URL"},
		{"bad variant", map[string]string{"BOT_VARIANT": "library"}, "BOT_VARIANT"},
		{"bad admin", map[string]string{"ADMIN_USER_IDS": "1,abc"}, "ADMIN_USER_IDS"},
		{"bad port", map[string]string{"CLICKHOUSE_PORT": "x"}, "CLICKHOUSE_PORT"},
		{"bad bool", map[string]string{"USE_MOCK_DB": "maybe"}, "USE_MOCK_DB"},
		{"bad duration", map[string]string{"COLLAB_TIMEOUT": "10"}, "COLLAB_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
