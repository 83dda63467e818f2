package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Bot variants served by the binary
const (
	VariantWardrobe = "wardrobe"
	VariantCooking  = "cooking"
	VariantDocument = "document"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	Variant       string
	AdminUserIDs  []string

	// Bot mode configuration
	Polling     bool   // If true, use long polling instead of the webhook (local development)
	WebhookURL  string // Public base URL (required unless Polling is true)
	WebhookPath string
	Port        string

	// Session storage
	DatabasePath string
	UseMockDB    bool

	// ClickHouse analytics; empty host keeps analytics in memory
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// Collaborators
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	GeocodingURL      string
	WeatherURL        string
	CollabTimeout     time.Duration
	DocumentTimeout   time.Duration
	MaxDocumentBytes  int64

	// Dedup Guard
	DedupCapacity int
	DedupTTL      time.Duration

	LogLevel  string
	LogFormat string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	config.Variant = strings.ToLower(getEnv("BOT_VARIANT", VariantWardrobe))
	switch config.Variant {
	case VariantWardrobe, VariantCooking, VariantDocument:
	default:
		return nil, fmt.Errorf("invalid BOT_VARIANT %q (expected wardrobe, cooking or document)", config.Variant)
	}

	for _, id := range strings.Split(os.Getenv("ADMIN_USER_IDS"), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid user ID in ADMIN_USER_IDS: %s", id)
		}
		config.AdminUserIDs = append(config.AdminUserIDs, id)
	}

	var err error

	// Bot mode configuration
	if config.Polling, err = getBool("BOT_POLLING", false); err != nil {
		return nil, err
	}
	config.WebhookURL = os.Getenv("WEBHOOK_URL")
	if config.WebhookURL == "" && !config.Polling {
		return nil, fmt.Errorf("WEBHOOK_URL is required unless BOT_POLLING is true")
	}
	config.WebhookPath = getEnv("WEBHOOK_PATH", "/webhook")
	if !strings.HasPrefix(config.WebhookPath, "/") {
		config.WebhookPath = "/" + config.WebhookPath
	}
	config.Port = getEnv("PORT", "8080")

	config.DatabasePath = getEnv("DATABASE_PATH", "bot.db")
	if config.UseMockDB, err = getBool("USE_MOCK_DB", false); err != nil {
		return nil, err
	}

	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHousePort, err = getInt("CLICKHOUSE_PORT", 9000); err != nil {
		return nil, err
	}
	config.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
	config.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
	// Password is optional, can be empty
	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	if config.ClickHouseUseTLS, err = getBool("CLICKHOUSE_USE_TLS", false); err != nil {
		return nil, err
	}

	config.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	config.OpenRouterBaseURL = getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	config.OpenRouterModel = getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	config.GeocodingURL = getEnv("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1")
	config.WeatherURL = getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com/v1")
	if config.CollabTimeout, err = getDuration("COLLAB_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.DocumentTimeout, err = getDuration("DOCUMENT_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	maxBytes, err := getInt("MAX_DOCUMENT_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}
	config.MaxDocumentBytes = int64(maxBytes)

	if config.DedupCapacity, err = getInt("DEDUP_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if config.DedupTTL, err = getDuration("DEDUP_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	config.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	config.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "json"))

	return config, nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
