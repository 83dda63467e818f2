package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tgbots/internal/analytics"
	"tgbots/internal/analytics/ch"
	astubs "tgbots/internal/analytics/stubs"
	"tgbots/internal/bot"
	"tgbots/internal/collab/docs"
	"tgbots/internal/collab/llm"
	"tgbots/internal/collab/weather"
	"tgbots/internal/config"
	"tgbots/internal/dedup"
	"tgbots/internal/dialogue"
	"tgbots/internal/flows/cooking"
	"tgbots/internal/flows/document"
	"tgbots/internal/flows/wardrobe"
	"tgbots/internal/storage"
	"tgbots/internal/storage/sqlite"
	"tgbots/internal/storage/stubs"
)

// App represents the application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	db        storage.Storage
	analytics analytics.Store
	bot       *bot.Bot
	server    *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting bot", zap.String("variant", cfg.Variant), zap.Bool("polling", cfg.Polling))

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initAnalytics(ctx); err != nil {
		app.db.Close()
		return nil, err
	}

	if err := app.initBot(); err != nil {
		app.close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// NewLogger builds the process logger. format "console" selects the development encoder.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// initDatabase opens session storage
func (a *App) initDatabase(ctx context.Context) error {
	var db storage.Storage
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()
	} else {
		a.logger.Info("Opening SQLite database", zap.String("path", a.config.DatabasePath))
		sqliteDB, err := sqlite.NewSQLiteDB(a.config.DatabasePath)
		if err != nil {
			return err
		}
		db = sqliteDB
	}

	// Apply schema migrations
	if err := db.Initialize(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initAnalytics connects to ClickHouse when configured, otherwise keeps analytics in memory
func (a *App) initAnalytics(ctx context.Context) error {
	if a.config.ClickHouseHost == "" {
		a.logger.Info("ClickHouse is not configured, keeping analytics in memory")
		a.analytics = astubs.NewMemoryAnalytics(0)
		return nil
	}

	a.logger.Info("Connecting to ClickHouse",
		zap.String("host", a.config.ClickHouseHost),
		zap.Int("port", a.config.ClickHousePort),
		zap.String("database", a.config.ClickHouseDatabase),
		zap.String("user", a.config.ClickHouseUser),
		zap.Bool("tls", a.config.ClickHouseUseTLS),
	)
	store, err := ch.NewClickHouseDB(ctx, ch.Config{
		Host:     a.config.ClickHouseHost,
		Port:     a.config.ClickHousePort,
		Database: a.config.ClickHouseDatabase,
		User:     a.config.ClickHouseUser,
		Password: a.config.ClickHousePassword,
		UseTLS:   a.config.ClickHouseUseTLS,
	})
	if err != nil {
		return err
	}
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return fmt.Errorf("failed to initialize analytics: %w", err)
	}
	a.logger.Info("Analytics initialized successfully")

	a.analytics = store
	return nil
}

// initBot connects to Telegram and assembles the dialogue engine of the configured variant
func (a *App) initBot() error {
	api, err := bot.NewAPI(a.config.TelegramToken, a.logger)
	if err != nil {
		return err
	}

	flow, err := NewFlow(a.config, a.db, a.analytics, api, a.logger)
	if err != nil {
		return err
	}

	engine := dialogue.NewEngine(flow, a.db, a.logger)
	guard := dedup.New(a.config.DedupCapacity, a.config.DedupTTL)
	a.bot = bot.NewBot(api, engine, a.db, a.analytics, guard, a.logger)
	return nil
}

// NewFlow builds the dialogue flow of cfg.Variant with its collaborators
func NewFlow(cfg *config.Config, db storage.Storage, events analytics.Store, files bot.FileURLResolver, logger *zap.Logger) (dialogue.Flow, error) {
	logger = logger.With(zap.String("bot", cfg.Variant))
	chat := llm.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
	if !chat.Enabled() {
		logger.Info("OPENROUTER_API_KEY is not set, language model features are disabled")
	}

	switch cfg.Variant {
	case config.VariantWardrobe:
		provider := weather.NewClient(cfg.GeocodingURL, cfg.WeatherURL, cfg.CollabTimeout)
		return wardrobe.New(db, provider, chat, events, cfg.CollabTimeout, logger), nil

	case config.VariantCooking:
		return cooking.New(db, chat, events, cfg.CollabTimeout, logger), nil

	case config.VariantDocument:
		var rasterizer docs.Rasterizer
		var recognizer docs.Recognizer
		poppler, tesseract := docs.Poppler{}, docs.Tesseract{}
		if docs.Available(poppler, tesseract) {
			rasterizer, recognizer = poppler, tesseract
		} else {
			logger.Warn("pdftoppm or tesseract not found, OCR is disabled")
		}
		extractor := docs.NewPipeline(docs.PDFReader{}, rasterizer, recognizer, docs.DefaultOptions(), logger)
		downloader := bot.NewFileDownloader(files, cfg.DocumentTimeout, cfg.MaxDocumentBytes)
		return document.New(downloader, extractor, events, document.Options{
			MaxBytes: cfg.MaxDocumentBytes,
			Timeout:  cfg.DocumentTimeout,
			Admins:   cfg.AdminUserIDs,
		}, logger), nil
	}
	return nil, fmt.Errorf("unknown bot variant: %s", cfg.Variant)
}

// initHTTPServer prepares the HTTP server for health checks and the webhook
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:              ":" + a.config.Port,
		Handler:           a.bot.Routes(a.config.WebhookPath),
		ReadHeaderTimeout: 10 * time.Second,
		// Long enough for a document conversion answered inside the webhook request
		WriteTimeout: a.config.DocumentTimeout + 30*time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start bot in appropriate mode
	if a.config.Polling {
		go func() {
			if err := a.bot.StartPolling(ctx); err != nil {
				errChan <- fmt.Errorf("polling stopped: %w", err)
			}
		}()
	} else {
		if err := a.bot.StartWebhook(a.config.WebhookURL, a.config.WebhookPath); err != nil {
			a.Shutdown()
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured", zap.String("path", a.config.WebhookPath))
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	case runErr = <-errChan:
		a.logger.Error("Application error", zap.Error(runErr))
	}

	a.logger.Info("Shutting down...")
	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	// Shutdown HTTP server gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	err := a.close()
	if err != nil {
		a.logger.Error("Error closing storage", zap.Error(err))
	} else {
		a.logger.Info("Shutdown complete")
	}
	a.logger.Sync()
	return err
}

func (a *App) close() error {
	var errs []error
	if a.analytics != nil {
		errs = append(errs, a.analytics.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

var _ bot.FileURLResolver = (*tgbotapi.BotAPI)(nil)
