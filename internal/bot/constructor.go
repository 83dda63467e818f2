package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgbots/internal/analytics"
	"tgbots/internal/dedup"
	"tgbots/internal/dialogue"
	"tgbots/internal/storage"
)

// NewAPI connects to the Bot API and checks the token
func NewAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot API connected", zap.String("bot_username", api.Self.UserName))
	return api, nil
}

// NewBot creates a bot that feeds updates into the engine and answers through api
func NewBot(api *tgbotapi.BotAPI, engine *dialogue.Engine, users storage.UserStore, events analytics.Recorder, guard *dedup.Guard, logger *zap.Logger) *Bot {
	return &Bot{
		api:    api,
		sender: NewTelegramSender(api),
		engine: engine,
		users:  users,
		events: events,
		dedup:  guard,
		logger: logger,
	}
}

// Name is the bot variant served
func (b *Bot) Name() string {
	return b.engine.Flow().Name()
}

// GetAPI returns the bot API
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
