package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgbots/internal/analytics"
	"tgbots/internal/dedup"
	"tgbots/internal/dialogue"
	"tgbots/internal/storage"
)

// Sender delivers replies to Telegram
type Sender interface {
	Send(ctx context.Context, chatID int64, reply dialogue.Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Bot represents the Telegram bot wrapper around one dialogue engine
type Bot struct {
	api    *tgbotapi.BotAPI
	sender Sender
	engine *dialogue.Engine
	users  storage.UserStore
	events analytics.Recorder
	dedup  *dedup.Guard
	locks  dialogue.KeyedMutex
	logger *zap.Logger
}

// incoming is an update decoded into dialogue terms
type incoming struct {
	// key identifies the update for deduplication
	key        string
	callbackID string
	user       dialogue.User
	event      dialogue.Event
}
