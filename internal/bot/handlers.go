package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgbots/internal/analytics"
	"tgbots/internal/dialogue"
	"tgbots/internal/models"
)

const msgInternalError = "Что-то пошло не так. Попробуйте ещё раз или отправьте /start."

// HandleUpdate processes a single update from the webhook or polling loop.
// It never fails: errors are logged, recorded and answered with an apology.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	in, ok := decodeUpdate(update)
	if !ok {
		b.logger.Debug("Ignoring update", zap.Int("update_id", update.UpdateID))
		return
	}

	if b.dedup != nil && b.dedup.SeenAndMark(in.key) {
		b.logger.Debug("Dropping duplicate update", zap.String("key", in.key))
		return
	}

	// Answer the callback query to remove loading state
	if in.callbackID != "" {
		if err := b.sender.AnswerCallback(ctx, in.callbackID); err != nil {
			b.logger.Warn("Failed to answer callback", zap.String("callback_id", in.callbackID), zap.Error(err))
		}
	}

	err := b.users.UpsertUser(ctx, models.User{ID: in.user.ID, Username: in.user.Username})
	if err != nil {
		b.logger.Warn("Failed to upsert user", zap.String("user_id", in.user.ID), zap.Error(err))
	}

	b.dispatch(ctx, in)
}

// dispatch runs the engine and sends the replies while holding the user's lock
func (b *Bot) dispatch(ctx context.Context, in incoming) {
	unlock := b.locks.Lock(in.user.ID)
	defer unlock()

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.fail(ctx, in, fmt.Errorf("panic: %v", r))
		}
	}()

	analytics.Track(ctx, b.events, b.logger, b.Name(), in.user.ID, analytics.EventUpdate, eventName(in))

	replies, err := b.engine.Process(ctx, in.user, in.event)
	if err != nil {
		b.fail(ctx, in, err)
		return
	}

	for _, reply := range replies {
		if err := b.sender.Send(ctx, in.user.ChatID, reply); err != nil {
			b.logger.Error("Failed to send reply",
				zap.String("user_id", in.user.ID),
				zap.Int64("chat_id", in.user.ChatID),
				zap.Error(err))
		}
	}
}

func eventName(in incoming) string {
	switch in.event.Type {
	case dialogue.EventCommand:
		return "/" + in.event.Command
	case dialogue.EventCallback:
		return "callback"
	case dialogue.EventDocument:
		return "document"
	}
	return "text"
}

// fail logs and records an unexpected error, then apologizes to the user
func (b *Bot) fail(ctx context.Context, in incoming, cause error) {
	stage := "unknown"
	if s, err := b.engine.Stage(ctx, in.user.ID); err == nil {
		stage = s.String()
	}

	b.logger.Error("Failed to handle update",
		zap.String("user_id", in.user.ID),
		zap.String("stage", stage),
		zap.Error(cause))

	if b.events != nil {
		err := b.events.RecordError(ctx, models.ErrorRecord{
			Bot:     b.Name(),
			UserID:  in.user.ID,
			Stage:   stage,
			Message: cause.Error(),
		})
		if err != nil {
			b.logger.Warn("Failed to record error", zap.Error(err))
		}
	}

	if err := b.sender.Send(ctx, in.user.ChatID, dialogue.Reply{Text: msgInternalError}); err != nil {
		b.logger.Warn("Failed to send apology", zap.Error(err))
	}
}
