package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// WebhookURL joins the public base URL and the webhook route
func WebhookURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// StartWebhook registers the webhook with Telegram
func (b *Bot) StartWebhook(baseURL, path string) error {
	if b.api == nil {
		return errors.New("bot API is not configured")
	}
	url := WebhookURL(baseURL, path)
	b.logger.Info("Setting up webhook", zap.String("webhook_url", url))

	webhookConfig, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", url))
		return err
	}

	// Get webhook info to verify
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}
	return nil
}

// StartPolling receives updates by long polling until ctx is cancelled
func (b *Bot) StartPolling(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot API is not configured")
	}
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("Bot started successfully. Waiting for updates...")
	return b.consume(ctx, updates)
}

// consume handles updates one at a time until the channel closes or ctx is done
func (b *Bot) consume(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}
