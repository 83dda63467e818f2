package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbots/internal/dialogue"
)

// TelegramSender sends replies through the Bot API
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

// Send delivers one reply; a document reply carries the text as its caption
func (s *TelegramSender) Send(ctx context.Context, chatID int64, reply dialogue.Reply) error {
	if s.api == nil {
		return nil // For testing
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var c tgbotapi.Chattable
	switch {
	case reply.Document != nil:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: reply.Document.Name, Bytes: reply.Document.Data})
		doc.Caption = reply.Text
		if markup := replyMarkup(reply.Keyboard); markup != nil {
			doc.ReplyMarkup = markup
		}
		c = doc
	case reply.Text != "":
		msg := tgbotapi.NewMessage(chatID, reply.Text)
		if markup := replyMarkup(reply.Keyboard); markup != nil {
			msg.ReplyMarkup = markup
		}
		c = msg
	default:
		return nil
	}

	if _, err := s.api.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query without a toast
func (s *TelegramSender) AnswerCallback(ctx context.Context, callbackID string) error {
	if s.api == nil {
		return nil // For testing
	}
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// replyMarkup converts a keyboard to its Bot API form; nil means no markup
func replyMarkup(kb *dialogue.Keyboard) any {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	case kb.Inline:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// FileURLResolver turns a file id into a download URL; *tgbotapi.BotAPI implements it
type FileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// FileDownloader fetches files users sent to the bot
type FileDownloader struct {
	files    FileURLResolver
	client   *http.Client
	maxBytes int64
}

func NewFileDownloader(files FileURLResolver, timeout time.Duration, maxBytes int64) *FileDownloader {
	return &FileDownloader{
		files:    files,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Download reads the whole file; files above maxBytes are rejected
func (d *FileDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := d.files.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", d.maxBytes)
	}
	return data, nil
}
