package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbots/internal/dedup"
	"tgbots/internal/dialogue"
)

// parseCommand splits "/cmd@bot args" into "cmd" and "args"
func parseCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(args), true
}

func userOf(from *tgbotapi.User, chatID int64) dialogue.User {
	return dialogue.User{
		ID:        strconv.FormatInt(from.ID, 10),
		ChatID:    chatID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
}

// decodeUpdate turns a Telegram update into a dialogue event.
// Updates without a sender (channel posts, edits) are ignored.
func decodeUpdate(update tgbotapi.Update) (incoming, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil {
			return incoming{}, false
		}
		chatID := q.From.ID
		if q.Message != nil && q.Message.Chat != nil {
			chatID = q.Message.Chat.ID
		}
		return incoming{
			key:        dedup.CallbackKey(q.ID),
			callbackID: q.ID,
			user:       userOf(q.From, chatID),
			event:      dialogue.Event{Type: dialogue.EventCallback, Data: q.Data},
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return incoming{}, false
	}

	in := incoming{
		key:  dedup.MessageKey(msg.Chat.ID, msg.MessageID, msg.Date),
		user: userOf(msg.From, msg.Chat.ID),
	}
	text := strings.TrimSpace(msg.Text)

	switch {
	case msg.Document != nil:
		in.event = dialogue.Event{
			Type: dialogue.EventDocument,
			Text: strings.TrimSpace(msg.Caption),
			Document: &dialogue.Document{
				FileID:   msg.Document.FileID,
				Name:     msg.Document.FileName,
				MimeType: msg.Document.MimeType,
				Size:     int64(msg.Document.FileSize),
			},
		}
	case strings.HasPrefix(text, "/"):
		command, args, ok := parseCommand(text)
		if !ok {
			in.event = dialogue.Event{Type: dialogue.EventText, Text: text}
			break
		}
		in.event = dialogue.Event{Type: dialogue.EventCommand, Text: text, Command: command, Args: args}
	default:
		in.event = dialogue.Event{Type: dialogue.EventText, Text: text}
	}
	return in, true
}
