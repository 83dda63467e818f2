// Package document converts PDF files to text and collects a rating for every
// conversion.
package document

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tgbots/internal/analytics"
	"tgbots/internal/collab"
	"tgbots/internal/collab/docs"
	"tgbots/internal/dialogue"
	"tgbots/internal/models"
	"tgbots/internal/report"
)

// Name identifies the bot variant
const Name = "document"

const (
	KindAwaitRating  dialogue.Kind = "await_rating"
	KindAwaitComment dialogue.Kind = "await_comment"
)

const (
	msgWelcome       = "Привет! Пришлите PDF-файл, и я верну его текст в .txt. Сканы тоже подойдут, их я распознаю."
	msgIdle          = "Пришлите PDF-файл документом, чтобы получить его текст."
	msgNotPDF        = "Я понимаю только PDF. Пришлите файл с расширением .pdf."
	msgTooLarge      = "Файл слишком большой: максимум %s."
	msgFailed        = "Не удалось извлечь текст из документа. Попробуйте другой файл."
	msgNoText        = "В документе не нашлось текста, даже после распознавания."
	msgAskRating     = "Оцените, пожалуйста, результат от 1 до 5."
	msgAskComment    = "Спасибо! Хотите оставить комментарий? Напишите его или отправьте /skip."
	msgThanks        = "Спасибо за отзыв!"
	msgRatingButtons = "Выберите оценку кнопкой под сообщением."
	msgUnknownAction = "Неизвестное действие"
	msgStale         = "Эта кнопка уже неактуальна."
	msgNotAllowed    = "Команда доступна только администраторам."
	msgExportFailed  = "Не удалось собрать отчёт, попробуйте позже."
)

// Downloader fetches a file the user sent
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Analytics is the recorder plus the reader behind /export
type Analytics interface {
	analytics.Recorder
	analytics.Reader
}

type Options struct {
	MaxBytes int64
	Timeout  time.Duration
	// Admins may run /export
	Admins []string
}

type Flow struct {
	downloader Downloader
	extractor  docs.Extractor
	events     Analytics
	opts       Options
	logger     *zap.Logger
}

// New creates the document flow
func New(downloader Downloader, extractor docs.Extractor, events Analytics, opts Options, logger *zap.Logger) *Flow {
	return &Flow{
		downloader: downloader,
		extractor:  extractor,
		events:     events,
		opts:       opts,
		logger:     logger,
	}
}

func (f *Flow) Name() string { return Name }

func (f *Flow) Kinds() []dialogue.Kind {
	return []dialogue.Kind{dialogue.KindIdle, KindAwaitRating, KindAwaitComment}
}

func (f *Flow) Start(ctx context.Context, t *dialogue.Turn) error {
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventStart, "")
	t.Say(msgWelcome, nil)
	return nil
}

func (f *Flow) Handle(ctx context.Context, t *dialogue.Turn) error {
	switch {
	case t.Event.Type == dialogue.EventDocument:
		return f.convert(ctx, t)
	case t.Event.IsCommand("export"):
		return f.export(ctx, t)
	case t.Event.Type == dialogue.EventCallback:
		return f.handleCallback(ctx, t)
	}

	switch t.Stage.Kind {
	case KindAwaitRating:
		if n, err := strconv.Atoi(strings.TrimSpace(t.Event.Text)); err == nil && n >= 1 && n <= 5 {
			return f.rate(t, n)
		}
		t.Say(msgRatingButtons, ratingKeyboard())
	case KindAwaitComment:
		// /skip or any other command leaves the comment empty
		comment := ""
		if t.Event.Type != dialogue.EventCommand {
			comment = strings.TrimSpace(t.Event.Text)
		}
		return f.saveFeedback(ctx, t, comment)
	default:
		t.Say(msgIdle, nil)
	}
	return nil
}

func ratingKeyboard() *dialogue.Keyboard {
	buttons := make([]dialogue.Button, 0, 5)
	for i := 1; i <= 5; i++ {
		buttons = append(buttons, dialogue.Button{Text: strconv.Itoa(i) + "⭐", Data: "rate|" + strconv.Itoa(i)})
	}
	return dialogue.InlineRow(buttons...)
}

// IsPDF accepts files by mime type or extension
func IsPDF(doc *dialogue.Document) bool {
	if doc == nil {
		return false
	}
	if strings.EqualFold(doc.MimeType, "application/pdf") {
		return true
	}
	return strings.EqualFold(path.Ext(doc.Name), ".pdf")
}

// TextName is the name of the converted file
func TextName(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "document"
	}
	return base + ".txt"
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return strconv.FormatInt(n/mb, 10) + " МБ"
	}
	return strconv.FormatInt(n/1024, 10) + " КБ"
}

func (f *Flow) convert(ctx context.Context, t *dialogue.Turn) error {
	doc := t.Event.Document
	if !IsPDF(doc) {
		t.Say(msgNotPDF, nil)
		return nil
	}
	if f.opts.MaxBytes > 0 && doc.Size > f.opts.MaxBytes {
		t.Say(fmt.Sprintf(msgTooLarge, formatBytes(f.opts.MaxBytes)), nil)
		return nil
	}
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventDocumentReceived, doc.Name)

	outcome := collab.Call(ctx, f.opts.Timeout, func(ctx context.Context) (docs.Result, error) {
		data, err := f.downloader.Download(ctx, doc.FileID)
		if err != nil {
			return docs.Result{}, fmt.Errorf("download: %w", err)
		}
		if f.opts.MaxBytes > 0 && int64(len(data)) > f.opts.MaxBytes {
			return docs.Result{}, fmt.Errorf("download: %d bytes exceeds limit", len(data))
		}
		return f.extractor.Extract(ctx, data)
	})

	if !outcome.OK {
		f.logger.Warn("Document conversion failed",
			zap.String("user_id", t.User.ID),
			zap.String("file", doc.Name),
			zap.String("reason", outcome.Reason))
		analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventConversionFailed, outcome.Reason)
		f.recordError(ctx, t, outcome.Reason)
		if errors.Is(outcome.Err, docs.ErrNoText) {
			t.Say(msgNoText, nil)
		} else {
			t.Say(msgFailed, nil)
		}
		return nil
	}

	result := outcome.Value
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventConversionOK,
		fmt.Sprintf("pages=%d ocr=%d", len(result.Pages), result.Count(docs.MethodOCR)))

	t.Send(dialogue.Reply{Document: &dialogue.Attachment{Name: TextName(doc.Name), Data: []byte(result.Text())}})
	t.Say(summary(result), nil)

	t.Set("file", doc.Name)
	t.Goto(KindAwaitRating.Stage())
	t.Say(msgAskRating, ratingKeyboard())
	return nil
}

func summary(r docs.Result) string {
	return fmt.Sprintf("Готово! Страниц: %d, с текстовым слоем: %d, распознано: %d, пустых: %d.",
		len(r.Pages), r.Count(docs.MethodNative), r.Count(docs.MethodOCR), r.Count(docs.MethodEmpty))
}

func (f *Flow) recordError(ctx context.Context, t *dialogue.Turn, message string) {
	err := f.events.RecordError(ctx, models.ErrorRecord{
		Bot:     Name,
		UserID:  t.User.ID,
		Stage:   t.Stage.String(),
		Message: message,
	})
	if err != nil {
		f.logger.Warn("Failed to record error", zap.Error(err))
	}
}

func (f *Flow) handleCallback(ctx context.Context, t *dialogue.Turn) error {
	data := t.Event.Data
	if !strings.HasPrefix(data, "rate|") {
		t.Say(msgUnknownAction, nil)
		return nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, "rate|"))
	if err != nil || n < 1 || n > 5 {
		t.Say(msgUnknownAction, nil)
		return nil
	}
	if t.Stage.Kind != KindAwaitRating {
		t.Say(msgStale, nil)
		return nil
	}
	return f.rate(t, n)
}

func (f *Flow) rate(t *dialogue.Turn, n int) error {
	t.Set("rating", strconv.Itoa(n))
	t.Goto(KindAwaitComment.Stage())
	t.Say(msgAskComment, nil)
	return nil
}

func (f *Flow) saveFeedback(ctx context.Context, t *dialogue.Turn, comment string) error {
	rating, err := strconv.Atoi(t.Get("rating"))
	if err != nil {
		// the payload lost its rating; start over
		t.Reset()
		t.Say(msgIdle, nil)
		return nil
	}

	err = f.events.RecordFeedback(ctx, models.Feedback{
		Bot:     Name,
		UserID:  t.User.ID,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventFeedback, strconv.Itoa(rating))

	t.Reset()
	t.Say(msgThanks, nil)
	return nil
}

func (f *Flow) isAdmin(userID string) bool {
	for _, id := range f.opts.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (f *Flow) export(ctx context.Context, t *dialogue.Turn) error {
	if !f.isAdmin(t.User.ID) {
		t.Say(msgNotAllowed, nil)
		return nil
	}

	now := time.Now().UTC()
	bot := strings.TrimSpace(t.Event.Args)
	data, err := report.Bytes(ctx, f.events, report.Options{Bot: bot, Now: now})
	if err != nil {
		f.logger.Error("Failed to build rating export", zap.Error(err))
		t.Say(msgExportFailed, nil)
		return nil
	}
	t.Send(dialogue.Reply{
		Text:     "Отчёт по оценкам",
		Document: &dialogue.Attachment{Name: report.FileName(bot, now), Data: data},
	})
	return nil
}
