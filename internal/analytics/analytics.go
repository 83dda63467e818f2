package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tgbots/internal/models"
)

// Event names shared by the bots
const (
	EventStart             = "start"
	EventUpdate            = "update"
	EventDocumentReceived  = "document_received"
	EventConversionOK      = "conversion_ok"
	EventConversionFailed  = "conversion_failed"
	EventFeedback          = "feedback"
	EventRecommendation    = "recommendation"
	EventProfileCompleted  = "profile_completed"
	EventWardrobeCompleted = "wardrobe_completed"
	EventRecipeFinished    = "recipe_finished"
)

// Recorder stores analytics records
type Recorder interface {
	RecordEvent(ctx context.Context, event models.Event) error
	RecordError(ctx context.Context, record models.ErrorRecord) error
	RecordFeedback(ctx context.Context, feedback models.Feedback) error
}

// Reader answers the queries behind the rating export.
// An empty bot name means all bots.
type Reader interface {
	Overview(ctx context.Context, bot string) (models.Overview, error)
	DailyEvents(ctx context.Context, bot string, since time.Time) ([]models.DailyEventCount, error)
	ErrorsAggregated(ctx context.Context, bot string) ([]models.ErrorAggregate, error)
	RecentErrors(ctx context.Context, bot string, limit int) ([]models.ErrorRecord, error)
	ListFeedback(ctx context.Context, bot string) ([]models.Feedback, error)
}

// Store is a complete analytics backend
type Store interface {
	Recorder
	Reader

	Initialize(ctx context.Context) error
	Close() error
}

// Track records an event, logging instead of failing when the store rejects it
func Track(ctx context.Context, rec Recorder, logger *zap.Logger, bot, userID, name, details string) {
	if rec == nil {
		return
	}
	err := rec.RecordEvent(ctx, models.Event{Bot: bot, UserID: userID, Name: name, Details: details})
	if err != nil {
		logger.Warn("Failed to record event", zap.String("event", name), zap.Error(err))
	}
}
