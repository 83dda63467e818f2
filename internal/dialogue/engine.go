package dialogue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tgbots/internal/models"
	"tgbots/internal/storage"
)

// Flow is the dialogue table of one bot
type Flow interface {
	// Name identifies the bot in logs and analytics
	Name() string
	// Kinds lists every stage kind the flow can put a session into, idle included
	Kinds() []Kind
	// Start runs after a global reset (/start); the turn is already idle with an empty payload
	Start(ctx context.Context, t *Turn) error
	// Handle processes any other event in the turn's current stage
	Handle(ctx context.Context, t *Turn) error
}

// Engine loads the session, runs the flow and persists the result
type Engine struct {
	flow     Flow
	sessions storage.SessionStore
	kinds    map[Kind]bool
	logger   *zap.Logger
}

// NewEngine creates an engine for the flow
func NewEngine(flow Flow, sessions storage.SessionStore, logger *zap.Logger) *Engine {
	kinds := map[Kind]bool{KindIdle: true}
	for _, k := range flow.Kinds() {
		kinds[k] = true
	}
	return &Engine{flow: flow, sessions: sessions, kinds: kinds, logger: logger}
}

// Flow returns the flow run by the engine
func (e *Engine) Flow() Flow {
	return e.flow
}

// Stage returns the user's current stage, idle when there is no session
func (e *Engine) Stage(ctx context.Context, userID string) (Stage, error) {
	session, err := e.sessions.GetSession(ctx, userID)
	if err != nil {
		return Idle, err
	}
	if session == nil || !e.kinds[Kind(session.Stage)] {
		return Idle, nil
	}
	return Stage{Kind: Kind(session.Stage), Index: session.Step}, nil
}

// Process handles one event for one user and returns the replies in order.
// Callers serialize calls per user.
func (e *Engine) Process(ctx context.Context, user User, event Event) ([]Reply, error) {
	session, err := e.sessions.GetSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	stage := Idle
	var payload map[string]string
	normalized := false
	if session != nil {
		stage = Stage{Kind: Kind(session.Stage), Index: session.Step}
		payload = session.Payload
		if !e.kinds[stage.Kind] {
			e.logger.Warn("Unknown stage, resetting session",
				zap.String("user_id", user.ID),
				zap.String("stage", session.Stage))
			stage, payload, normalized = Idle, nil, true
		}
	}

	turn := NewTurn(user, event, stage, payload)
	if event.IsCommand("start") {
		turn.Reset()
		err = e.flow.Start(ctx, turn)
	} else {
		err = e.flow.Handle(ctx, turn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s flow failed at %s: %w", e.flow.Name(), stage, err)
	}

	if turn.Changed() || normalized || session == nil {
		err = e.sessions.PutSession(ctx, models.Session{
			UserID:    user.ID,
			Stage:     string(turn.Stage.Kind),
			Step:      turn.Stage.Index,
			Payload:   turn.Payload,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}

	e.logger.Debug("Processed event",
		zap.String("user_id", user.ID),
		zap.String("from", stage.String()),
		zap.String("to", turn.Stage.String()),
		zap.Int("replies", len(turn.Replies())))

	return turn.Replies(), nil
}
