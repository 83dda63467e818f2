package dialogue

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"tgbots/internal/models"
	"tgbots/internal/storage/stubs"
)

const (
	kindAsk  Kind = "ask"
	kindDone Kind = "done"
)

// counterFlow asks three questions and stores each answer under q<index>
type counterFlow struct {
	fail bool
}

func (f *counterFlow) Name() string  { return "counter" }
func (f *counterFlow) Kinds() []Kind { return []Kind{kindAsk, kindDone} }

func (f *counterFlow) Start(ctx context.Context, t *Turn) error {
	t.Say("hello", nil)
	t.Goto(kindAsk.At(0))
	return nil
}

func (f *counterFlow) Handle(ctx context.Context, t *Turn) error {
	if f.fail {
		return errors.New("boom")
	}
	if t.Stage.Kind != kindAsk {
		t.Say("idle", nil)
		return nil
	}
	if t.Event.Text == "" {
		t.Say("again", nil)
		return nil
	}
	t.Set("q"+string(rune('0'+t.Stage.Index)), t.Event.Text)
	if t.Stage.Index == 2 {
		t.Goto(kindDone.Stage())
		t.Say("done", nil)
		return nil
	}
	t.Goto(kindAsk.At(t.Stage.Index + 1))
	return nil
}

func newTestEngine(flow Flow) (*Engine, *stubs.MockDB) {
	db := stubs.NewMockDB()
	return NewEngine(flow, db, zap.NewNop()), db
}

func text(s string) Event { return Event{Type: EventText, Text: s} }

var startCommand = Event{Type: EventCommand, Command: "start", Text: "/start"}

func TestEngine_LinearChain(t *testing.T) {
	engine, db := newTestEngine(&counterFlow{})
	ctx := context.Background()
	user := User{ID: "1"}

	replies, err := engine.Process(ctx, user, startCommand)
	if err != nil {
		t.Fatalf("Failed to process /start: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != "hello" {
		t.Fatalf("Unexpected replies: %v", replies)
	}

	for _, answer := range []string{"a", "b", "c"} {
		if _, err := engine.Process(ctx, user, text(answer)); err != nil {
			t.Fatalf("Failed to process %q: %v", answer, err)
		}
	}

	session, _ := db.GetSession(ctx, "1")
	if session.Stage != string(kindDone) || session.Step != 0 {
		t.Errorf("Expected done, got %s#%d", session.Stage, session.Step)
	}
	want := map[string]string{"q0": "a", "q1": "b", "q2": "c"}
	for k, v := range want {
		if session.Payload[k] != v {
			t.Errorf("Expected %s=%s, got %q", k, v, session.Payload[k])
		}
	}
}

func TestEngine_UnrecognizedInputKeepsStage(t *testing.T) {
	engine, db := newTestEngine(&counterFlow{})
	ctx := context.Background()
	user := User{ID: "1"}

	engine.Process(ctx, user, startCommand)
	engine.Process(ctx, user, text("a"))

	replies, err := engine.Process(ctx, user, text(""))
	if err != nil {
		t.Fatalf("Failed to process: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != "again" {
		t.Errorf("Expected corrective reply, got %v", replies)
	}

	session, _ := db.GetSession(ctx, "1")
	if session.Stage != string(kindAsk) || session.Step != 1 {
		t.Errorf("Expected ask#1, got %s#%d", session.Stage, session.Step)
	}
}

func TestEngine_StartResetsFromAnyStage(t *testing.T) {
	engine, db := newTestEngine(&counterFlow{})
	ctx := context.Background()
	user := User{ID: "1"}

	engine.Process(ctx, user, startCommand)
	engine.Process(ctx, user, text("a"))
	engine.Process(ctx, user, text("b"))

	if _, err := engine.Process(ctx, user, startCommand); err != nil {
		t.Fatalf("Failed to process /start: %v", err)
	}

	session, _ := db.GetSession(ctx, "1")
	if session.Stage != string(kindAsk) || session.Step != 0 {
		t.Errorf("Expected ask#0 after reset, got %s#%d", session.Stage, session.Step)
	}
	if len(session.Payload) != 0 {
		t.Errorf("Expected payload to be cleared, got %v", session.Payload)
	}
	if db.SessionCount() != 1 {
		t.Errorf("Expected one session row, got %d", db.SessionCount())
	}
}

func TestEngine_UnknownStageIsIdle(t *testing.T) {
	engine, db := newTestEngine(&counterFlow{})
	ctx := context.Background()

	db.PutSession(ctx, models.Session{UserID: "1", Stage: "removed_stage", Step: 4, Payload: map[string]string{"x": "y"}})

	replies, err := engine.Process(ctx, User{ID: "1"}, text("hi"))
	if err != nil {
		t.Fatalf("Failed to process: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != "idle" {
		t.Errorf("Expected idle handling, got %v", replies)
	}

	session, _ := db.GetSession(ctx, "1")
	if session.Stage != string(KindIdle) || len(session.Payload) != 0 {
		t.Errorf("Expected normalized idle session, got %+v", session)
	}

	stage, err := engine.Stage(ctx, "1")
	if err != nil || stage != Idle {
		t.Errorf("Expected idle stage, got %v, %v", stage, err)
	}
}

func TestEngine_FirstContactCreatesSession(t *testing.T) {
	engine, db := newTestEngine(&counterFlow{})
	ctx := context.Background()

	if _, err := engine.Process(ctx, User{ID: "9"}, text("hi")); err != nil {
		t.Fatalf("Failed to process: %v", err)
	}
	session, _ := db.GetSession(ctx, "9")
	if session == nil || session.Stage != string(KindIdle) {
		t.Errorf("Expected idle session to be stored, got %+v", session)
	}
}

func TestEngine_FlowErrorDoesNotPersist(t *testing.T) {
	flow := &counterFlow{}
	engine, db := newTestEngine(flow)
	ctx := context.Background()
	user := User{ID: "1"}

	engine.Process(ctx, user, startCommand)
	flow.fail = true

	if _, err := engine.Process(ctx, user, text("a")); err == nil {
		t.Fatal("Expected error from failing flow")
	}
	session, _ := db.GetSession(ctx, "1")
	if session.Stage != string(kindAsk) || session.Step != 0 || len(session.Payload) != 0 {
		t.Errorf("Expected session untouched, got %+v", session)
	}
}

func TestStage_String(t *testing.T) {
	if got := kindAsk.At(2).String(); got != "ask#2" {
		t.Errorf("Expected ask#2, got %s", got)
	}
	if got := Idle.String(); got != "idle" {
		t.Errorf("Expected idle, got %s", got)
	}
}
