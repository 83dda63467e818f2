package dialogue

import "maps"

// EventType tells what the user did
type EventType int

const (
	EventText EventType = iota
	EventCommand
	EventCallback
	EventDocument
)

// User identifies who the update came from
type User struct {
	ID        string
	ChatID    int64
	Username  string
	FirstName string
}

// Document is a file attached to an incoming message
type Document struct {
	FileID   string
	Name     string
	MimeType string
	Size     int64
}

// Event is a decoded incoming update
type Event struct {
	Type EventType
	// Text is the message text, or the caption of a document
	Text string
	// Command is set for EventCommand without the leading slash; Args holds the rest
	Command string
	Args    string
	// Data is the callback payload for EventCallback
	Data     string
	Document *Document
}

// IsCommand reports whether the event is the given slash command
func (e Event) IsCommand(name string) bool {
	return e.Type == EventCommand && e.Command == name
}

// Button is a keyboard button. Data is only used by inline keyboards.
type Button struct {
	Text string
	Data string
}

// Keyboard is attached to a reply. Inline keyboards send callbacks,
// reply keyboards send their text as a message.
type Keyboard struct {
	Inline bool
	Rows   [][]Button
	Remove bool
}

// InlineRow builds a single-row inline keyboard
func InlineRow(buttons ...Button) *Keyboard {
	return &Keyboard{Inline: true, Rows: [][]Button{buttons}}
}

// InlineColumn builds an inline keyboard with one button per row
func InlineColumn(buttons ...Button) *Keyboard {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return &Keyboard{Inline: true, Rows: rows}
}

// Attachment is an outgoing file
type Attachment struct {
	Name string
	Data []byte
}

// Reply is one outgoing message
type Reply struct {
	Text     string
	Keyboard *Keyboard
	Document *Attachment
}

// Turn is the state of a single update being processed by a flow
type Turn struct {
	User    User
	Event   Event
	Stage   Stage
	Payload map[string]string

	replies []Reply
	dirty   bool
}

// NewTurn creates a turn; payload is copied
func NewTurn(user User, event Event, stage Stage, payload map[string]string) *Turn {
	p := maps.Clone(payload)
	if p == nil {
		p = make(map[string]string)
	}
	return &Turn{User: user, Event: event, Stage: stage, Payload: p}
}

// Goto moves the user to another stage
func (t *Turn) Goto(stage Stage) {
	if t.Stage != stage {
		t.Stage = stage
		t.dirty = true
	}
}

// Set stores a value in the session payload
func (t *Turn) Set(key, value string) {
	if old, ok := t.Payload[key]; ok && old == value {
		return
	}
	t.Payload[key] = value
	t.dirty = true
}

// Get returns a payload value or ""
func (t *Turn) Get(key string) string {
	return t.Payload[key]
}

// Reset returns to idle and clears the payload
func (t *Turn) Reset() {
	if t.Stage != Idle || len(t.Payload) > 0 {
		t.dirty = true
	}
	t.Stage = Idle
	t.Payload = make(map[string]string)
}

// Say queues a text reply with an optional keyboard
func (t *Turn) Say(text string, keyboard *Keyboard) {
	t.replies = append(t.replies, Reply{Text: text, Keyboard: keyboard})
}

// Send queues an arbitrary reply
func (t *Turn) Send(reply Reply) {
	t.replies = append(t.replies, reply)
}

// Replies returns the queued replies in emission order
func (t *Turn) Replies() []Reply {
	return t.replies
}

// Changed reports whether stage or payload were modified
func (t *Turn) Changed() bool {
	return t.dirty
}
