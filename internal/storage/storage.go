package storage

import (
	"context"

	"tgbots/internal/models"
)

// SessionStore keeps exactly one session per user
type SessionStore interface {
	// GetSession returns nil, nil when the user has no session yet
	GetSession(ctx context.Context, userID string) (*models.Session, error)
	// PutSession replaces the whole session row
	PutSession(ctx context.Context, session models.Session) error
}

// UserStore keeps users who have written to the bot
type UserStore interface {
	// UpsertUser creates the user on first contact; existing rows are left untouched
	UpsertUser(ctx context.Context, user models.User) error
	// GetUser returns nil, nil for unknown users
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SetUserGender(ctx context.Context, userID string, gender models.Gender) error
}

// ProfileStore keeps completed questionnaires
type ProfileStore interface {
	// GetProfile returns nil, nil when the questionnaire was never completed
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// SaveProfile replaces any previous profile of the user
	SaveProfile(ctx context.Context, profile models.Profile) error
}

// WardrobeStore keeps user-contributed clothing items
type WardrobeStore interface {
	AddWardrobeItems(ctx context.Context, items []models.WardrobeItem) error
	// ListWardrobe returns items in insertion order
	ListWardrobe(ctx context.Context, userID string) ([]models.WardrobeItem, error)
}

// Storage defines the interface for data storage operations
type Storage interface {
	SessionStore
	UserStore
	ProfileStore
	WardrobeStore

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
