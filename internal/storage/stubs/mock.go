package stubs

import (
	"context"
	"maps"
	"sync"
	"time"

	"tgbots/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu       sync.RWMutex
	users    map[string]models.User
	sessions map[string]models.Session
	profiles map[string]models.Profile
	wardrobe []models.WardrobeItem
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
		profiles: make(map[string]models.Profile),
		wardrobe: make([]models.WardrobeItem, 0),
	}
}

// Initialize does nothing: the mock has no schema
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// UpsertUser stores the user unless it already exists
func (m *MockDB) UpsertUser(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.ID] = user
	return nil
}

// GetUser returns a copy of the stored user
func (m *MockDB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// SetUserGender updates the derived gender of an existing user
func (m *MockDB) SetUserGender(ctx context.Context, userID string, gender models.Gender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		user = models.User{ID: userID, CreatedAt: time.Now().UTC()}
	}
	user.Gender = gender
	m.users[userID] = user
	return nil
}

// GetSession returns a copy of the user's session
func (m *MockDB) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	session.Payload = maps.Clone(session.Payload)
	return &session, nil
}

// PutSession replaces the user's session
func (m *MockDB) PutSession(ctx context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.Payload = maps.Clone(session.Payload)
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}
	m.sessions[session.UserID] = session
	return nil
}

// SessionCount returns the number of stored sessions
func (m *MockDB) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// GetProfile returns a copy of the user's profile
func (m *MockDB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	profile.Answers = maps.Clone(profile.Answers)
	return &profile, nil
}

// SaveProfile replaces the user's profile
func (m *MockDB) SaveProfile(ctx context.Context, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.Answers = maps.Clone(profile.Answers)
	if profile.CompletedAt.IsZero() {
		profile.CompletedAt = time.Now().UTC()
	}
	m.profiles[profile.UserID] = profile
	return nil
}

// AddWardrobeItems appends items
func (m *MockDB) AddWardrobeItems(ctx context.Context, items []models.WardrobeItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		m.wardrobe = append(m.wardrobe, item)
	}
	return nil
}

// ListWardrobe returns the user's items in insertion order
func (m *MockDB) ListWardrobe(ctx context.Context, userID string) ([]models.WardrobeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []models.WardrobeItem
	for _, item := range m.wardrobe {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
