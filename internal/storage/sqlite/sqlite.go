package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tgbots/internal/models"
	"tgbots/internal/storage"
)

// Migrations holds the SQLite schema managed by goose
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	// Dialect is the goose dialect of this store
	Dialect = "sqlite3"
	// MigrationsDir is the directory inside Migrations
	MigrationsDir = "migrations"
)

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database file at path
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}

// DB exposes the underlying handle for migration tooling
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// Initialize applies pending migrations; safe to call on every start
func (s *SQLiteDB) Initialize(ctx context.Context) error {
	_, err := storage.Migrate(ctx, s.db, Dialect, Migrations, MigrationsDir, storage.MigrateUp, true)
	return err
}

// UpsertUser inserts the user on first contact
func (s *SQLiteDB) UpsertUser(ctx context.Context, user models.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, username, gender, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, string(user.Gender), createdAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser returns the user or nil if unknown
func (s *SQLiteDB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	var gender string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, gender, created_at FROM users WHERE user_id = ?`, userID).
		Scan(&user.ID, &user.Username, &gender, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Gender = models.Gender(gender)
	return &user, nil
}

// SetUserGender updates the derived gender of a user
func (s *SQLiteDB) SetUserGender(ctx context.Context, userID string, gender models.Gender) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET gender = ? WHERE user_id = ?`, string(gender), userID)
	if err != nil {
		return fmt.Errorf("failed to set user gender: %w", err)
	}
	return nil
}

// GetSession returns the user's session or nil
func (s *SQLiteDB) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	var session models.Session
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, stage, step, payload, updated_at FROM sessions WHERE user_id = ?`, userID).
		Scan(&session.UserID, &session.Stage, &session.Step, &payload, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Payload = make(map[string]string)
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &session.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode session payload: %w", err)
		}
	}
	return &session, nil
}

// PutSession replaces the user's session row
func (s *SQLiteDB) PutSession(ctx context.Context, session models.Session) error {
	payload := session.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode session payload: %w", err)
	}

	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`REPLACE INTO sessions (user_id, stage, step, payload, updated_at) VALUES (?, ?, ?, ?, ?)`,
		session.UserID, session.Stage, session.Step, string(data), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetProfile returns the user's profile or nil
func (s *SQLiteDB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	var answers string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, answers, completed_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&profile.UserID, &answers, &profile.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &profile.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode profile answers: %w", err)
	}
	return &profile, nil
}

// SaveProfile replaces the user's profile
func (s *SQLiteDB) SaveProfile(ctx context.Context, profile models.Profile) error {
	data, err := json.Marshal(profile.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode profile answers: %w", err)
	}
	completedAt := profile.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`REPLACE INTO profiles (user_id, answers, completed_at) VALUES (?, ?, ?)`,
		profile.UserID, string(data), completedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// AddWardrobeItems appends items in a single transaction
func (s *SQLiteDB) AddWardrobeItems(ctx context.Context, items []models.WardrobeItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO wardrobe_items (user_id, category, item_name, color, style, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, item := range items {
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, item.UserID, item.Category, item.Name, item.Color, item.Style, createdAt); err != nil {
			return fmt.Errorf("failed to add wardrobe item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wardrobe items: %w", err)
	}
	return nil
}

// ListWardrobe returns the user's items in insertion order
func (s *SQLiteDB) ListWardrobe(ctx context.Context, userID string) ([]models.WardrobeItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, category, item_name, color, style, created_at FROM wardrobe_items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wardrobe: %w", err)
	}
	defer rows.Close()

	var items []models.WardrobeItem
	for rows.Next() {
		var item models.WardrobeItem
		if err := rows.Scan(&item.UserID, &item.Category, &item.Name, &item.Color, &item.Style, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wardrobe item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
