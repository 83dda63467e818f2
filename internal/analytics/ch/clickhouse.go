package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"tgbots/internal/models"
)

// Migrations holds the analytics schema managed by goose
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	// Dialect is the goose dialect of this store
	Dialect = "clickhouse"
	// MigrationsDir is the directory inside Migrations
	MigrationsDir = "migrations"
)

// Config describes a ClickHouse connection
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseTLS   bool
}

func (c Config) options() *clickhouse.Options {
	options := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", c.Host, c.Port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.User,
			Password: c.Password,
		},
	}
	if c.UseTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}
	return options
}

// OpenDB returns a database/sql handle for goose migrations
func OpenDB(cfg Config) *sql.DB {
	return clickhouse.OpenDB(cfg.options())
}

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse analytics connection
func NewClickHouseDB(ctx context.Context, cfg Config) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(cfg.options())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize creates the analytics tables if they are missing.
// The statements come from the Up section of the goose migrations.
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	statements, err := upStatements()
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if err := db.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create analytics schema: %w", err)
		}
	}
	return nil
}

func upStatements() ([]string, error) {
	entries, err := Migrations.ReadDir(MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var statements []string
	for _, entry := range entries {
		data, err := Migrations.ReadFile(MigrationsDir + "/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		up := string(data)
		if i := strings.Index(up, "-- +goose Down"); i >= 0 {
			up = up[:i]
		}
		up = strings.Replace(up, "-- +goose Up", "", 1)
		for _, stmt := range strings.Split(up, ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// RecordEvent stores a funnel event
func (db *ClickHouseDB) RecordEvent(ctx context.Context, event models.Event) error {
	err := db.conn.Exec(ctx, `INSERT INTO events (id, ts, bot, user_id, name, details) VALUES (?, ?, ?, ?, ?, ?)`,
		newID(event.ID), stamp(event.Time), event.Bot, event.UserID, event.Name, event.Details)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// RecordError stores a failure raised while handling an update
func (db *ClickHouseDB) RecordError(ctx context.Context, record models.ErrorRecord) error {
	err := db.conn.Exec(ctx, `INSERT INTO errors (id, ts, bot, user_id, stage, message) VALUES (?, ?, ?, ?, ?, ?)`,
		newID(record.ID), stamp(record.Time), record.Bot, record.UserID, record.Stage, record.Message)
	if err != nil {
		return fmt.Errorf("failed to record error: %w", err)
	}
	return nil
}

// RecordFeedback stores a user rating
func (db *ClickHouseDB) RecordFeedback(ctx context.Context, feedback models.Feedback) error {
	err := db.conn.Exec(ctx, `INSERT INTO feedback (id, ts, bot, user_id, rating, comment) VALUES (?, ?, ?, ?, ?, ?)`,
		newID(feedback.ID), stamp(feedback.Time), feedback.Bot, feedback.UserID, uint8(feedback.Rating), feedback.Comment)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// Overview returns the headline numbers of the rating export
func (db *ClickHouseDB) Overview(ctx context.Context, bot string) (models.Overview, error) {
	var overview models.Overview
	var users, events, conversions, failures uint64

	err := db.conn.QueryRow(ctx, `
		SELECT
			uniqExact(user_id),
			count(),
			countIf(name = 'conversion_ok'),
			countIf(name = 'conversion_failed')
		FROM events
		WHERE (? = '' OR bot = ?)
	`, bot, bot).Scan(&users, &events, &conversions, &failures)
	if err != nil {
		return overview, fmt.Errorf("failed to query event totals: %w", err)
	}

	var errorsCount uint64
	err = db.conn.QueryRow(ctx, `SELECT count() FROM errors WHERE (? = '' OR bot = ?)`, bot, bot).Scan(&errorsCount)
	if err != nil {
		return overview, fmt.Errorf("failed to query error totals: %w", err)
	}

	var ratings uint64
	var average float64
	err = db.conn.QueryRow(ctx, `
		SELECT count(), if(count() = 0, 0, avg(rating))
		FROM feedback
		WHERE (? = '' OR bot = ?)
	`, bot, bot).Scan(&ratings, &average)
	if err != nil {
		return overview, fmt.Errorf("failed to query feedback totals: %w", err)
	}

	overview.Users = int(users)
	overview.Events = int(events)
	overview.Conversions = int(conversions)
	overview.Failures = int(failures)
	overview.Errors = int(errorsCount)
	overview.Ratings = int(ratings)
	overview.AverageRating = average
	return overview, nil
}

// DailyEvents counts events per day and name since the given time
func (db *ClickHouseDB) DailyEvents(ctx context.Context, bot string, since time.Time) ([]models.DailyEventCount, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT toDate(ts) AS day, name, count() AS cnt
		FROM events
		WHERE (? = '' OR bot = ?) AND ts >= ?
		GROUP BY day, name
		ORDER BY day, name
	`, bot, bot, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query daily events: %w", err)
	}
	defer rows.Close()

	var result []models.DailyEventCount
	for rows.Next() {
		var row models.DailyEventCount
		var count uint64
		if err := rows.Scan(&row.Day, &row.Name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily events: %w", err)
		}
		row.Count = int(count)
		result = append(result, row)
	}
	return result, rows.Err()
}

// ErrorsAggregated groups errors by stage and message, most frequent first
func (db *ClickHouseDB) ErrorsAggregated(ctx context.Context, bot string) ([]models.ErrorAggregate, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT stage, message, count() AS cnt, max(ts) AS last_seen
		FROM errors
		WHERE (? = '' OR bot = ?)
		GROUP BY stage, message
		ORDER BY cnt DESC, stage, message
	`, bot, bot)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors: %w", err)
	}
	defer rows.Close()

	var result []models.ErrorAggregate
	for rows.Next() {
		var row models.ErrorAggregate
		var count uint64
		if err := rows.Scan(&row.Stage, &row.Message, &count, &row.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan errors: %w", err)
		}
		row.Count = int(count)
		result = append(result, row)
	}
	return result, rows.Err()
}

// RecentErrors returns the last N errors, newest first
func (db *ClickHouseDB) RecentErrors(ctx context.Context, bot string, limit int) ([]models.ErrorRecord, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT id, ts, bot, user_id, stage, message
		FROM errors
		WHERE (? = '' OR bot = ?)
		ORDER BY ts DESC
		LIMIT ?
	`, bot, bot, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent errors: %w", err)
	}
	defer rows.Close()

	var result []models.ErrorRecord
	for rows.Next() {
		var row models.ErrorRecord
		if err := rows.Scan(&row.ID, &row.Time, &row.Bot, &row.UserID, &row.Stage, &row.Message); err != nil {
			return nil, fmt.Errorf("failed to scan error: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListFeedback returns all ratings in chronological order
func (db *ClickHouseDB) ListFeedback(ctx context.Context, bot string) ([]models.Feedback, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT id, ts, bot, user_id, rating, comment
		FROM feedback
		WHERE (? = '' OR bot = ?)
		ORDER BY ts
	`, bot, bot)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var result []models.Feedback
	for rows.Next() {
		var row models.Feedback
		var rating uint8
		if err := rows.Scan(&row.ID, &row.Time, &row.Bot, &row.UserID, &rating, &row.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		row.Rating = int(rating)
		result = append(result, row)
	}
	return result, rows.Err()
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
