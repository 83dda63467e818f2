package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tgbots/internal/models"
)

// DefaultLimit bounds each in-memory table
const DefaultLimit = 10000

// MemoryAnalytics keeps analytics records in process memory.
// Used when ClickHouse is not configured and in tests.
type MemoryAnalytics struct {
	mu       sync.RWMutex
	limit    int
	events   []models.Event
	errors   []models.ErrorRecord
	feedback []models.Feedback
}

// NewMemoryAnalytics creates a store keeping at most limit records per table
func NewMemoryAnalytics(limit int) *MemoryAnalytics {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryAnalytics{limit: limit}
}

func (m *MemoryAnalytics) Initialize(ctx context.Context) error { return nil }
func (m *MemoryAnalytics) Close() error                         { return nil }

func fill(id *string, t *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

func trim[T any](rows []T, limit int) []T {
	if len(rows) > limit {
		return append([]T(nil), rows[len(rows)-limit:]...)
	}
	return rows
}

func (m *MemoryAnalytics) RecordEvent(ctx context.Context, event models.Event) error {
	fill(&event.ID, &event.Time)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = trim(append(m.events, event), m.limit)
	return nil
}

func (m *MemoryAnalytics) RecordError(ctx context.Context, record models.ErrorRecord) error {
	fill(&record.ID, &record.Time)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = trim(append(m.errors, record), m.limit)
	return nil
}

func (m *MemoryAnalytics) RecordFeedback(ctx context.Context, feedback models.Feedback) error {
	fill(&feedback.ID, &feedback.Time)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = trim(append(m.feedback, feedback), m.limit)
	return nil
}

func matches(filter, bot string) bool {
	return filter == "" || filter == bot
}

func (m *MemoryAnalytics) Overview(ctx context.Context, bot string) (models.Overview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var overview models.Overview
	users := make(map[string]struct{})
	for _, e := range m.events {
		if !matches(bot, e.Bot) {
			continue
		}
		users[e.UserID] = struct{}{}
		overview.Events++
		switch e.Name {
		case "conversion_ok":
			overview.Conversions++
		case "conversion_failed":
			overview.Failures++
		}
	}
	overview.Users = len(users)

	for _, e := range m.errors {
		if matches(bot, e.Bot) {
			overview.Errors++
		}
	}

	total := 0
	for _, f := range m.feedback {
		if matches(bot, f.Bot) {
			overview.Ratings++
			total += f.Rating
		}
	}
	if overview.Ratings > 0 {
		overview.AverageRating = float64(total) / float64(overview.Ratings)
	}
	return overview, nil
}

func (m *MemoryAnalytics) DailyEvents(ctx context.Context, bot string, since time.Time) ([]models.DailyEventCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type key struct {
		day  time.Time
		name string
	}
	counts := make(map[key]int)
	for _, e := range m.events {
		if !matches(bot, e.Bot) || e.Time.Before(since) {
			continue
		}
		t := e.Time.UTC()
		counts[key{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), e.Name}]++
	}

	result := make([]models.DailyEventCount, 0, len(counts))
	for k, c := range counts {
		result = append(result, models.DailyEventCount{Day: k.day, Name: k.name, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *MemoryAnalytics) ErrorsAggregated(ctx context.Context, bot string) ([]models.ErrorAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type key struct{ stage, message string }
	groups := make(map[key]*models.ErrorAggregate)
	for _, e := range m.errors {
		if !matches(bot, e.Bot) {
			continue
		}
		k := key{e.Stage, e.Message}
		agg, ok := groups[k]
		if !ok {
			agg = &models.ErrorAggregate{Stage: e.Stage, Message: e.Message}
			groups[k] = agg
		}
		agg.Count++
		if e.Time.After(agg.LastSeen) {
			agg.LastSeen = e.Time
		}
	}

	result := make([]models.ErrorAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if result[i].Stage != result[j].Stage {
			return result[i].Stage < result[j].Stage
		}
		return result[i].Message < result[j].Message
	})
	return result, nil
}

func (m *MemoryAnalytics) RecentErrors(ctx context.Context, bot string, limit int) ([]models.ErrorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.ErrorRecord
	for _, e := range m.errors {
		if matches(bot, e.Bot) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time.After(result[j].Time)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryAnalytics) ListFeedback(ctx context.Context, bot string) ([]models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Feedback
	for _, f := range m.feedback {
		if matches(bot, f.Bot) {
			result = append(result, f)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time.Before(result[j].Time)
	})
	return result, nil
}
