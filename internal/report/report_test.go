package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tgbots/internal/analytics/stubs"
	"tgbots/internal/models"
)

func TestBytes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	store := stubs.NewMemoryAnalytics(0)
	store.RecordEvent(ctx, models.Event{Time: now.Add(-time.Hour), Bot: "document", UserID: "1", Name: "start"})
	store.RecordEvent(ctx, models.Event{Time: now.Add(-time.Hour), Bot: "document", UserID: "1", Name: "conversion_ok"})
	store.RecordEvent(ctx, models.Event{Time: now.AddDate(0, 0, -60), Bot: "document", UserID: "2", Name: "start"})
	store.RecordError(ctx, models.ErrorRecord{Time: now, Bot: "document", UserID: "1", Stage: "idle", Message: "timeout"})
	store.RecordFeedback(ctx, models.Feedback{Time: now, Bot: "document", UserID: "1", Rating: 5, Comment: "отлично"})
	store.RecordFeedback(ctx, models.Feedback{Time: now, Bot: "cooking", UserID: "3", Rating: 1})

	data, err := Bytes(ctx, store, Options{Bot: "document", Now: now})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, Sheets, f.GetSheetList())

	t.Run("Overview", func(t *testing.T) {
		rows, err := f.GetRows(SheetOverview)
		require.NoError(t, err)
		values := make(map[string]string)
		for _, r := range rows[1:] {
			require.Len(t, r, 2)
			values[r[0]] = r[1]
		}
		assert.Equal(t, "document", values["Bot"])
		assert.Equal(t, "2", values["Users"])
		assert.Equal(t, "3", values["Events"])
		assert.Equal(t, "1", values["Conversions"])
		assert.Equal(t, "1", values["Ratings"])
		assert.Equal(t, "5", values["Average rating"])
	})

	t.Run("DailyEvents within window", func(t *testing.T) {
		rows, err := f.GetRows(SheetDailyEvents)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"Day", "Event", "Count"}, rows[0])
		assert.Equal(t, []string{"2024-06-10", "conversion_ok", "1"}, rows[1])
		assert.Equal(t, []string{"2024-06-10", "start", "1"}, rows[2])
	})

	t.Run("Errors", func(t *testing.T) {
		agg, err := f.GetRows(SheetErrorsAgg)
		require.NoError(t, err)
		require.Len(t, agg, 2)
		assert.Equal(t, []string{"idle", "timeout", "1", "2024-06-10 12:00:00"}, agg[1])

		raw, err := f.GetRows(SheetErrorsRaw)
		require.NoError(t, err)
		require.Len(t, raw, 2)
		assert.Equal(t, "timeout", raw[1][4])
	})

	t.Run("Feedback of one bot", func(t *testing.T) {
		rows, err := f.GetRows(SheetFeedback)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"2024-06-10 12:00:00", "document", "1", "5", "отлично"}, rows[1])
	})
}

func TestBytes_EmptyStore(t *testing.T) {
	data, err := Bytes(context.Background(), stubs.NewMemoryAnalytics(0), Options{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetFeedback)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rating", rows[0][3])
}

type failingReader struct {
	*stubs.MemoryAnalytics
}

func (failingReader) ListFeedback(ctx context.Context, bot string) ([]models.Feedback, error) {
	return nil, errors.New("clickhouse down")
}

func TestBytes_ReaderError(t *testing.T) {
	_, err := Bytes(context.Background(), failingReader{stubs.NewMemoryAnalytics(0)}, Options{})
	assert.ErrorContains(t, err, "clickhouse down")
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ratings_document_20240610.xlsx", FileName("document", now))
	assert.Equal(t, "ratings_all_20240610.xlsx", FileName("", now))
}
