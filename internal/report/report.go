// Package report builds the rating export workbook from analytics data.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"tgbots/internal/analytics"
)

// Sheet names of the rating export, in workbook order
const (
	SheetOverview    = "Overview"
	SheetDailyEvents = "DailyEvents"
	SheetErrorsAgg   = "ErrorsAgg"
	SheetErrorsRaw   = "ErrorsRaw"
	SheetFeedback    = "Feedback"
)

// Sheets lists the sheets in the order they appear
var Sheets = []string{SheetOverview, SheetDailyEvents, SheetErrorsAgg, SheetErrorsRaw, SheetFeedback}

const timeLayout = "2006-01-02 15:04:05"

type Options struct {
	// Bot limits the export to one variant; empty means all
	Bot string
	// Days is the DailyEvents window
	Days int
	// RecentErrors caps the ErrorsRaw sheet
	RecentErrors int
	Now          time.Time
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = 30
	}
	if o.RecentErrors <= 0 {
		o.RecentErrors = 200
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	return o
}

// FileName is the attachment name of an export
func FileName(bot string, now time.Time) string {
	if bot == "" {
		bot = "all"
	}
	return fmt.Sprintf("ratings_%s_%s.xlsx", bot, now.Format("20060102"))
}

// Build queries the reader and lays the results out in a new workbook.
// The caller must Close the returned file.
func Build(ctx context.Context, reader analytics.Reader, opts Options) (*excelize.File, error) {
	opts = opts.withDefaults()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	w := &writer{file: f}
	if err := w.headerStyle(); err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(context.Context, analytics.Reader, Options) error{
		w.overview,
		w.dailyEvents,
		w.errorsAggregated,
		w.errorsRaw,
		w.feedback,
	}
	for _, step := range steps {
		if err := step(ctx, reader, opts); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Bytes builds the workbook and serializes it as xlsx
func Bytes(ctx context.Context, reader analytics.Reader, opts Options) ([]byte, error) {
	f, err := Build(ctx, reader, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	file   *excelize.File
	header int
}

func (w *writer) headerStyle() error {
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w.header = style
	return nil
}

// row writes values starting at column A of the given 1-based row
func (w *writer) row(sheet string, n int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
	return nil
}

func (w *writer) columns(sheet string, width float64, names ...any) error {
	if err := w.row(sheet, 1, names...); err != nil {
		return err
	}
	if err := w.file.SetRowStyle(sheet, 1, 1, w.header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(names))
	if err != nil {
		return err
	}
	return w.file.SetColWidth(sheet, "A", last, width)
}

func (w *writer) overview(ctx context.Context, reader analytics.Reader, opts Options) error {
	overview, err := reader.Overview(ctx, opts.Bot)
	if err != nil {
		return err
	}
	if err := w.columns(SheetOverview, 22, "Metric", "Value"); err != nil {
		return err
	}

	bot := opts.Bot
	if bot == "" {
		bot = "all"
	}
	rows := [][]any{
		{"Generated", opts.Now.UTC().Format(timeLayout)},
		{"Bot", bot},
		{"Users", overview.Users},
		{"Events", overview.Events},
		{"Conversions", overview.Conversions},
		{"Failures", overview.Failures},
		{"Errors", overview.Errors},
		{"Ratings", overview.Ratings},
		{"Average rating", overview.AverageRating},
	}
	for i, r := range rows {
		if err := w.row(SheetOverview, i+2, r...); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) dailyEvents(ctx context.Context, reader analytics.Reader, opts Options) error {
	since := opts.Now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(opts.Days - 1))
	rows, err := reader.DailyEvents(ctx, opts.Bot, since)
	if err != nil {
		return err
	}
	if err := w.columns(SheetDailyEvents, 18, "Day", "Event", "Count"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.row(SheetDailyEvents, i+2, r.Day.Format("2006-01-02"), r.Name, r.Count); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) errorsAggregated(ctx context.Context, reader analytics.Reader, opts Options) error {
	rows, err := reader.ErrorsAggregated(ctx, opts.Bot)
	if err != nil {
		return err
	}
	if err := w.columns(SheetErrorsAgg, 24, "Stage", "Message", "Count", "LastSeen"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.row(SheetErrorsAgg, i+2, r.Stage, r.Message, r.Count, r.LastSeen.UTC().Format(timeLayout)); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) errorsRaw(ctx context.Context, reader analytics.Reader, opts Options) error {
	rows, err := reader.RecentErrors(ctx, opts.Bot, opts.RecentErrors)
	if err != nil {
		return err
	}
	if err := w.columns(SheetErrorsRaw, 20, "Time", "Bot", "User", "Stage", "Message"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.row(SheetErrorsRaw, i+2, r.Time.UTC().Format(timeLayout), r.Bot, r.UserID, r.Stage, r.Message); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) feedback(ctx context.Context, reader analytics.Reader, opts Options) error {
	rows, err := reader.ListFeedback(ctx, opts.Bot)
	if err != nil {
		return err
	}
	if err := w.columns(SheetFeedback, 20, "Time", "Bot", "User", "Rating", "Comment"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.row(SheetFeedback, i+2, r.Time.UTC().Format(timeLayout), r.Bot, r.UserID, r.Rating, r.Comment); err != nil {
			return err
		}
	}
	return nil
}
