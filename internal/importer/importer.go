// Package importer loads historical study logs from CSV exports. Rows and
// the rebuild of every stage the file touched commit in one transaction,
// so a bulk load never pays per-row recomputation and never leaves entries
// without derived scores.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnlog/internal/domain"
	"learnlog/internal/ports"
	"learnlog/internal/records"
)

// Result summarizes one import run.
type Result struct {
	Rows   int
	Stages []string
}

type Importer struct {
	store   ports.Store
	records *records.Service
	now     func() time.Time
}

func New(store ports.Store, svc *records.Service) *Importer {
	return &Importer{store: store, records: svc, now: time.Now}
}

// ImportCSV reads rows from r and stores them as log entries for ownerID.
// The header row names the columns; date and duration are required, the rest
// optional. Each row is attached to the stage whose lifetime contains its
// date.
func (im *Importer) ImportCSV(ctx context.Context, ownerID string, r io.Reader) (*Result, error) {
	stages, err := im.store.Stages().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("owner %s has no stages to import into", ownerID)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	// Parse everything before opening the transaction: the touched stages
	// must be known up front so their locks can be taken first.
	var rows []parsedRow
	touched := make(map[string]bool)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		row, err := im.parseRow(stages, cols, record)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		row.line = line
		rows = append(rows, *row)
		touched[row.entry.StageID] = true
	}

	result := &Result{Rows: len(rows)}
	for id := range touched {
		result.Stages = append(result.Stages, id)
	}
	sort.Strings(result.Stages)
	if len(rows) == 0 {
		return result, nil
	}

	err = im.records.BulkImport(ctx, result.Stages, func(repos ports.Repositories) error {
		for i := range rows {
			row := &rows[i]
			if err := im.materialize(ctx, repos, ownerID, row); err != nil {
				return fmt.Errorf("csv line %d: %w", row.line, err)
			}
			if err := repos.Logs().Create(ctx, &row.entry); err != nil {
				return fmt.Errorf("csv line %d: %w", row.line, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type columns struct {
	date        int
	duration    int
	task        int
	timeSlot    int
	mood        int
	category    int
	subcategory int
	notes       int
}

func indexColumns(header []string) (*columns, error) {
	cols := &columns{date: -1, duration: -1, task: -1, timeSlot: -1, mood: -1, category: -1, subcategory: -1, notes: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "log_date":
			cols.date = i
		case "duration", "duration_min":
			cols.duration = i
		case "task":
			cols.task = i
		case "time_slot", "slot":
			cols.timeSlot = i
		case "mood":
			cols.mood = i
		case "category":
			cols.category = i
		case "subcategory":
			cols.subcategory = i
		case "notes":
			cols.notes = i
		}
	}
	if cols.date < 0 || cols.duration < 0 {
		return nil, fmt.Errorf("csv header must name date and duration columns")
	}
	return cols, nil
}

// parsedRow is one CSV row parsed into a log entry plus the category names
// it carried. Categories are materialized later, inside the import
// transaction.
type parsedRow struct {
	line        int
	entry       domain.LogEntry
	category    string
	subcategory string
}

func (im *Importer) parseRow(stages []domain.Stage, cols *columns, record []string) (*parsedRow, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	logDate, err := domain.ParseDate(field(cols.date))
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	durationMin, err := ParseDuration(field(cols.duration))
	if err != nil {
		return nil, err
	}

	mood := domain.MoodDefault
	if raw := field(cols.mood); raw != "" {
		mood, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse mood %q: %w", raw, err)
		}
	}

	row := &parsedRow{
		entry: domain.LogEntry{
			ID:          uuid.NewString(),
			StageID:     stageFor(stages, logDate).ID,
			LogDate:     logDate,
			Task:        field(cols.task),
			TimeSlot:    field(cols.timeSlot),
			Notes:       field(cols.notes),
			DurationMin: durationMin,
			Mood:        mood,
			CreatedAt:   im.now().UTC(),
		},
		category:    field(cols.category),
		subcategory: field(cols.subcategory),
	}
	row.entry.Normalize()
	return row, nil
}

// materialize creates the row's category and subcategory on first use and
// attaches the subcategory to the entry.
func (im *Importer) materialize(ctx context.Context, repos ports.Repositories, ownerID string, row *parsedRow) error {
	if row.category == "" {
		return nil
	}
	categoryID, err := repos.Categories().EnsureCategory(ctx, ownerID, row.category)
	if err != nil {
		return err
	}
	if row.subcategory == "" {
		return nil
	}
	subID, err := repos.Categories().EnsureSubcategory(ctx, categoryID, row.subcategory)
	if err != nil {
		return err
	}
	row.entry.SubcategoryID = &subID
	return nil
}

// stageFor picks the stage whose lifetime contains date: the latest stage
// starting on or before it. Dates predating every stage fall into the first
// stage, mirroring how the week grid collapses pre-anchor dates.
func stageFor(stages []domain.Stage, date time.Time) domain.Stage {
	chosen := stages[0]
	for _, st := range stages[1:] {
		if st.StartDate.After(date) {
			break
		}
		chosen = st
	}
	return chosen
}

// ParseDuration converts the duration spellings found in CSV exports into
// whole minutes: "1.5h" (hours), "45min" or "45m" (minutes), or a bare
// number meaning minutes.
func ParseDuration(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	switch {
	case strings.HasSuffix(s, "min"):
		return parseMinutes(raw, strings.TrimSuffix(s, "min"))
	case strings.HasSuffix(s, "h"):
		hours, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "h")), 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", raw, err)
		}
		return int(math.Round(hours * 60)), nil
	case strings.HasSuffix(s, "m"):
		return parseMinutes(raw, strings.TrimSuffix(s, "m"))
	default:
		return parseMinutes(raw, s)
	}
}

func parseMinutes(raw, s string) (int, error) {
	minutes, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	return int(math.Round(minutes)), nil
}
