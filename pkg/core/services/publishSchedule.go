package services

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/internal/config"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
)

const (
	publishedDateFormat = "Mon Jan 02 2006"
	notesColumn         = "Notes"
	dateColumn          = "Date"
	headerRowIndex      = 2
)

// SchedulePublisher defines the spreadsheet operations needed to publish a schedule
type SchedulePublisher interface {
	ListSheets(spreadsheetID string) ([]string, error)
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	ClearValues(spreadsheetID, sheetRange string) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
}

// PublishResult reports where the schedule was written
type PublishResult struct {
	TabTitle string
	Created  bool
	Sessions int
	Closed   int
}

// PublishSchedule writes the resolved schedule for [from, to] to its own tab
// in the sync spreadsheet so volunteers can see who is on. Republishing the
// same range overwrites the tab but keeps anything typed into the Notes column.
func PublishSchedule(
	ctx context.Context,
	store ScheduleStore,
	calendar *schedule.Calendar,
	publisher SchedulePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	from, to string,
) (*PublishResult, error) {
	if cfg.Sync.SpreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured: set sync.spreadsheetID")
	}
	spreadsheetID := cfg.Sync.SpreadsheetID

	// Resolve the schedule for the range
	view, err := ViewSchedule(ctx, store, calendar, logger, from, to)
	if err != nil {
		return nil, err
	}

	tabTitle, err := scheduleTabTitle(view.From, view.To)
	if err != nil {
		return nil, err
	}
	result := &PublishResult{TabTitle: tabTitle, Sessions: len(view.Sessions), Closed: len(view.Closed)}

	// Check whether this range has been published before
	titles, err := publisher.ListSheets(spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	notes := map[string]interface{}{}
	if slices.Contains(titles, tabTitle) {
		existing, err := publisher.GetValues(spreadsheetID, tabTitle+"!A1:ZZ")
		if err != nil {
			return nil, fmt.Errorf("failed to read existing tab: %w", err)
		}
		// Keep notes typed into the previous version
		notes = existingNotes(existing)

		if err := publisher.ClearValues(spreadsheetID, tabTitle+"!A1:ZZ"); err != nil {
			return nil, fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := publisher.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return nil, fmt.Errorf("failed to create tab: %w", err)
		}
		result.Created = true
	}

	// Write the grid from the top-left cell
	grid := buildScheduleGrid(cfg.PantryName, view, notes)
	if err := publisher.UpdateValues(spreadsheetID, tabTitle+"!A1", grid); err != nil {
		return nil, fmt.Errorf("failed to write schedule: %w", err)
	}

	logger.Info("Published schedule",
		zap.String("tab", tabTitle),
		zap.Bool("created", result.Created),
		zap.Int("sessions", result.Sessions),
		zap.Int("notes_kept", len(notes)))
	return result, nil
}

// scheduleTabTitle formats a tab title like "Mon Mar 02 2026 - Sat Mar 14 2026"
func scheduleTabTitle(from, to string) (string, error) {
	start, err := schedule.ParseDate(from)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := schedule.ParseDate(to)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}
	return fmt.Sprintf("%s - %s", start.Format(publishedDateFormat), end.Format(publishedDateFormat)), nil
}

type publishedRow struct {
	date  string
	label string
	cells []string
}

// buildScheduleGrid lays the schedule out under a title row and a blank row,
// with one row per pantry day: date, one column per volunteer, then notes
func buildScheduleGrid(pantryName string, view *ScheduleView, notes map[string]interface{}) [][]interface{} {
	rows := make([]publishedRow, 0, len(view.Sessions)+len(view.Closed))
	for _, session := range view.Sessions {
		cells := make([]string, 0, len(session.Attendees))
		for _, a := range session.Attendees {
			cell := displayName(a.Volunteer)
			if a.Role != "" {
				cell = fmt.Sprintf("%s (%s)", cell, a.Role)
			}
			cells = append(cells, cell)
		}
		rows = append(rows, publishedRow{date: session.Date, cells: cells})
	}
	for _, closed := range view.Closed {
		label := "Closed"
		if closed.Reason != "" {
			label = "Closed: " + closed.Reason
		}
		rows = append(rows, publishedRow{date: closed.Date, cells: []string{label}})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date < rows[j].date })

	maxVolunteers := 1
	for i := range rows {
		date, _ := schedule.ParseDate(rows[i].date)
		rows[i].label = date.Format(publishedDateFormat)
		if len(rows[i].cells) > maxVolunteers {
			maxVolunteers = len(rows[i].cells)
		}
	}

	header := []interface{}{dateColumn}
	for i := 0; i < maxVolunteers; i++ {
		header = append(header, fmt.Sprintf("Volunteer %d", i+1))
	}
	header = append(header, notesColumn)

	grid := [][]interface{}{
		{fmt.Sprintf("%s volunteer schedule", pantryName)},
		{},
		header,
	}
	for _, row := range rows {
		sheetRow := []interface{}{row.label}
		for i := 0; i < maxVolunteers; i++ {
			if i < len(row.cells) {
				sheetRow = append(sheetRow, row.cells[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		note, ok := notes[row.label]
		if !ok {
			note = ""
		}
		sheetRow = append(sheetRow, note)
		grid = append(grid, sheetRow)
	}
	return grid
}

// existingNotes reads the Notes column of a previously published tab, keyed
// by the row's date label
func existingNotes(existing [][]interface{}) map[string]interface{} {
	notes := map[string]interface{}{}
	if len(existing) <= headerRowIndex {
		return notes
	}

	header := existing[headerRowIndex]
	dateCol := findColumnIndex(header, dateColumn)
	notesCol := findColumnIndex(header, notesColumn)
	if dateCol == -1 || notesCol == -1 {
		return notes
	}

	for _, row := range existing[headerRowIndex+1:] {
		if dateCol >= len(row) || notesCol >= len(row) {
			continue
		}
		date, ok := row[dateCol].(string)
		if !ok || date == "" {
			continue
		}
		if note, ok := row[notesCol].(string); ok && note == "" {
			continue
		}
		notes[date] = row[notesCol]
	}
	return notes
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && str == columnName {
			return i
		}
	}
	return -1
}
