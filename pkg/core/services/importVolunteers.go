package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// VolunteerSource reads a roster tab from a spreadsheet
type VolunteerSource interface {
	ListVolunteerRows(spreadsheetID, tab string) ([]model.Volunteer, error)
}

// ImportVolunteersStore defines the database operations needed to import a roster
type ImportVolunteersStore interface {
	GetVolunteers(ctx context.Context) ([]model.Volunteer, error)
	InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// RejectedRow is a roster row that could not be imported
type RejectedRow struct {
	Name   string
	Reason string
}

// ImportResult reports one roster import
type ImportResult struct {
	Imported []model.Volunteer
	Existing []string // names of rows already registered
	Rejected []RejectedRow
}

// ImportVolunteers registers every roster row not already known locally.
// A row is already known when its email matches (case-insensitive) or, for
// rows without an email, when the full name matches. Rows that fail
// validation are reported and skipped.
func ImportVolunteers(
	ctx context.Context,
	store ImportVolunteersStore,
	source VolunteerSource,
	logger *zap.Logger,
	spreadsheetID string,
	tab string,
) (*ImportResult, error) {
	rows, err := source.ListVolunteerRows(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	existing, err := store.GetVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	known := make(map[string]bool, len(existing)*2)
	for _, v := range existing {
		known[importKey(v)] = true
	}

	result := &ImportResult{}
	for _, row := range rows {
		name := strings.TrimSpace(row.FirstName + " " + row.LastName)
		key := importKey(row)
		if known[key] {
			result.Existing = append(result.Existing, name)
			continue
		}

		volunteer, err := RegisterVolunteer(ctx, store, logger, VolunteerInput{
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Email:          row.Email,
			Phone:          row.Phone,
			RecurringSlots: row.RecurringSlots,
		})
		if err != nil {
			logger.Warn("Skipping roster row", zap.String("name", name), zap.Error(err))
			result.Rejected = append(result.Rejected, RejectedRow{Name: name, Reason: err.Error()})
			continue
		}

		known[key] = true
		result.Imported = append(result.Imported, *volunteer)
	}

	logger.Info("Imported roster",
		zap.String("tab", tab),
		zap.Int("imported", len(result.Imported)),
		zap.Int("existing", len(result.Existing)),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}

func importKey(v model.Volunteer) string {
	if email := strings.ToLower(strings.TrimSpace(v.Email)); email != "" {
		return "email:" + email
	}
	return "name:" + strings.ToLower(strings.TrimSpace(v.FirstName)+" "+strings.TrimSpace(v.LastName))
}
