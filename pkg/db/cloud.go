package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/pantry-roster/pkg/sheetssql"
)

const (
	volunteerTable = "volunteer"
	signupTable    = "signup"
)

// CloudDB stores the cloud replica in a spreadsheet. Tables are append-only:
// every change is a new row and the latest row per id is the current value.
type CloudDB struct {
	ssql *sheetssql.DB
}

var _ Replica = (*CloudDB)(nil)

// NewCloudDB opens the replica spreadsheet, creating the volunteer and signup
// tables if they do not exist yet
func NewCloudDB(client sheetssql.SheetsClient, spreadsheetID string) (*CloudDB, error) {
	schema, err := sheetssql.SchemaFromModels(Volunteer{}, Signup{})
	if err != nil {
		return nil, fmt.Errorf("failed to build replica schema: %w", err)
	}

	ssql, err := sheetssql.NewDB(client, spreadsheetID, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to open replica: %w", err)
	}

	return &CloudDB{ssql: ssql}, nil
}

// GetVolunteerRows returns the latest row for each volunteer id, tombstones included
func (db *CloudDB) GetVolunteerRows(ctx context.Context) ([]Volunteer, error) {
	rows, err := sheetssql.GetTableAs[Volunteer](db.ssql, volunteerTable)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteers: %w", err)
	}
	return latestByID(rows, func(r Volunteer) (string, time.Time) { return r.ID, r.UpdatedAt }), nil
}

// GetSignupRows returns the latest row for each signup id, tombstones included
func (db *CloudDB) GetSignupRows(ctx context.Context) ([]Signup, error) {
	rows, err := sheetssql.GetTableAs[Signup](db.ssql, signupTable)
	if err != nil {
		return nil, fmt.Errorf("failed to get signups: %w", err)
	}
	return latestByID(rows, func(r Signup) (string, time.Time) { return r.ID, r.UpdatedAt }), nil
}

func (db *CloudDB) AppendVolunteerRows(ctx context.Context, rows []Volunteer) error {
	if err := sheetssql.InsertModels(db.ssql, rows); err != nil {
		return fmt.Errorf("failed to append volunteers: %w", err)
	}
	return nil
}

func (db *CloudDB) AppendSignupRows(ctx context.Context, rows []Signup) error {
	if err := sheetssql.InsertModels(db.ssql, rows); err != nil {
		return fmt.Errorf("failed to append signups: %w", err)
	}
	return nil
}

// latestByID keeps one row per id: the one with the newest timestamp, or the
// later row in the sheet when timestamps are equal. Output follows the order
// in which ids first appear. Rows without an id are dropped.
func latestByID[T any](rows []T, key func(T) (string, time.Time)) []T {
	index := make(map[string]int, len(rows))
	result := make([]T, 0, len(rows))

	for _, row := range rows {
		id, updatedAt := key(row)
		if id == "" {
			continue
		}

		i, seen := index[id]
		if !seen {
			index[id] = len(result)
			result = append(result, row)
			continue
		}

		if _, current := key(result[i]); !updatedAt.Before(current) {
			result[i] = row
		}
	}

	return result
}
