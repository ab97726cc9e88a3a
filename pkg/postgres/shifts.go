package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

func (d *DB) InsertShift(ctx context.Context, s *model.VolunteerShift) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO volunteer_shifts (id, volunteer_id, date, day_of_week, role, hours_worked, notes, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
	`, s.ID, s.VolunteerID, s.Date, string(s.DayOfWeek), s.Role, s.HoursWorked, s.Notes, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// GetShiftsBetween retrieves shifts whose date lies in [from, to]
func (d *DB) GetShiftsBetween(ctx context.Context, from, to string) ([]model.VolunteerShift, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, volunteer_id, to_char(date, 'YYYY-MM-DD'), day_of_week, role, hours_worked, notes, created_at
		FROM volunteer_shifts
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, created_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}

	shifts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VolunteerShift, error) {
		var s model.VolunteerShift
		var day string
		err := row.Scan(&s.ID, &s.VolunteerID, &s.Date, &day, &s.Role, &s.HoursWorked, &s.Notes, &s.CreatedAt)
		s.DayOfWeek = model.Weekday(day)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan shifts: %w", err)
	}
	return shifts, nil
}

func (d *DB) DeleteShiftsForVolunteer(ctx context.Context, volunteerID string) error {
	if _, err := d.q.Exec(ctx, `DELETE FROM volunteer_shifts WHERE volunteer_id = $1`, volunteerID); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	return nil
}
