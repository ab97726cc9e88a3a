package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

const volunteerColumns = `id, first_name, last_name, email, phone, recurring_days, recurring_slots, created_at, updated_at`

func scanVolunteer(row pgx.Row) (model.Volunteer, error) {
	var v model.Volunteer
	var days, slots []string
	if err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &days, &slots, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return model.Volunteer{}, err
	}
	for _, d := range days {
		v.RecurringDays = append(v.RecurringDays, model.Weekday(d))
	}
	v.RecurringSlots = nilIfEmpty(slots)
	return v, nil
}

func weekdayStrings(days []model.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, string(d))
	}
	return out
}

// GetVolunteers retrieves all volunteers ordered by last name
func (d *DB) GetVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	rows, err := d.q.Query(ctx, `SELECT `+volunteerColumns+` FROM volunteers ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}

	volunteers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Volunteer, error) {
		return scanVolunteer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan volunteers: %w", err)
	}
	return volunteers, nil
}

// GetVolunteer returns db.ErrNotFound when no volunteer has the id
func (d *DB) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	v, err := scanVolunteer(d.q.QueryRow(ctx, `SELECT `+volunteerColumns+` FROM volunteers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer %s: %w", id, err)
	}
	return &v, nil
}

func (d *DB) InsertVolunteer(ctx context.Context, v *model.Volunteer) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO volunteers (`+volunteerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.FirstName, v.LastName, v.Email, v.Phone,
		weekdayStrings(v.RecurringDays), textArray(v.RecurringSlots), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert volunteer: %w", err)
	}
	return nil
}

func (d *DB) UpdateVolunteer(ctx context.Context, v *model.Volunteer) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE volunteers
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
		    recurring_days = $6, recurring_slots = $7, updated_at = $8
		WHERE id = $1
	`, v.ID, v.FirstName, v.LastName, v.Email, v.Phone,
		weekdayStrings(v.RecurringDays), textArray(v.RecurringSlots), v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update volunteer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteVolunteer removes only the volunteer row; dependent shifts and signups
// are removed by the caller
func (d *DB) DeleteVolunteer(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM volunteers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete volunteer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
