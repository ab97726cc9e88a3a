package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

const signupColumns = `id, volunteer_id, to_char(date, 'YYYY-MM-DD'), day_of_week, role, status, created_at, updated_at`

func scanSignup(row pgx.Row) (model.VolunteerSignup, error) {
	var s model.VolunteerSignup
	var day, status string
	if err := row.Scan(&s.ID, &s.VolunteerID, &s.Date, &day, &s.Role, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return model.VolunteerSignup{}, err
	}
	s.DayOfWeek = model.Weekday(day)
	s.Status = model.SignupStatus(status)
	return s, nil
}

func (d *DB) collectSignups(ctx context.Context, sql string, args ...any) ([]model.VolunteerSignup, error) {
	rows, err := d.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups: %w", err)
	}

	signups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VolunteerSignup, error) {
		return scanSignup(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan signups: %w", err)
	}
	return signups, nil
}

// GetSignups retrieves every signup in creation order
func (d *DB) GetSignups(ctx context.Context) ([]model.VolunteerSignup, error) {
	return d.collectSignups(ctx, `SELECT `+signupColumns+` FROM volunteer_signups ORDER BY created_at, id`)
}

// GetSignupsBetween retrieves signups whose date lies in [from, to]
func (d *DB) GetSignupsBetween(ctx context.Context, from, to string) ([]model.VolunteerSignup, error) {
	return d.collectSignups(ctx, `
		SELECT `+signupColumns+` FROM volunteer_signups
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY created_at, id
	`, from, to)
}

func (d *DB) GetSignup(ctx context.Context, id string) (*model.VolunteerSignup, error) {
	s, err := scanSignup(d.q.QueryRow(ctx, `SELECT `+signupColumns+` FROM volunteer_signups WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signup %s: %w", id, err)
	}
	return &s, nil
}

// FindSignup looks up the override for (volunteerID, date). If duplicates
// exist the earliest created wins.
func (d *DB) FindSignup(ctx context.Context, volunteerID, date string) (*model.VolunteerSignup, error) {
	s, err := scanSignup(d.q.QueryRow(ctx, `
		SELECT `+signupColumns+` FROM volunteer_signups
		WHERE volunteer_id = $1 AND date = $2::date
		ORDER BY created_at, id
		LIMIT 1
	`, volunteerID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find signup: %w", err)
	}
	return &s, nil
}

func (d *DB) InsertSignup(ctx context.Context, s *model.VolunteerSignup) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO volunteer_signups (id, volunteer_id, date, day_of_week, role, status, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
	`, s.ID, s.VolunteerID, s.Date, string(s.DayOfWeek), s.Role, string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	return nil
}

func (d *DB) UpdateSignup(ctx context.Context, s *model.VolunteerSignup) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE volunteer_signups
		SET volunteer_id = $2, date = $3::date, day_of_week = $4, role = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, s.ID, s.VolunteerID, s.Date, string(s.DayOfWeek), s.Role, string(s.Status), s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update signup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteSignup(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM volunteer_signups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete signup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteSignupsForVolunteer removes every signup of a volunteer and returns the deleted ids
func (d *DB) DeleteSignupsForVolunteer(ctx context.Context, volunteerID string) ([]string, error) {
	rows, err := d.q.Query(ctx, `DELETE FROM volunteer_signups WHERE volunteer_id = $1 RETURNING id`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete signups: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to delete signups: %w", err)
	}
	return ids, nil
}
