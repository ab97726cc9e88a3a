package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

const clientColumns = `id, first_name, last_name, family_size, phone, email, created_at, updated_at`

func scanClient(row pgx.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.FamilySize, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (d *DB) GetClients(ctx context.Context) ([]model.Client, error) {
	rows, err := d.q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}

	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Client, error) {
		return scanClient(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan clients: %w", err)
	}
	return clients, nil
}

func (d *DB) GetClient(ctx context.Context, id string) (*model.Client, error) {
	c, err := scanClient(d.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client %s: %w", id, err)
	}
	return &c, nil
}

func (d *DB) InsertClient(ctx context.Context, c *model.Client) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.FirstName, c.LastName, c.FamilySize, c.Phone, c.Email, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (d *DB) InsertVisit(ctx context.Context, v *model.Visit) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO visits (id, client_id, date, served_by, created_at)
		VALUES ($1, $2, $3::date, $4, $5)
	`, v.ID, v.ClientID, v.Date, v.ServedBy, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// GetVisitsBetween retrieves visits whose date lies in [from, to]
func (d *DB) GetVisitsBetween(ctx context.Context, from, to string) ([]model.Visit, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, client_id, to_char(date, 'YYYY-MM-DD'), served_by, created_at
		FROM visits
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, created_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}

	visits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Visit, error) {
		var v model.Visit
		err := row.Scan(&v.ID, &v.ClientID, &v.Date, &v.ServedBy, &v.CreatedAt)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan visits: %w", err)
	}
	return visits, nil
}
