package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// InsertTombstone records a deletion; deleting the same id again refreshes it
func (d *DB) InsertTombstone(ctx context.Context, t *model.Tombstone) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO tombstones (entity, id, deleted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity, id) DO UPDATE SET deleted_at = EXCLUDED.deleted_at
	`, t.Entity, t.ID, t.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tombstone: %w", err)
	}
	return nil
}

// GetTombstonesSince returns deletions strictly after since
func (d *DB) GetTombstonesSince(ctx context.Context, since time.Time) ([]model.Tombstone, error) {
	rows, err := d.q.Query(ctx, `
		SELECT entity, id, deleted_at FROM tombstones
		WHERE deleted_at > $1
		ORDER BY deleted_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query tombstones: %w", err)
	}

	tombstones, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Tombstone])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tombstones: %w", err)
	}
	return tombstones, nil
}

// GetSyncState returns the zero state before the first sync
func (d *DB) GetSyncState(ctx context.Context) (model.SyncState, error) {
	var state model.SyncState
	err := d.q.QueryRow(ctx, `SELECT last_synced_at FROM sync_state WHERE id = 1`).Scan(&state.LastSyncedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SyncState{}, nil
	}
	if err != nil {
		return model.SyncState{}, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

func (d *DB) SaveSyncState(ctx context.Context, state model.SyncState) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO sync_state (id, last_synced_at)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_synced_at = EXCLUDED.last_synced_at
	`, state.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}
	return nil
}
