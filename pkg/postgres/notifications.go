package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// HasNotification reports whether a message of typ was already sent to the
// volunteer for the session
func (d *DB) HasNotification(ctx context.Context, volunteerID, sessionDate string, typ model.NotificationType) (bool, error) {
	var exists bool
	err := d.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE volunteer_id = $1 AND session_date = $2::date AND type = $3
		)
	`, volunteerID, sessionDate, string(typ)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return exists, nil
}

func (d *DB) InsertNotification(ctx context.Context, n *model.Notification) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO notifications (id, volunteer_id, session_date, type, sent_at)
		VALUES ($1, $2, $3::date, $4, $5)
	`, n.ID, n.VolunteerID, n.SessionDate, string(n.Type), n.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
