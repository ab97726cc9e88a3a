package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// SignupStore defines the database operations needed to record per-date overrides
type SignupStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	FindSignup(ctx context.Context, volunteerID, date string) (*model.VolunteerSignup, error)
	InsertSignup(ctx context.Context, signup *model.VolunteerSignup) error
	UpdateSignup(ctx context.Context, signup *model.VolunteerSignup) error
}

// RemoveSignupStore defines the database operations needed to delete a signup
type RemoveSignupStore interface {
	GetSignup(ctx context.Context, id string) (*model.VolunteerSignup, error)
	DeleteSignup(ctx context.Context, id string) error
	InsertTombstone(ctx context.Context, tombstone *model.Tombstone) error
}

// SignupResult reports the override that was written
type SignupResult struct {
	Signup  model.VolunteerSignup
	Created bool // false when an existing record for the date was updated
}

// upsertSignup is the single write path for the ledger: look up the override
// for (volunteerID, date) and update it in place, or insert one if none exists
func upsertSignup(
	ctx context.Context,
	store SignupStore,
	logger *zap.Logger,
	volunteerID, dateStr string,
	status model.SignupStatus,
	role string,
) (*SignupResult, error) {
	date, err := parseDateInput(dateStr)
	if err != nil {
		return nil, err
	}
	dateStr = schedule.FormatDate(date)
	role = strings.TrimSpace(role)

	if !schedule.IsPantryDay(date) {
		logger.Warn("Override recorded for a day the pantry does not open",
			zap.String("date", dateStr),
			zap.String("weekday", string(schedule.WeekdayName(date))))
	}

	var result *SignupResult
	err = inTx(ctx, store, func(tx SignupStore) error {
		if _, err := getVolunteer(ctx, tx, volunteerID); err != nil {
			return err
		}

		now := timeNow().UTC()
		existing, err := tx.FindSignup(ctx, volunteerID, dateStr)
		switch {
		case err == nil:
			existing.Status = status
			if role != "" || status == model.SignupStatusSignedUp {
				existing.Role = role
			}
			existing.UpdatedAt = now
			if err := tx.UpdateSignup(ctx, existing); err != nil {
				return fmt.Errorf("failed to update signup: %w", err)
			}
			result = &SignupResult{Signup: *existing}

		case errors.Is(err, db.ErrNotFound):
			signup := model.VolunteerSignup{
				ID:          newID(),
				VolunteerID: volunteerID,
				Date:        dateStr,
				DayOfWeek:   schedule.WeekdayName(date),
				Role:        role,
				Status:      status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.InsertSignup(ctx, &signup); err != nil {
				return fmt.Errorf("failed to insert signup: %w", err)
			}
			result = &SignupResult{Signup: signup, Created: true}

		default:
			return fmt.Errorf("failed to look up signup: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Recorded signup",
		zap.String("volunteer_id", volunteerID),
		zap.String("date", dateStr),
		zap.String("status", string(status)),
		zap.Bool("created", result.Created))
	return result, nil
}

// SignUpVolunteer adds a volunteer to a single date, or reverses an earlier
// excuse for that date
func SignUpVolunteer(
	ctx context.Context,
	store SignupStore,
	logger *zap.Logger,
	volunteerID, date, role string,
) (*SignupResult, error) {
	return upsertSignup(ctx, store, logger, volunteerID, date, model.SignupStatusSignedUp, role)
}

// ExcuseVolunteer cancels a volunteer's attendance for a single date without
// touching their recurring pattern
func ExcuseVolunteer(
	ctx context.Context,
	store SignupStore,
	logger *zap.Logger,
	volunteerID, date string,
) (*SignupResult, error) {
	return upsertSignup(ctx, store, logger, volunteerID, date, model.SignupStatusCancelled, "")
}

// RemoveSignup deletes a one-off signup record
func RemoveSignup(
	ctx context.Context,
	store RemoveSignupStore,
	logger *zap.Logger,
	signupID string,
) error {
	return inTx(ctx, store, func(tx RemoveSignupStore) error {
		signup, err := tx.GetSignup(ctx, signupID)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSignupNotFound, signupID)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch signup: %w", err)
		}

		if err := tx.DeleteSignup(ctx, signupID); err != nil {
			return fmt.Errorf("failed to delete signup: %w", err)
		}

		tombstone := model.Tombstone{Entity: model.EntitySignup, ID: signupID, DeletedAt: timeNow().UTC()}
		if err := tx.InsertTombstone(ctx, &tombstone); err != nil {
			return fmt.Errorf("failed to record deletion: %w", err)
		}

		logger.Info("Removed signup",
			zap.String("signup_id", signupID),
			zap.String("volunteer_id", signup.VolunteerID),
			zap.String("date", signup.Date))
		return nil
	})
}
