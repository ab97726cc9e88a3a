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

// VolunteerInput carries the editable fields of a volunteer. Legacy
// RecurringDays are accepted and migrated to slots before saving.
type VolunteerInput struct {
	FirstName      string `validate:"required"`
	LastName       string `validate:"required"`
	Email          string `validate:"omitempty,email"`
	Phone          string
	RecurringDays  []model.Weekday
	RecurringSlots []string
}

// RegisterVolunteerStore defines the database operations needed to register a volunteer
type RegisterVolunteerStore interface {
	InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// UpdateVolunteerStore defines the database operations needed to edit a volunteer
type UpdateVolunteerStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// DeleteVolunteerStore defines the database operations needed to delete a volunteer and their records
type DeleteVolunteerStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	DeleteShiftsForVolunteer(ctx context.Context, volunteerID string) error
	DeleteSignupsForVolunteer(ctx context.Context, volunteerID string) ([]string, error)
	DeleteVolunteer(ctx context.Context, id string) error
	InsertTombstone(ctx context.Context, tombstone *model.Tombstone) error
}

// MigrateVolunteersStore defines the database operations needed for the batch migration
type MigrateVolunteersStore interface {
	GetVolunteers(ctx context.Context) ([]model.Volunteer, error)
	UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// ListVolunteersStore defines the database operations needed to list volunteers
type ListVolunteersStore interface {
	GetVolunteers(ctx context.Context) ([]model.Volunteer, error)
}

func validateVolunteerInput(input VolunteerInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("invalid volunteer: %w", err)
	}
	for _, slot := range input.RecurringSlots {
		if _, err := schedule.ParseSlot(slot); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSlot, err)
		}
	}
	for _, day := range input.RecurringDays {
		if !day.IsPantryDay() {
			return fmt.Errorf("%w: %q is not a pantry day", ErrInvalidSlot, day)
		}
	}
	return nil
}

// applyInput copies input onto v and migrates any legacy days to slots
func applyInput(v *model.Volunteer, input VolunteerInput) {
	v.FirstName = strings.TrimSpace(input.FirstName)
	v.LastName = strings.TrimSpace(input.LastName)
	v.Email = strings.TrimSpace(input.Email)
	v.Phone = strings.TrimSpace(input.Phone)
	v.RecurringDays = input.RecurringDays
	v.RecurringSlots = input.RecurringSlots
	*v, _ = schedule.MigrateVolunteer(*v)
}

// RegisterVolunteer validates the input and creates a volunteer with a new id
func RegisterVolunteer(
	ctx context.Context,
	store RegisterVolunteerStore,
	logger *zap.Logger,
	input VolunteerInput,
) (*model.Volunteer, error) {
	if err := validateVolunteerInput(input); err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	volunteer := &model.Volunteer{
		ID:        newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(volunteer, input)

	if err := store.InsertVolunteer(ctx, volunteer); err != nil {
		return nil, fmt.Errorf("failed to save volunteer: %w", err)
	}

	logger.Info("Registered volunteer",
		zap.String("volunteer_id", volunteer.ID),
		zap.Strings("slots", volunteer.RecurringSlots))
	return volunteer, nil
}

// UpdateVolunteer replaces the editable fields of a volunteer. Legacy days on
// the stored record are migrated to slots as part of the write.
func UpdateVolunteer(
	ctx context.Context,
	store UpdateVolunteerStore,
	logger *zap.Logger,
	id string,
	input VolunteerInput,
) (*model.Volunteer, error) {
	if err := validateVolunteerInput(input); err != nil {
		return nil, err
	}

	volunteer, err := getVolunteer(ctx, store, id)
	if err != nil {
		return nil, err
	}

	applyInput(volunteer, input)
	volunteer.UpdatedAt = timeNow().UTC()

	if err := store.UpdateVolunteer(ctx, volunteer); err != nil {
		return nil, fmt.Errorf("failed to update volunteer: %w", err)
	}

	logger.Info("Updated volunteer", zap.String("volunteer_id", id))
	return volunteer, nil
}

// DeleteVolunteer removes a volunteer together with their shifts and signups
// and records tombstones so the deletions reach the cloud replica
func DeleteVolunteer(
	ctx context.Context,
	store DeleteVolunteerStore,
	logger *zap.Logger,
	id string,
) error {
	return inTx(ctx, store, func(tx DeleteVolunteerStore) error {
		if _, err := getVolunteer(ctx, tx, id); err != nil {
			return err
		}

		if err := tx.DeleteShiftsForVolunteer(ctx, id); err != nil {
			return fmt.Errorf("failed to delete shifts: %w", err)
		}

		signupIDs, err := tx.DeleteSignupsForVolunteer(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete signups: %w", err)
		}

		if err := tx.DeleteVolunteer(ctx, id); err != nil {
			return fmt.Errorf("failed to delete volunteer: %w", err)
		}

		now := timeNow().UTC()
		tombstones := []model.Tombstone{{Entity: model.EntityVolunteer, ID: id, DeletedAt: now}}
		for _, signupID := range signupIDs {
			tombstones = append(tombstones, model.Tombstone{Entity: model.EntitySignup, ID: signupID, DeletedAt: now})
		}
		for i := range tombstones {
			if err := tx.InsertTombstone(ctx, &tombstones[i]); err != nil {
				return fmt.Errorf("failed to record deletion: %w", err)
			}
		}

		logger.Info("Deleted volunteer",
			zap.String("volunteer_id", id),
			zap.Int("signups_removed", len(signupIDs)))
		return nil
	})
}

// MigrateVolunteers rewrites every volunteer still carrying legacy days so
// that only slots remain. Returns how many records changed; a second run
// changes nothing.
func MigrateVolunteers(
	ctx context.Context,
	store MigrateVolunteersStore,
	logger *zap.Logger,
) (int, error) {
	volunteers, err := store.GetVolunteers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	migrated := 0
	for _, v := range volunteers {
		updated, changed := schedule.MigrateVolunteer(v)
		if !changed {
			continue
		}

		updated.UpdatedAt = timeNow().UTC()
		if err := store.UpdateVolunteer(ctx, &updated); err != nil {
			return migrated, fmt.Errorf("failed to migrate volunteer %s: %w", v.ID, err)
		}
		logger.Debug("Migrated volunteer",
			zap.String("volunteer_id", v.ID),
			zap.Strings("slots", updated.RecurringSlots))
		migrated++
	}

	logger.Info("Migration complete", zap.Int("migrated", migrated), zap.Int("total", len(volunteers)))
	return migrated, nil
}

// ListVolunteers returns every volunteer with display names filled in
func ListVolunteers(ctx context.Context, store ListVolunteersStore, logger *zap.Logger) ([]model.Volunteer, error) {
	volunteers, err := store.GetVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	ComputeDisplayNames(volunteers)
	logger.Debug("Listed volunteers", zap.Int("count", len(volunteers)))
	return volunteers, nil
}

type volunteerGetter interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
}

func getVolunteer(ctx context.Context, store volunteerGetter, id string) (*model.Volunteer, error) {
	volunteer, err := store.GetVolunteer(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVolunteerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}
	return volunteer, nil
}
