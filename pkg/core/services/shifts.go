package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
)

// CheckInInput describes a volunteer arriving for a shift
type CheckInInput struct {
	VolunteerID string `validate:"required"`
	Date        string `validate:"required"`
	Role        string
	HoursWorked float64 `validate:"gte=0"`
	Notes       string
}

// CheckInStore defines the database operations needed to record attendance
type CheckInStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	InsertShift(ctx context.Context, shift *model.VolunteerShift) error
}

// CheckInVolunteer records that a volunteer worked a shift. It does not
// consult or change the signup ledger.
func CheckInVolunteer(
	ctx context.Context,
	store CheckInStore,
	logger *zap.Logger,
	input CheckInInput,
) (*model.VolunteerShift, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid check-in: %w", err)
	}

	date, err := parseDateInput(input.Date)
	if err != nil {
		return nil, err
	}

	volunteer, err := getVolunteer(ctx, store, input.VolunteerID)
	if err != nil {
		return nil, err
	}

	shift := &model.VolunteerShift{
		ID:          newID(),
		VolunteerID: volunteer.ID,
		Date:        schedule.FormatDate(date),
		DayOfWeek:   schedule.WeekdayName(date),
		Role:        strings.TrimSpace(input.Role),
		HoursWorked: input.HoursWorked,
		Notes:       strings.TrimSpace(input.Notes),
		CreatedAt:   timeNow().UTC(),
	}

	if err := store.InsertShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to save shift: %w", err)
	}

	logger.Info("Checked in volunteer",
		zap.String("volunteer_id", volunteer.ID),
		zap.String("date", shift.Date),
		zap.Float64("hours", shift.HoursWorked))
	return shift, nil
}
