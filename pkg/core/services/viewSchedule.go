package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
)

// maxScheduleDays bounds a single schedule query
const maxScheduleDays = 366

// ScheduleStore defines the database operations needed to resolve who is expected on a date
type ScheduleStore interface {
	GetVolunteers(ctx context.Context) ([]model.Volunteer, error)
	GetSignupsBetween(ctx context.Context, from, to string) ([]model.VolunteerSignup, error)
}

// Session is one open pantry day and the volunteers expected there
type Session struct {
	Date      string
	Weekday   model.Weekday
	Attendees []schedule.Attendee
}

// ClosedDay is a pantry day removed by a configured closure
type ClosedDay struct {
	Date    string
	Weekday model.Weekday
	Reason  string
}

// ScheduleView is the resolved schedule for a date range
type ScheduleView struct {
	From     string
	To       string
	Sessions []Session
	Closed   []ClosedDay
}

// scheduleData holds the records a range of dates resolves against, fetched once
type scheduleData struct {
	volunteers []model.Volunteer
	signups    []model.VolunteerSignup
}

func loadScheduleData(ctx context.Context, store ScheduleStore, from, to string) (*scheduleData, error) {
	volunteers, err := store.GetVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}
	ComputeDisplayNames(volunteers)

	signups, err := store.GetSignupsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signups: %w", err)
	}

	return &scheduleData{volunteers: volunteers, signups: signups}, nil
}

func (d *scheduleData) resolve(date time.Time) []schedule.Attendee {
	return schedule.VolunteersForDate(date, schedule.WeekdayName(date), d.volunteers, d.signups)
}

// GetAttendees resolves the volunteers expected on a single date. An empty
// result is a valid answer meaning no coverage.
func GetAttendees(
	ctx context.Context,
	store ScheduleStore,
	logger *zap.Logger,
	dateStr string,
) ([]schedule.Attendee, error) {
	date, err := parseDateInput(dateStr)
	if err != nil {
		return nil, err
	}
	dateStr = schedule.FormatDate(date)

	data, err := loadScheduleData(ctx, store, dateStr, dateStr)
	if err != nil {
		return nil, err
	}

	attendees := data.resolve(date)
	logger.Debug("Resolved attendees", zap.String("date", dateStr), zap.Int("count", len(attendees)))
	return attendees, nil
}

// ViewSchedule resolves every pantry day in [from, to]. Days removed by a
// closure are listed separately with their reason.
func ViewSchedule(
	ctx context.Context,
	store ScheduleStore,
	calendar *schedule.Calendar,
	logger *zap.Logger,
	fromStr, toStr string,
) (*ScheduleView, error) {
	from, err := parseDateInput(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := parseDateInput(toStr)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDate, toStr, fromStr)
	}
	if to.Sub(from) > maxScheduleDays*24*time.Hour {
		return nil, fmt.Errorf("%w: range is longer than %d days", ErrInvalidDate, maxScheduleDays)
	}

	view := &ScheduleView{
		From:     schedule.FormatDate(from),
		To:       schedule.FormatDate(to),
		Sessions: []Session{},
	}

	data, err := loadScheduleData(ctx, store, view.From, view.To)
	if err != nil {
		return nil, err
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if !schedule.IsPantryDay(day) {
			continue
		}

		weekday := schedule.WeekdayName(day)
		if reason, closed := calendar.ClosureReason(day); closed {
			view.Closed = append(view.Closed, ClosedDay{Date: schedule.FormatDate(day), Weekday: weekday, Reason: reason})
			continue
		}

		view.Sessions = append(view.Sessions, Session{
			Date:      schedule.FormatDate(day),
			Weekday:   weekday,
			Attendees: data.resolve(day),
		})
	}

	logger.Debug("Built schedule view",
		zap.String("from", view.From),
		zap.String("to", view.To),
		zap.Int("sessions", len(view.Sessions)),
		zap.Int("closed", len(view.Closed)))
	return view, nil
}
