package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
)

// ReportStore defines the database operations needed for the monthly report
type ReportStore interface {
	ScheduleStore
	GetClients(ctx context.Context) ([]model.Client, error)
	GetVisitsBetween(ctx context.Context, from, to string) ([]model.Visit, error)
	GetShiftsBetween(ctx context.Context, from, to string) ([]model.VolunteerShift, error)
}

// SessionCoverage compares who was scheduled for a session with who checked in
type SessionCoverage struct {
	Date      string
	Weekday   model.Weekday
	Scheduled int
	CheckedIn int
}

// Report summarises one calendar month
type Report struct {
	Year             int
	Month            time.Month
	Visits           int
	Households       int // unique clients served
	IndividualsFed   int // family sizes summed over unique clients
	NewClients       int
	Shifts           int
	VolunteerHours   float64
	ActiveVolunteers int // unique volunteers with a shift
	Sessions         []SessionCoverage
}

// MonthlyReport builds the service and volunteering totals for a month
func MonthlyReport(
	ctx context.Context,
	store ReportStore,
	calendar *schedule.Calendar,
	logger *zap.Logger,
	year int,
	month time.Month,
) (*Report, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	first, last := monthBounds(start)
	report := &Report{Year: year, Month: month, Sessions: []SessionCoverage{}}

	// Fetch clients to count new registrations and look up family sizes
	clients, err := store.GetClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	clientByID := make(map[string]model.Client, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
		if c.CreatedAt.Year() == year && c.CreatedAt.Month() == month {
			report.NewClients++
		}
	}

	// Households count each client once per month
	visits, err := store.GetVisitsBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visits: %w", err)
	}
	report.Visits = len(visits)
	served := make(map[string]bool)
	for _, v := range visits {
		if served[v.ClientID] {
			continue
		}
		served[v.ClientID] = true
		report.Households++
		report.IndividualsFed += clientByID[v.ClientID].FamilySize
	}

	// Shifts give hours and who actually turned up
	shifts, err := store.GetShiftsBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	report.Shifts = len(shifts)
	checkedIn := make(map[string]map[string]bool)
	volunteers := make(map[string]bool)
	for _, s := range shifts {
		report.VolunteerHours += s.HoursWorked
		volunteers[s.VolunteerID] = true
		if checkedIn[s.Date] == nil {
			checkedIn[s.Date] = make(map[string]bool)
		}
		checkedIn[s.Date][s.VolunteerID] = true
	}
	report.ActiveVolunteers = len(volunteers)

	// Compare expected volunteers with check-ins per session
	data, err := loadScheduleData(ctx, store, first, last)
	if err != nil {
		return nil, err
	}

	end := start.AddDate(0, 1, -1)
	for _, session := range calendar.SessionsBetween(start, end) {
		date := schedule.FormatDate(session)
		report.Sessions = append(report.Sessions, SessionCoverage{
			Date:      date,
			Weekday:   schedule.WeekdayName(session),
			Scheduled: len(data.resolve(session)),
			CheckedIn: len(checkedIn[date]),
		})
	}

	logger.Debug("Built monthly report",
		zap.Int("year", year),
		zap.String("month", month.String()),
		zap.Int("visits", report.Visits),
		zap.Int("sessions", len(report.Sessions)))
	return report, nil
}
