package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/internal/config"
	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
)

// Emailer defines the operations needed to send email
type Emailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ReminderStore defines the database operations needed for shift reminders
type ReminderStore interface {
	ScheduleStore
	HasNotification(ctx context.Context, volunteerID, sessionDate string, typ model.NotificationType) (bool, error)
	InsertNotification(ctx context.Context, notification *model.Notification) error
}

// ReminderSent represents a volunteer who was successfully sent a reminder
type ReminderSent struct {
	VolunteerID   string
	VolunteerName string
	Email         string
}

// FailedEmail represents a reminder that could not be sent
type FailedEmail struct {
	VolunteerID   string
	VolunteerName string
	Email         string
	Error         error
}

// SkippedReminder is an expected volunteer who was not emailed
type SkippedReminder struct {
	VolunteerID   string
	VolunteerName string
	Reason        string
}

// ReminderResult reports one reminder run
type ReminderResult struct {
	SessionDate string
	IsSession   bool
	Sent        []ReminderSent
	Failed      []FailedEmail
	Skipped     []SkippedReminder
}

const (
	skipNoEmail      = "no email address"
	skipAlreadySent  = "already reminded"
	reminderTemplate = `Hi %s,

This is a reminder that you're expected at %s on %s, %s.%s

If you can no longer make it, please let the coordinator know so we can find cover.

Thank you!`
)

// SendShiftReminders emails every volunteer expected at the session
// cfg.Reminders.LeadDays after today. Volunteers already reminded for that
// session are skipped, so a retried run never sends twice. Send failures are
// reported in the result rather than aborting the run.
func SendShiftReminders(
	ctx context.Context,
	store ReminderStore,
	calendar *schedule.Calendar,
	emailer Emailer,
	cfg *config.Config,
	logger *zap.Logger,
	today time.Time,
) (*ReminderResult, error) {
	target := schedule.DateOf(today).AddDate(0, 0, cfg.Reminders.LeadDays)
	targetStr := schedule.FormatDate(target)
	result := &ReminderResult{
		SessionDate: targetStr,
		Sent:        []ReminderSent{},
		Failed:      []FailedEmail{},
		Skipped:     []SkippedReminder{},
	}

	// Only pantry days that are not closed get reminders
	if !calendar.IsSession(target) {
		logger.Info("No session on target date, nothing to send", zap.String("date", targetStr))
		return result, nil
	}
	result.IsSession = true

	// Resolve who is expected on the target date
	data, err := loadScheduleData(ctx, store, targetStr, targetStr)
	if err != nil {
		return nil, err
	}
	attendees := data.resolve(target)
	logger.Debug("Resolved reminder recipients", zap.String("date", targetStr), zap.Int("count", len(attendees)))

	for _, attendee := range attendees {
		v := attendee.Volunteer
		name := displayName(v)

		if strings.TrimSpace(v.Email) == "" {
			result.Skipped = append(result.Skipped, SkippedReminder{VolunteerID: v.ID, VolunteerName: name, Reason: skipNoEmail})
			continue
		}

		// Skip anyone already reminded for this session
		sent, err := store.HasNotification(ctx, v.ID, targetStr, model.NotificationShiftReminder)
		if err != nil {
			return nil, fmt.Errorf("failed to check notifications: %w", err)
		}
		if sent {
			result.Skipped = append(result.Skipped, SkippedReminder{VolunteerID: v.ID, VolunteerName: name, Reason: skipAlreadySent})
			continue
		}

		subject := fmt.Sprintf("%s: your shift on %s", cfg.PantryName, target.Format("Monday 2 January"))
		body := reminderBody(cfg.PantryName, v, attendee, target)

		if err := emailer.SendEmail(ctx, v.Email, subject, body); err != nil {
			logger.Warn("Failed to send reminder", zap.String("volunteer_id", v.ID), zap.Error(err))
			result.Failed = append(result.Failed, FailedEmail{VolunteerID: v.ID, VolunteerName: name, Email: v.Email, Error: err})
			continue
		}

		// Record the send so reruns do not repeat it
		notification := model.Notification{
			ID:          newID(),
			VolunteerID: v.ID,
			SessionDate: targetStr,
			Type:        model.NotificationShiftReminder,
			SentAt:      timeNow().UTC(),
		}
		if err := store.InsertNotification(ctx, &notification); err != nil {
			logger.Warn("Reminder sent but not recorded, it may be sent again",
				zap.String("volunteer_id", v.ID), zap.Error(err))
		}

		result.Sent = append(result.Sent, ReminderSent{VolunteerID: v.ID, VolunteerName: name, Email: v.Email})
	}

	logger.Info("Shift reminders complete",
		zap.String("date", targetStr),
		zap.Int("sent", len(result.Sent)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func reminderBody(pantryName string, v model.Volunteer, attendee schedule.Attendee, date time.Time) string {
	roleLine := ""
	if attendee.Role != "" {
		roleLine = fmt.Sprintf("\nYour role: %s", attendee.Role)
	}
	return fmt.Sprintf(reminderTemplate, v.FirstName, pantryName, date.Format("Monday"), date.Format("2 January 2006"), roleLine)
}
