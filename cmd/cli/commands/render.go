package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

const dateDisplayFormat = "Mon 02 Jan 2006"

func formatDate(date string) string {
	parsed, err := schedule.ParseDate(date)
	if err != nil {
		return date
	}
	return parsed.Format(dateDisplayFormat)
}

// attendeeLabel renders a volunteer as "Name" or "Name (role)", marking one-off signups
func attendeeLabel(a schedule.Attendee) string {
	name := a.Volunteer.DisplayName
	if name == "" {
		name = strings.TrimSpace(a.Volunteer.FirstName + " " + a.Volunteer.LastName)
	}
	if a.Role != "" {
		name = fmt.Sprintf("%s (%s)", name, a.Role)
	}
	if a.Source == schedule.SourceSignup {
		name += "*"
	}
	return name
}

// coverageColor picks a colour for a session by how many volunteers are expected
func coverageColor(count int) string {
	switch {
	case count == 0:
		return colorRed
	case count < 3:
		return colorYellow
	default:
		return colorGreen
	}
}

func renderAttendees(w io.Writer, date string, attendees []schedule.Attendee) {
	fmt.Fprintf(w, "\nExpected on %s: %d\n\n", formatDate(date), len(attendees))
	if len(attendees) == 0 {
		fmt.Fprintf(w, "  %sNo volunteers expected%s\n\n", colorRed, colorReset)
		return
	}
	for _, a := range attendees {
		line := fmt.Sprintf("  - %-24s %s", attendeeLabel(a), a.Volunteer.ID)
		if a.SignupID != "" {
			line += fmt.Sprintf(" %s[signup %s]%s", colorDim, a.SignupID, colorReset)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func renderSchedule(w io.Writer, view *services.ScheduleView) {
	fmt.Fprintf(w, "\nSchedule %s to %s\n\n", formatDate(view.From), formatDate(view.To))

	sessionIdx, closedIdx := 0, 0
	for sessionIdx < len(view.Sessions) || closedIdx < len(view.Closed) {
		if closedIdx < len(view.Closed) &&
			(sessionIdx >= len(view.Sessions) || view.Closed[closedIdx].Date < view.Sessions[sessionIdx].Date) {
			c := view.Closed[closedIdx]
			reason := c.Reason
			if reason == "" {
				reason = "closed"
			}
			fmt.Fprintf(w, "%s%-17s closed: %s%s\n", colorDim, formatDate(c.Date), reason, colorReset)
			closedIdx++
			continue
		}

		s := view.Sessions[sessionIdx]
		labels := make([]string, 0, len(s.Attendees))
		for _, a := range s.Attendees {
			labels = append(labels, attendeeLabel(a))
		}
		names := strings.Join(labels, ", ")
		if names == "" {
			names = "no volunteers"
		}
		fmt.Fprintf(w, "%-17s %s%2d%s  %s\n", formatDate(s.Date), coverageColor(len(s.Attendees)), len(s.Attendees), colorReset, names)
		sessionIdx++
	}

	if len(view.Sessions) == 0 && len(view.Closed) == 0 {
		fmt.Fprintln(w, "No pantry days in this range.")
	}
	fmt.Fprintf(w, "\n%s* one-off signup%s\n\n", colorDim, colorReset)
}

func renderVolunteers(w io.Writer, volunteers []model.Volunteer) {
	fmt.Fprintf(w, "\nFound %d volunteers:\n\n", len(volunteers))
	for _, v := range volunteers {
		pattern := strings.Join(schedule.EffectiveSlots(v), ", ")
		if pattern == "" {
			pattern = "no recurring pattern"
		}
		legacy := ""
		if len(v.RecurringDays) > 0 {
			legacy = fmt.Sprintf(" %s[legacy days]%s", colorYellow, colorReset)
		}
		email := v.Email
		if email == "" {
			email = "no email"
		}
		fmt.Fprintf(w, "- %s %s (%s) - %s - %s%s\n", v.FirstName, v.LastName, v.ID, email, pattern, legacy)
	}
	fmt.Fprintln(w)
}

func renderReport(w io.Writer, report *services.Report) {
	fmt.Fprintf(w, "\nMonthly report: %s %d\n\n", report.Month, report.Year)

	fmt.Fprintf(w, "Clients\n")
	fmt.Fprintf(w, "  Visits:            %d\n", report.Visits)
	fmt.Fprintf(w, "  Households served: %d\n", report.Households)
	fmt.Fprintf(w, "  Individuals fed:   %d\n", report.IndividualsFed)
	fmt.Fprintf(w, "  New clients:       %d\n\n", report.NewClients)

	fmt.Fprintf(w, "Volunteers\n")
	fmt.Fprintf(w, "  Shifts worked:     %d\n", report.Shifts)
	fmt.Fprintf(w, "  Hours:             %.1f\n", report.VolunteerHours)
	fmt.Fprintf(w, "  Active volunteers: %d\n\n", report.ActiveVolunteers)

	fmt.Fprintf(w, "%-17s %9s %10s\n", "Session", "Scheduled", "Checked in")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, s := range report.Sessions {
		color := ""
		if s.CheckedIn < s.Scheduled {
			color = colorYellow
		}
		fmt.Fprintf(w, "%-17s %9d %s%10d%s\n", formatDate(s.Date), s.Scheduled, color, s.CheckedIn, colorReset)
	}
	fmt.Fprintln(w)
}

func renderReminderResult(w io.Writer, result *services.ReminderResult) {
	if !result.IsSession {
		fmt.Fprintf(w, "\nNo session on %s, no reminders sent.\n\n", formatDate(result.SessionDate))
		return
	}

	fmt.Fprintf(w, "\n✓ Reminders for %s\n\n", formatDate(result.SessionDate))

	if len(result.Sent) > 0 {
		fmt.Fprintf(w, "Sent to %d volunteers:\n", len(result.Sent))
		for _, s := range result.Sent {
			fmt.Fprintf(w, "  ✓ %s (%s)\n", s.VolunteerName, s.Email)
		}
		fmt.Fprintln(w)
	}

	if len(result.Failed) > 0 {
		fmt.Fprintf(w, "⚠️  Failed to send %d emails:\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(w, "  ✗ %s (%s): %s\n", f.VolunteerName, f.Email, f.Error)
		}
		fmt.Fprintln(w)
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "%sSkipped %d:%s\n", colorDim, len(result.Skipped), colorReset)
		for _, s := range result.Skipped {
			fmt.Fprintf(w, "%s  - %s: %s%s\n", colorDim, s.VolunteerName, s.Reason, colorReset)
		}
		fmt.Fprintln(w)
	}

	if len(result.Sent) == 0 && len(result.Failed) == 0 && len(result.Skipped) == 0 {
		fmt.Fprintln(w, "Nobody is expected at this session.")
		fmt.Fprintln(w)
	}
}

func renderSyncResult(w io.Writer, result *services.SyncResult) {
	fmt.Fprintf(w, "\n✓ Sync complete\n\n")
	fmt.Fprintf(w, "Pushed:  %d volunteers, %d signups, %d deletions\n",
		result.PushedVolunteers, result.PushedSignups, result.PushedDeletions)
	fmt.Fprintf(w, "Pulled:  %d volunteers added, %d updated (%d matched by email), %d deleted\n",
		result.VolunteersAdded, result.VolunteersUpdated, result.VolunteersMatched, result.VolunteersDeleted)
	fmt.Fprintf(w, "         %d signups added, %d updated, %d deleted\n",
		result.SignupsAdded, result.SignupsUpdated, result.SignupsDeleted)
	if result.SignupsSkipped > 0 {
		fmt.Fprintf(w, "%s         %d remote signups skipped (unknown volunteer or status)%s\n",
			colorYellow, result.SignupsSkipped, colorReset)
	}
	fmt.Fprintf(w, "Last synced: %s\n\n", result.State.LastSyncedAt.Format("2006-01-02 15:04:05 MST"))
}
