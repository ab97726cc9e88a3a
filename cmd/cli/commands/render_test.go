package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

func TestCoverageColor(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected string
	}{
		{"nobody - red", 0, colorRed},
		{"one - yellow", 1, colorYellow},
		{"two - yellow", 2, colorYellow},
		{"three - green", 3, colorGreen},
		{"ten - green", 10, colorGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coverageColor(tt.count))
		})
	}
}

func TestAttendeeLabel(t *testing.T) {
	ada := model.Volunteer{ID: "vol-1", FirstName: "Ada", LastName: "Lovelace"}

	tests := []struct {
		name     string
		attendee schedule.Attendee
		expected string
	}{
		{
			name:     "recurring falls back to full name",
			attendee: schedule.Attendee{Volunteer: ada, Source: schedule.SourceRecurring},
			expected: "Ada Lovelace",
		},
		{
			name: "display name wins",
			attendee: schedule.Attendee{
				Volunteer: model.Volunteer{ID: "vol-1", FirstName: "Ada", LastName: "Lovelace", DisplayName: "Ada"},
				Source:    schedule.SourceRecurring,
			},
			expected: "Ada",
		},
		{
			name:     "signup is starred",
			attendee: schedule.Attendee{Volunteer: ada, Source: schedule.SourceSignup, SignupID: "s-1"},
			expected: "Ada Lovelace*",
		},
		{
			name:     "signup with role",
			attendee: schedule.Attendee{Volunteer: ada, Source: schedule.SourceSignup, Role: "intake", SignupID: "s-1"},
			expected: "Ada Lovelace (intake)*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, attendeeLabel(tt.attendee))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Sat 14 Mar 2026", formatDate("2026-03-14"))
	assert.Equal(t, "not-a-date", formatDate("not-a-date"))
}

func TestRenderAttendees(t *testing.T) {
	t.Run("empty session", func(t *testing.T) {
		var buf bytes.Buffer
		renderAttendees(&buf, "2026-03-09", nil)

		out := buf.String()
		assert.Contains(t, out, "Expected on Mon 09 Mar 2026: 0")
		assert.Contains(t, out, "No volunteers expected")
	})

	t.Run("lists signup ids", func(t *testing.T) {
		var buf bytes.Buffer
		renderAttendees(&buf, "2026-03-14", []schedule.Attendee{
			{Volunteer: model.Volunteer{ID: "vol-2", FirstName: "Grace", LastName: "Hopper"}, Source: schedule.SourceRecurring},
			{Volunteer: model.Volunteer{ID: "vol-1", FirstName: "Ada", LastName: "Lovelace"}, Source: schedule.SourceSignup, SignupID: "s-9"},
		})

		out := buf.String()
		assert.Contains(t, out, "Expected on Sat 14 Mar 2026: 2")
		assert.Contains(t, out, "Grace Hopper")
		assert.Contains(t, out, "Ada Lovelace*")
		assert.Contains(t, out, "[signup s-9]")
	})
}

func TestRenderSchedule_InterleavesClosedDays(t *testing.T) {
	view := &services.ScheduleView{
		From: "2026-03-09",
		To:   "2026-03-14",
		Sessions: []services.Session{
			{Date: "2026-03-09", Weekday: model.Monday},
			{Date: "2026-03-14", Weekday: model.Saturday, Attendees: []schedule.Attendee{
				{Volunteer: model.Volunteer{ID: "vol-2", FirstName: "Grace", LastName: "Hopper"}, Source: schedule.SourceRecurring},
			}},
		},
		Closed: []services.ClosedDay{
			{Date: "2026-03-13", Weekday: model.Friday, Reason: "Deep clean"},
		},
	}

	var buf bytes.Buffer
	renderSchedule(&buf, view)
	out := buf.String()

	monday := bytes.Index(buf.Bytes(), []byte("Mon 09 Mar 2026"))
	friday := bytes.Index(buf.Bytes(), []byte("Fri 13 Mar 2026"))
	saturday := bytes.Index(buf.Bytes(), []byte("Sat 14 Mar 2026"))
	require.True(t, monday >= 0 && friday >= 0 && saturday >= 0)
	assert.Less(t, monday, friday)
	assert.Less(t, friday, saturday)

	assert.Contains(t, out, "closed: Deep clean")
	assert.Contains(t, out, "no volunteers")
	assert.Contains(t, out, "Grace Hopper")
	assert.NotContains(t, out, "No pantry days in this range.")
}

func TestRenderSchedule_EmptyRange(t *testing.T) {
	var buf bytes.Buffer
	renderSchedule(&buf, &services.ScheduleView{From: "2026-03-10", To: "2026-03-12"})

	assert.Contains(t, buf.String(), "No pantry days in this range.")
}

func TestRenderVolunteers(t *testing.T) {
	var buf bytes.Buffer
	renderVolunteers(&buf, []model.Volunteer{
		{ID: "vol-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", RecurringSlots: []string{"every-Monday"}},
		{ID: "vol-2", FirstName: "Bo", LastName: "Diaz", RecurringDays: []model.Weekday{model.Friday}},
		{ID: "vol-3", FirstName: "Lin", LastName: "Chen"},
	})
	out := buf.String()

	assert.Contains(t, out, "Found 3 volunteers")
	assert.Contains(t, out, "Ada Lovelace (vol-1) - ada@example.com - every-Monday")
	assert.Contains(t, out, "Bo Diaz (vol-2) - no email - every-Friday")
	assert.Contains(t, out, "[legacy days]")
	assert.Contains(t, out, "Lin Chen (vol-3) - no email - no recurring pattern")
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, &services.Report{
		Year:             2026,
		Month:            time.March,
		Visits:           4,
		Households:       3,
		IndividualsFed:   9,
		NewClients:       1,
		Shifts:           5,
		VolunteerHours:   12.5,
		ActiveVolunteers: 2,
		Sessions: []services.SessionCoverage{
			{Date: "2026-03-02", Weekday: model.Monday, Scheduled: 2, CheckedIn: 1},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "Monthly report: March 2026")
	assert.Contains(t, out, "Individuals fed:   9")
	assert.Contains(t, out, "Hours:             12.5")
	assert.Contains(t, out, "Mon 02 Mar 2026")
	// under-attended sessions are highlighted
	assert.Contains(t, out, colorYellow)
}

func TestRenderReminderResult(t *testing.T) {
	t.Run("not a session", func(t *testing.T) {
		var buf bytes.Buffer
		renderReminderResult(&buf, &services.ReminderResult{SessionDate: "2026-03-10"})
		assert.Contains(t, buf.String(), "No session on Tue 10 Mar 2026")
	})

	t.Run("sent failed and skipped", func(t *testing.T) {
		var buf bytes.Buffer
		renderReminderResult(&buf, &services.ReminderResult{
			SessionDate: "2026-03-14",
			IsSession:   true,
			Sent:        []services.ReminderSent{{VolunteerID: "vol-1", VolunteerName: "Ada", Email: "ada@example.com"}},
			Failed:      []services.FailedEmail{{VolunteerID: "vol-4", VolunteerName: "Bo", Email: "bo@example.com", Error: errors.New("quota")}},
			Skipped:     []services.SkippedReminder{{VolunteerID: "vol-3", VolunteerName: "Lin", Reason: "no email address"}},
		})
		out := buf.String()

		assert.Contains(t, out, "Sent to 1 volunteers")
		assert.Contains(t, out, "✓ Ada (ada@example.com)")
		assert.Contains(t, out, "✗ Bo (bo@example.com): quota")
		assert.Contains(t, out, "Lin: no email address")
		assert.NotContains(t, out, "Nobody is expected")
	})

	t.Run("empty session", func(t *testing.T) {
		var buf bytes.Buffer
		renderReminderResult(&buf, &services.ReminderResult{SessionDate: "2026-03-14", IsSession: true})
		assert.Contains(t, buf.String(), "Nobody is expected at this session.")
	})
}

func TestRenderSyncResult(t *testing.T) {
	var buf bytes.Buffer
	renderSyncResult(&buf, &services.SyncResult{
		PushedVolunteers: 2,
		PushedSignups:    1,
		VolunteersAdded:  1,
		SignupsSkipped:   3,
		State:            model.SyncState{LastSyncedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
	})
	out := buf.String()

	assert.Contains(t, out, "Pushed:  2 volunteers, 1 signups, 0 deletions")
	assert.Contains(t, out, "3 remote signups skipped")
	assert.Contains(t, out, "Last synced: 2026-03-14 09:30:00 UTC")
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{"plain", "attendees 2026-03-14", []string{"attendees", "2026-03-14"}, false},
		{"double quotes", `registerVolunteer --first "Mary Ann" --last Smith`, []string{"registerVolunteer", "--first", "Mary Ann", "--last", "Smith"}, false},
		{"single quotes", `checkIn vol-1 2026-03-14 --notes 'left early'`, []string{"checkIn", "vol-1", "2026-03-14", "--notes", "left early"}, false},
		{"extra spaces", "  list   ", []string{"list"}, false},
		{"unclosed quote", `signUp "vol-1`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestResetFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	slots := cmd.Flags().StringSlice("slots", nil, "")
	role := cmd.Flags().String("role", "general", "")

	require.NoError(t, cmd.ParseFlags([]string{"--slots", "every-Monday", "--role", "intake"}))
	assert.Equal(t, []string{"every-Monday"}, *slots)

	resetFlags(cmd)
	assert.Empty(t, *slots)
	assert.Equal(t, "general", *role)
	assert.False(t, cmd.Flags().Changed("slots"))

	require.NoError(t, cmd.ParseFlags([]string{"--slots", "1st-Saturday"}))
	assert.Equal(t, []string{"1st-Saturday"}, *slots)
}
