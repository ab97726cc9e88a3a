package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

func attendeeIDs(attendees []Attendee) []string {
	ids := make([]string, 0, len(attendees))
	for _, a := range attendees {
		ids = append(ids, a.Volunteer.ID)
	}
	return ids
}

func TestVolunteersForDate_RecurringMatch(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "a", FirstName: "Ann", LastName: "Adams", RecurringSlots: []string{"every-Monday"}},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, nil)

	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].Volunteer.ID)
	assert.Equal(t, SourceRecurring, result[0].Source)
	assert.Empty(t, result[0].Role)
	assert.Empty(t, result[0].SignupID)
}

func TestVolunteersForDate_CancellationOnlyAffectsThatDate(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "a", LastName: "Adams", RecurringSlots: []string{"every-Monday"}},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "a", Date: "2026-02-16", DayOfWeek: model.Monday, Status: model.SignupStatusCancelled},
	}

	assert.Empty(t, VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, signups))

	next := VolunteersForDate(mustDate(t, "2026-02-23"), model.Monday, volunteers, signups)
	assert.Equal(t, []string{"a"}, attendeeIDs(next))
}

func TestVolunteersForDate_OneOffSignup(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "b", LastName: "Brown"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "b", Date: "2026-02-16", Role: "Setup", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, signups)

	require.Len(t, result, 1)
	assert.Equal(t, "b", result[0].Volunteer.ID)
	assert.Equal(t, SourceSignup, result[0].Source)
	assert.Equal(t, "Setup", result[0].Role)
	assert.Equal(t, "s1", result[0].SignupID)
}

func TestVolunteersForDate_RecurringAndSignedUpAppearsOnceAsRecurring(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "d", LastName: "Davis", RecurringDays: []model.Weekday{model.Monday}},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "d", Date: "2026-02-16", Role: "Intake", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, signups)

	require.Len(t, result, 1)
	assert.Equal(t, SourceRecurring, result[0].Source)
	assert.Empty(t, result[0].Role)
}

func TestVolunteersForDate_CancelledWithoutPatternIsNoOp(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "a", LastName: "Adams", RecurringSlots: []string{"every-Friday"}},
		{ID: "b", LastName: "Brown"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "b", Date: "2026-02-20", Status: model.SignupStatusCancelled},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-20"), model.Friday, volunteers, signups)

	assert.Equal(t, []string{"a"}, attendeeIDs(result))
}

func TestVolunteersForDate_OrphanedSignupIgnored(t *testing.T) {
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "deleted", Date: "2026-02-16", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, nil, signups)

	assert.Empty(t, result)
	assert.NotNil(t, result)
}

func TestVolunteersForDate_SignupsForOtherDatesIgnored(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "a", LastName: "Adams", RecurringSlots: []string{"every-Monday"}},
		{ID: "b", LastName: "Brown"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "a", Date: "2026-02-23", Status: model.SignupStatusCancelled},
		{ID: "s2", VolunteerID: "b", Date: "2026-02-23", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, signups)

	assert.Equal(t, []string{"a"}, attendeeIDs(result))
}

func TestVolunteersForDate_DuplicateSignupsIncludedOnce(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "b", LastName: "Brown"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "b", Date: "2026-02-16", Role: "Setup", Status: model.SignupStatusSignedUp},
		{ID: "s2", VolunteerID: "b", Date: "2026-02-16", Role: "Intake", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-16"), model.Monday, volunteers, signups)

	require.Len(t, result, 1)
	// First encountered wins
	assert.Equal(t, "s1", result[0].SignupID)
	assert.Equal(t, "Setup", result[0].Role)
}

func TestVolunteersForDate_SortedByLastName(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "z", LastName: "Zimmer", RecurringSlots: []string{"every-Saturday"}},
		{ID: "m", LastName: "Miller", RecurringSlots: []string{"3rd-Saturday"}},
		{ID: "o", LastName: "obrien", RecurringDays: []model.Weekday{model.Saturday}},
		{ID: "a", LastName: "Adams"},
		{ID: "m2", LastName: "Miller"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "a", Date: "2026-02-21", Status: model.SignupStatusSignedUp},
		{ID: "s2", VolunteerID: "m2", Date: "2026-02-21", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-02-21"), model.Saturday, volunteers, signups)

	// Locale collation places "obrien" between Miller and Zimmer; the
	// recurring Miller stays ahead of the signed-up Miller
	assert.Equal(t, []string{"a", "m", "m2", "o", "z"}, attendeeIDs(result))
	assert.Equal(t, SourceRecurring, result[1].Source)
	assert.Equal(t, SourceSignup, result[2].Source)
}

func TestVolunteersForDate_NonPantryDayStillResolves(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "b", LastName: "Brown"},
	}
	signups := []model.VolunteerSignup{
		{ID: "s1", VolunteerID: "b", Date: "2026-10-15", Status: model.SignupStatusSignedUp},
	}

	result := VolunteersForDate(mustDate(t, "2026-10-15"), model.Thursday, volunteers, signups)

	assert.Equal(t, []string{"b"}, attendeeIDs(result))
}

func TestVolunteersForDate_NoDuplicatesAcrossMonth(t *testing.T) {
	volunteers := []model.Volunteer{
		{ID: "a", LastName: "Adams", RecurringSlots: []string{"every-Monday", "1st-Monday"}},
		{ID: "b", LastName: "Brown", RecurringDays: []model.Weekday{model.Monday, model.Friday}},
	}
	signups := make([]model.VolunteerSignup, 0)
	for day := mustDate(t, "2026-02-01"); day.Month() == 2; day = day.AddDate(0, 0, 1) {
		for _, id := range []string{"a", "b"} {
			signups = append(signups, model.VolunteerSignup{
				ID: id + FormatDate(day), VolunteerID: id, Date: FormatDate(day), Status: model.SignupStatusSignedUp,
			})
		}
	}

	for day := mustDate(t, "2026-02-01"); day.Month() == 2; day = day.AddDate(0, 0, 1) {
		result := VolunteersForDate(day, WeekdayName(day), volunteers, signups)
		seen := make(map[string]bool)
		for _, a := range result {
			assert.False(t, seen[a.Volunteer.ID], "duplicate %s on %s", a.Volunteer.ID, FormatDate(day))
			seen[a.Volunteer.ID] = true
		}
		assert.Len(t, result, 2, FormatDate(day))
	}
}
