package schedule

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

type Source string

const (
	SourceRecurring Source = "recurring"
	SourceSignup    Source = "signup"
)

// Attendee is a volunteer expected at a session
type Attendee struct {
	Volunteer model.Volunteer
	Source    Source
	Role      string // only set for SourceSignup
	SignupID  string // only set for SourceSignup, used to remove the signup
}

// VolunteersForDate merges recurring patterns with the signup ledger for one date.
//
// Recurring matches come first, minus anyone with a cancellation for the date.
// Signed-up records then add volunteers not already present. Signups whose
// volunteer no longer exists are dropped by the join. The result is ordered by
// last name (locale collation, stable so recurring precedes signup on ties).
//
// The function performs no validation and never fails; an empty result means
// no coverage.
func VolunteersForDate(date time.Time, weekday model.Weekday, volunteers []model.Volunteer, signups []model.VolunteerSignup) []Attendee {
	dateStr := FormatDate(date)

	cancelled := make(map[string]bool)
	for _, s := range signups {
		if s.Date == dateStr && s.Status == model.SignupStatusCancelled {
			cancelled[s.VolunteerID] = true
		}
	}

	volunteersByID := make(map[string]model.Volunteer, len(volunteers))
	for _, v := range volunteers {
		volunteersByID[v.ID] = v
	}

	included := make(map[string]bool)
	attendees := make([]Attendee, 0)

	for _, v := range volunteers {
		if included[v.ID] || cancelled[v.ID] || !Matches(v, date, weekday) {
			continue
		}
		included[v.ID] = true
		attendees = append(attendees, Attendee{Volunteer: v, Source: SourceRecurring})
	}

	for _, s := range signups {
		if s.Date != dateStr || s.Status != model.SignupStatusSignedUp || included[s.VolunteerID] {
			continue
		}
		v, exists := volunteersByID[s.VolunteerID]
		if !exists {
			continue
		}
		included[v.ID] = true
		attendees = append(attendees, Attendee{
			Volunteer: v,
			Source:    SourceSignup,
			Role:      s.Role,
			SignupID:  s.ID,
		})
	}

	sortByLastName(attendees)

	return attendees
}

// sortByLastName orders attendees by last name using English collation
func sortByLastName(attendees []Attendee) {
	// Collators keep internal buffers, so one per call
	c := collate.New(language.English)
	sort.SliceStable(attendees, func(i, j int) bool {
		return c.CompareString(attendees[i].Volunteer.LastName, attendees[j].Volunteer.LastName) < 0
	})
}
