package db

import (
	"slices"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// VolunteerFromModel converts a local volunteer to its network shape
func VolunteerFromModel(v model.Volunteer) Volunteer {
	days := make([]string, 0, len(v.RecurringDays))
	for _, d := range v.RecurringDays {
		days = append(days, string(d))
	}

	return Volunteer{
		ID:             v.ID,
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		Email:          v.Email,
		Phone:          v.Phone,
		RecurringDays:  days,
		RecurringSlots: slices.Clone(v.RecurringSlots),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

// ToModel converts a network row to a local volunteer. Both pattern fields
// are carried over as-is so unmigrated records keep their legacy days.
func (r Volunteer) ToModel() model.Volunteer {
	var days []model.Weekday
	for _, d := range r.RecurringDays {
		if d == "" {
			continue
		}
		days = append(days, model.Weekday(d))
	}

	var slots []string
	for _, s := range r.RecurringSlots {
		if s != "" {
			slots = append(slots, s)
		}
	}

	return model.Volunteer{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		RecurringDays:  days,
		RecurringSlots: slots,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// SignupFromModel converts a local signup to its network shape
func SignupFromModel(s model.VolunteerSignup) Signup {
	return Signup{
		ID:          s.ID,
		VolunteerID: s.VolunteerID,
		Date:        s.Date,
		DayOfWeek:   string(s.DayOfWeek),
		Role:        s.Role,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r Signup) ToModel() model.VolunteerSignup {
	return model.VolunteerSignup{
		ID:          r.ID,
		VolunteerID: r.VolunteerID,
		Date:        r.Date,
		DayOfWeek:   model.Weekday(r.DayOfWeek),
		Role:        r.Role,
		Status:      model.SignupStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// TombstoneRows converts local deletions to deleted=true rows for each table
func TombstoneRows(tombstones []model.Tombstone) ([]Volunteer, []Signup) {
	var volunteers []Volunteer
	var signups []Signup
	for _, t := range tombstones {
		switch t.Entity {
		case model.EntityVolunteer:
			volunteers = append(volunteers, Volunteer{ID: t.ID, UpdatedAt: t.DeletedAt, Deleted: true})
		case model.EntitySignup:
			signups = append(signups, Signup{ID: t.ID, UpdatedAt: t.DeletedAt, Deleted: true})
		}
	}
	return volunteers, signups
}
