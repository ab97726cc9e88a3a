package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

const everyPrefix = "every"

// Slot is a parsed recurring-pattern token.
// Ordinal is 0 for an "every-<Weekday>" slot.
type Slot struct {
	Ordinal int
	Weekday model.Weekday
}

func (s Slot) String() string {
	if s.Ordinal == 0 {
		return EverySlot(s.Weekday)
	}
	return OrdinalSlot(s.Ordinal, s.Weekday)
}

// EverySlot returns the "every-<Weekday>" slot for w
func EverySlot(w model.Weekday) string {
	return everyPrefix + "-" + string(w)
}

// OrdinalSlot returns the "<Ordinal>-<Weekday>" slot, e.g. "2nd-Friday"
func OrdinalSlot(n int, w model.Weekday) string {
	return OrdinalLabel(n) + "-" + string(w)
}

// ParseSlot validates a slot string. Only used at input boundaries;
// matching compares slot strings directly.
func ParseSlot(s string) (Slot, error) {
	prefix, day, ok := strings.Cut(s, "-")
	if !ok {
		return Slot{}, fmt.Errorf("invalid slot %q: expected <ordinal>-<Weekday> or every-<Weekday>", s)
	}

	weekday := model.Weekday(day)
	if !weekday.IsValid() {
		return Slot{}, fmt.Errorf("invalid slot %q: unknown weekday %q", s, day)
	}

	if prefix == everyPrefix {
		return Slot{Weekday: weekday}, nil
	}

	ordinal := slices.Index(ordinalLabels, prefix) + 1
	if ordinal == 0 {
		return Slot{}, fmt.Errorf("invalid slot %q: unknown ordinal %q", s, prefix)
	}

	return Slot{Ordinal: ordinal, Weekday: weekday}, nil
}

// Matches reports whether the volunteer's recurring pattern covers the date.
// Slots win over legacy days whenever any slot is present.
func Matches(v model.Volunteer, date time.Time, weekday model.Weekday) bool {
	if len(v.RecurringSlots) > 0 {
		return slices.Contains(v.RecurringSlots, SlotFor(date)) ||
			slices.Contains(v.RecurringSlots, EverySlot(weekday))
	}

	if len(v.RecurringDays) > 0 {
		return slices.Contains(v.RecurringDays, weekday)
	}

	return false
}

// MigrateLegacyDays converts legacy weekday entries to "every-<Weekday>" slots
func MigrateLegacyDays(days []model.Weekday) []string {
	slots := make([]string, 0, len(days))
	for _, d := range days {
		slots = append(slots, EverySlot(d))
	}
	return slots
}

// EffectiveSlots is the read-path view of a volunteer's pattern: the slots if
// present, otherwise the migrated legacy days. The record is not modified.
func EffectiveSlots(v model.Volunteer) []string {
	if len(v.RecurringSlots) > 0 {
		return slices.Clone(v.RecurringSlots)
	}
	return MigrateLegacyDays(v.RecurringDays)
}

// MigrateVolunteer is the write-path migration. It clears RecurringDays and,
// when no slots exist yet, replaces them with the migrated slot list.
// Existing slots are kept as-is because they already shadow the legacy days.
// Reports whether anything changed; a volunteer without RecurringDays is untouched.
func MigrateVolunteer(v model.Volunteer) (model.Volunteer, bool) {
	if len(v.RecurringDays) == 0 {
		return v, false
	}

	if len(v.RecurringSlots) == 0 {
		v.RecurringSlots = MigrateLegacyDays(v.RecurringDays)
	}
	v.RecurringDays = nil

	return v, true
}
