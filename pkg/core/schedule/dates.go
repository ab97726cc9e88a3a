package schedule

import (
	"fmt"
	"time"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

var ordinalLabels = []string{"1st", "2nd", "3rd", "4th", "5th"}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
// The result is midnight UTC of that calendar day so that no local
// timezone offset can move it across a day boundary.
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return date, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(model.DateLayout)
}

// DateOf returns the calendar date t falls on in its own location,
// normalised to midnight UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayName returns the day name of the date
func WeekdayName(date time.Time) model.Weekday {
	return model.Weekday(date.Weekday().String())
}

// IsPantryDay reports whether the date falls on Monday, Friday or Saturday
func IsPantryDay(date time.Time) bool {
	return WeekdayName(date).IsPantryDay()
}

// OrdinalOccurrence returns which occurrence (1..5) of its weekday the date is
// within its month, i.e. ceil(dayOfMonth / 7)
func OrdinalOccurrence(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

// OrdinalLabel returns "1st".."5th" for n in 1..5 and "" otherwise
func OrdinalLabel(n int) string {
	if n < 1 || n > len(ordinalLabels) {
		return ""
	}
	return ordinalLabels[n-1]
}

// SlotFor returns the ordinal slot of the date, e.g. "3rd-Monday"
func SlotFor(date time.Time) string {
	return OrdinalSlot(OrdinalOccurrence(date), WeekdayName(date))
}
