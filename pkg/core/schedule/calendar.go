package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Closure is a recurring rule for dates the pantry is shut (bank holidays etc.)
type Closure struct {
	RRule  string
	Reason string
}

// closureEpoch anchors rules written without a DTSTART, so INTERVAL and
// DTSTART-derived fields (a bare FREQ=YEARLY closes 1 January) have a fixed phase
var closureEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type closureRule struct {
	rule   *rrule.RRule
	reason string
}

// Calendar knows which dates are pantry sessions. Lookups do not modify it.
type Calendar struct {
	closures []closureRule
}

// NewCalendar parses the closure rules. A nil or empty list yields a calendar
// where every pantry day is a session.
func NewCalendar(closures []Closure) (*Calendar, error) {
	cal := &Calendar{closures: make([]closureRule, 0, len(closures))}
	for i, c := range closures {
		rule, err := parseClosureRule(c.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closure rule %d: %w", i, err)
		}
		cal.closures = append(cal.closures, closureRule{rule: rule, reason: c.Reason})
	}
	return cal, nil
}

func parseClosureRule(text string) (*rrule.RRule, error) {
	option, err := rrule.StrToROption(text)
	if err != nil {
		return nil, err
	}
	if option.Dtstart.IsZero() {
		option.Dtstart = closureEpoch
	}
	return rrule.NewRRule(*option)
}

// ClosureReason returns the reason the pantry is closed on date, if any
func (c *Calendar) ClosureReason(date time.Time) (string, bool) {
	day := DateOf(date)
	endOfDay := day.Add(24*time.Hour - time.Second)
	for _, cl := range c.closures {
		if len(cl.rule.Between(day, endOfDay, true)) > 0 {
			return cl.reason, true
		}
	}
	return "", false
}

// IsClosed reports whether a closure rule covers the date
func (c *Calendar) IsClosed(date time.Time) bool {
	_, closed := c.ClosureReason(date)
	return closed
}

// IsSession reports whether the pantry runs a session on the date
func (c *Calendar) IsSession(date time.Time) bool {
	return IsPantryDay(date) && !c.IsClosed(date)
}

// SessionsBetween returns every session date in [from, to], ascending
func (c *Calendar) SessionsBetween(from, to time.Time) []time.Time {
	start, end := DateOf(from), DateOf(to)
	sessions := make([]time.Time, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if c.IsSession(day) {
			sessions = append(sessions, day)
		}
	}
	return sessions
}
