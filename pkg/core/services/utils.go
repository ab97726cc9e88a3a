package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

var (
	validate = validator.New()

	// timeNow is replaced in tests
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

type transactor interface {
	WithTx(ctx context.Context, fn func(tx db.Database) error) error
}

// inTx runs fn inside a store transaction when the store offers one, and
// directly against the store otherwise
func inTx[S any](ctx context.Context, store S, fn func(S) error) error {
	t, ok := any(store).(transactor)
	if !ok {
		return fn(store)
	}
	return t.WithTx(ctx, func(tx db.Database) error {
		scoped, ok := any(tx).(S)
		if !ok {
			return fn(store)
		}
		return fn(scoped)
	})
}

// parseDateInput validates a YYYY-MM-DD string from user input
func parseDateInput(s string) (time.Time, error) {
	date, err := schedule.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return date, nil
}

// monthBounds returns the first and last calendar day of the month containing date
func monthBounds(date time.Time) (string, string) {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return schedule.FormatDate(first), schedule.FormatDate(last)
}

// ComputeDisplayNames calculates display names for a list of volunteers based on uniqueness:
// - If first name is unique: use first name only
// - If first name + initial of surname is unique: use "FirstName L."
// - Otherwise: use full name "FirstName LastName"
func ComputeDisplayNames(volunteers []model.Volunteer) {
	firstNameCounts := make(map[string]int)
	initialCounts := make(map[string]int)
	for _, v := range volunteers {
		firstNameCounts[v.FirstName]++
		if key, ok := initialName(v); ok {
			initialCounts[key]++
		}
	}

	for i := range volunteers {
		v := &volunteers[i]

		if firstNameCounts[v.FirstName] == 1 {
			v.DisplayName = v.FirstName
			continue
		}

		if key, ok := initialName(*v); ok && initialCounts[key] == 1 {
			v.DisplayName = key
			continue
		}

		v.DisplayName = strings.TrimSpace(v.FirstName + " " + v.LastName)
	}
}

func initialName(v model.Volunteer) (string, bool) {
	if v.LastName == "" {
		return "", false
	}
	initial, _ := utf8.DecodeRuneInString(v.LastName)
	return v.FirstName + " " + string(initial) + ".", true
}

func displayName(v model.Volunteer) string {
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}
