package db

import (
	"context"
	"errors"
	"time"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// ErrNotFound is returned by point lookups that match no record
var ErrNotFound = errors.New("record not found")

// VolunteerStore defines the volunteer table operations
type VolunteerStore interface {
	GetVolunteers(ctx context.Context) ([]model.Volunteer, error)
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error
	UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error
	DeleteVolunteer(ctx context.Context, id string) error
}

// SignupStore defines the signup ledger operations. There is no unique
// constraint on (volunteerID, date); callers look up with FindSignup first.
type SignupStore interface {
	GetSignups(ctx context.Context) ([]model.VolunteerSignup, error)
	GetSignupsBetween(ctx context.Context, from, to string) ([]model.VolunteerSignup, error)
	GetSignup(ctx context.Context, id string) (*model.VolunteerSignup, error)
	FindSignup(ctx context.Context, volunteerID, date string) (*model.VolunteerSignup, error)
	InsertSignup(ctx context.Context, signup *model.VolunteerSignup) error
	UpdateSignup(ctx context.Context, signup *model.VolunteerSignup) error
	DeleteSignup(ctx context.Context, id string) error
	DeleteSignupsForVolunteer(ctx context.Context, volunteerID string) ([]string, error)
}

// ShiftStore defines the attendance record operations
type ShiftStore interface {
	InsertShift(ctx context.Context, shift *model.VolunteerShift) error
	GetShiftsBetween(ctx context.Context, from, to string) ([]model.VolunteerShift, error)
	DeleteShiftsForVolunteer(ctx context.Context, volunteerID string) error
}

// ClientStore defines client registration and visit operations
type ClientStore interface {
	GetClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	InsertClient(ctx context.Context, client *model.Client) error
	InsertVisit(ctx context.Context, visit *model.Visit) error
	GetVisitsBetween(ctx context.Context, from, to string) ([]model.Visit, error)
}

// NotificationStore is the dedup table for outbound messages
type NotificationStore interface {
	HasNotification(ctx context.Context, volunteerID, sessionDate string, typ model.NotificationType) (bool, error)
	InsertNotification(ctx context.Context, notification *model.Notification) error
}

// SyncStore tracks what still has to be pushed to the cloud replica
type SyncStore interface {
	InsertTombstone(ctx context.Context, tombstone *model.Tombstone) error
	GetTombstonesSince(ctx context.Context, since time.Time) ([]model.Tombstone, error)
	GetSyncState(ctx context.Context) (model.SyncState, error)
	SaveSyncState(ctx context.Context, state model.SyncState) error
}

// Database defines every local storage operation. postgres.DB implements it.
type Database interface {
	VolunteerStore
	SignupStore
	ShiftStore
	ClientStore
	NotificationStore
	SyncStore

	// WithTx runs fn against a transaction-scoped Database, committing when fn
	// returns nil
	WithTx(ctx context.Context, fn func(tx Database) error) error
}

// Replica defines the cloud copy of the volunteer and signup tables.
// CloudDB implements it.
type Replica interface {
	GetVolunteerRows(ctx context.Context) ([]Volunteer, error)
	GetSignupRows(ctx context.Context) ([]Signup, error)
	AppendVolunteerRows(ctx context.Context, rows []Volunteer) error
	AppendSignupRows(ctx context.Context, rows []Signup) error
}
