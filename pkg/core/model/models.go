package model

import "time"

// DateLayout is the calendar date format used for every date-only field
const DateLayout = "2006-01-02"

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// PantryDays are the weekdays on which the pantry runs a session
var PantryDays = []Weekday{Monday, Friday, Saturday}

func (w Weekday) IsValid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

func (w Weekday) IsPantryDay() bool {
	return w == Monday || w == Friday || w == Saturday
}

type SignupStatus string

const (
	SignupStatusSignedUp  SignupStatus = "signed-up"
	SignupStatusCancelled SignupStatus = "cancelled"
)

func (s SignupStatus) IsValid() bool {
	return s == SignupStatusSignedUp || s == SignupStatusCancelled
}

type NotificationType string

const (
	NotificationShiftReminder NotificationType = "shift-reminder"
)

// Volunteer represents a pantry volunteer and their standing commitment.
// RecurringSlots takes precedence over RecurringDays whenever it is non-empty;
// RecurringDays only survives on records that were never migrated.
type Volunteer struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	RecurringDays  []Weekday
	RecurringSlots []string
	DisplayName    string // computed, not persisted
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VolunteerSignup is a per-date override layered on top of a recurring pattern
type VolunteerSignup struct {
	ID          string
	VolunteerID string
	Date        string // YYYY-MM-DD
	DayOfWeek   Weekday
	Role        string // optional
	Status      SignupStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VolunteerShift is a realized attendance record created at check-in
type VolunteerShift struct {
	ID          string
	VolunteerID string
	Date        string
	DayOfWeek   Weekday
	Role        string
	HoursWorked float64
	Notes       string
	CreatedAt   time.Time
}

// Client is a household registered with the pantry
type Client struct {
	ID         string
	FirstName  string
	LastName   string
	FamilySize int
	Phone      string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Visit records a client being served on a date
type Visit struct {
	ID        string
	ClientID  string
	Date      string
	ServedBy  string // volunteer ID or free text
	CreatedAt time.Time
}

// Notification records an outbound message so retried jobs don't resend it
type Notification struct {
	ID          string
	VolunteerID string
	SessionDate string
	Type        NotificationType
	SentAt      time.Time
}

// Tombstone records a local deletion that still has to be pushed to the cloud replica
type Tombstone struct {
	Entity    string // "volunteer" or "signup"
	ID        string
	DeletedAt time.Time
}

const (
	EntityVolunteer = "volunteer"
	EntitySignup    = "signup"
)

// SyncState is the persisted boundary of the last successful cloud sync
type SyncState struct {
	LastSyncedAt time.Time
}
