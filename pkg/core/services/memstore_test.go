package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// memStore is an in-memory db.Database for service tests. Records keep
// insertion order so lookups behave like the postgres store's created_at order.
type memStore struct {
	mu            sync.Mutex
	volunteers    []model.Volunteer
	signups       []model.VolunteerSignup
	shifts        []model.VolunteerShift
	clients       []model.Client
	visits        []model.Visit
	notifications []model.Notification
	tombstones    []model.Tombstone
	syncState     model.SyncState

	txCount int

	// failures injected by tests, keyed by method name
	fail map[string]error
}

var _ db.Database = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{fail: map[string]error{}}
}

func (m *memStore) err(method string) error {
	return m.fail[method]
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx db.Database) error) error {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()
	return fn(m)
}

func (m *memStore) GetVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	if err := m.err("GetVolunteers"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Volunteer, len(m.volunteers))
	copy(out, m.volunteers)
	return out, nil
}

func (m *memStore) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.volunteers {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if err := m.err("InsertVolunteer"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volunteers = append(m.volunteers, *volunteer)
	return nil
}

func (m *memStore) UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if err := m.err("UpdateVolunteer"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.volunteers {
		if m.volunteers[i].ID == volunteer.ID {
			m.volunteers[i] = *volunteer
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *memStore) DeleteVolunteer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.volunteers)
	m.volunteers = slices.DeleteFunc(m.volunteers, func(v model.Volunteer) bool { return v.ID == id })
	if len(m.volunteers) == n {
		return db.ErrNotFound
	}
	return nil
}

func (m *memStore) GetSignups(ctx context.Context) ([]model.VolunteerSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.signups), nil
}

func (m *memStore) GetSignupsBetween(ctx context.Context, from, to string) ([]model.VolunteerSignup, error) {
	if err := m.err("GetSignupsBetween"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.VolunteerSignup
	for _, s := range m.signups {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetSignup(ctx context.Context, id string) (*model.VolunteerSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.signups {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) FindSignup(ctx context.Context, volunteerID, date string) (*model.VolunteerSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.signups {
		if s.VolunteerID == volunteerID && s.Date == date {
			return &s, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) InsertSignup(ctx context.Context, signup *model.VolunteerSignup) error {
	if err := m.err("InsertSignup"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signups = append(m.signups, *signup)
	return nil
}

func (m *memStore) UpdateSignup(ctx context.Context, signup *model.VolunteerSignup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.signups {
		if m.signups[i].ID == signup.ID {
			m.signups[i] = *signup
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *memStore) DeleteSignup(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.signups)
	m.signups = slices.DeleteFunc(m.signups, func(s model.VolunteerSignup) bool { return s.ID == id })
	if len(m.signups) == n {
		return db.ErrNotFound
	}
	return nil
}

func (m *memStore) DeleteSignupsForVolunteer(ctx context.Context, volunteerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	m.signups = slices.DeleteFunc(m.signups, func(s model.VolunteerSignup) bool {
		if s.VolunteerID == volunteerID {
			ids = append(ids, s.ID)
			return true
		}
		return false
	})
	return ids, nil
}

func (m *memStore) InsertShift(ctx context.Context, shift *model.VolunteerShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = append(m.shifts, *shift)
	return nil
}

func (m *memStore) GetShiftsBetween(ctx context.Context, from, to string) ([]model.VolunteerShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.VolunteerShift
	for _, s := range m.shifts {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) DeleteShiftsForVolunteer(ctx context.Context, volunteerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = slices.DeleteFunc(m.shifts, func(s model.VolunteerShift) bool { return s.VolunteerID == volunteerID })
	return nil
}

func (m *memStore) GetClients(ctx context.Context) ([]model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.clients), nil
}

func (m *memStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) InsertClient(ctx context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = append(m.clients, *client)
	return nil
}

func (m *memStore) InsertVisit(ctx context.Context, visit *model.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = append(m.visits, *visit)
	return nil
}

func (m *memStore) GetVisitsBetween(ctx context.Context, from, to string) ([]model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Visit
	for _, v := range m.visits {
		if v.Date >= from && v.Date <= to {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) HasNotification(ctx context.Context, volunteerID, sessionDate string, typ model.NotificationType) (bool, error) {
	if err := m.err("HasNotification"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.VolunteerID == volunteerID && n.SessionDate == sessionDate && n.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertNotification(ctx context.Context, notification *model.Notification) error {
	if err := m.err("InsertNotification"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *memStore) InsertTombstone(ctx context.Context, tombstone *model.Tombstone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tombstones = slices.DeleteFunc(m.tombstones, func(t model.Tombstone) bool {
		return t.Entity == tombstone.Entity && t.ID == tombstone.ID
	})
	m.tombstones = append(m.tombstones, *tombstone)
	return nil
}

func (m *memStore) GetTombstonesSince(ctx context.Context, since time.Time) ([]model.Tombstone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Tombstone
	for _, t := range m.tombstones {
		if t.DeletedAt.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetSyncState(ctx context.Context) (model.SyncState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncState, nil
}

func (m *memStore) SaveSyncState(ctx context.Context, state model.SyncState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncState = state
	return nil
}

// mockEmailer records sent messages and fails for addresses in failFor
type mockEmailer struct {
	mu      sync.Mutex
	sent    []sentEmail
	failFor map[string]bool
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (e *mockEmailer) SendEmail(ctx context.Context, to, subject, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failFor[to] {
		return fmt.Errorf("smtp rejected %s", to)
	}
	e.sent = append(e.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

var errStoreDown = errors.New("store unavailable")

// fixedClock pins timeNow and newID for the duration of a test
func fixedClock(t interface{ Cleanup(func()) }, now time.Time) {
	origNow, origID := timeNow, newID
	timeNow = func() time.Time { return now }
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() {
		timeNow, newID = origNow, origID
	})
}

func mustDate(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}
