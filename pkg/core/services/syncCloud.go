package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// SyncLocalStore defines the local database operations needed to merge with the replica
type SyncLocalStore interface {
	db.VolunteerStore
	GetSignups(ctx context.Context) ([]model.VolunteerSignup, error)
	GetSignup(ctx context.Context, id string) (*model.VolunteerSignup, error)
	FindSignup(ctx context.Context, volunteerID, date string) (*model.VolunteerSignup, error)
	InsertSignup(ctx context.Context, signup *model.VolunteerSignup) error
	UpdateSignup(ctx context.Context, signup *model.VolunteerSignup) error
	DeleteSignup(ctx context.Context, id string) error
	DeleteSignupsForVolunteer(ctx context.Context, volunteerID string) ([]string, error)
	DeleteShiftsForVolunteer(ctx context.Context, volunteerID string) error
	GetTombstonesSince(ctx context.Context, since time.Time) ([]model.Tombstone, error)
}

// SyncStore adds persistence of the sync boundary
type SyncStore interface {
	SyncLocalStore
	GetSyncState(ctx context.Context) (model.SyncState, error)
	SaveSyncState(ctx context.Context, state model.SyncState) error
}

// SyncResult counts what one sync moved in each direction
type SyncResult struct {
	PushedVolunteers  int
	PushedSignups     int
	PushedDeletions   int
	VolunteersAdded   int
	VolunteersUpdated int
	VolunteersMatched int // unknown id matched to a local volunteer by email
	VolunteersDeleted int
	SignupsAdded      int
	SignupsUpdated    int
	SignupsDeleted    int
	SignupsSkipped    int
	State             model.SyncState
}

// SyncWithCloud exchanges changes with the replica. Local changes and
// deletions made since state.LastSyncedAt are pushed first. Every remote row
// is then merged: a row replaces the local record only if its updated_at is
// later. The returned state must be persisted by the caller for the next run.
func SyncWithCloud(
	ctx context.Context,
	local SyncLocalStore,
	remote db.Replica,
	logger *zap.Logger,
	state model.SyncState,
	now time.Time,
) (*SyncResult, error) {
	since := state.LastSyncedAt
	result := &SyncResult{}
	logger.Debug("Starting cloud sync", zap.Time("since", since))

	// Push local changes before reading the replica
	if err := pushChanges(ctx, local, remote, since, result); err != nil {
		return nil, err
	}

	// Fetch the latest row for every id
	volunteerRows, err := remote.GetVolunteerRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote volunteers: %w", err)
	}
	signupRows, err := remote.GetSignupRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote signups: %w", err)
	}

	// Merge volunteers first so signups can be remapped
	err = inTx(ctx, local, func(tx SyncLocalStore) error {
		idMap, err := pullVolunteers(ctx, tx, logger, volunteerRows, result)
		if err != nil {
			return err
		}
		return pullSignups(ctx, tx, logger, signupRows, idMap, result)
	})
	if err != nil {
		return nil, err
	}

	result.State = model.SyncState{LastSyncedAt: now.UTC()}
	logger.Info("Cloud sync complete",
		zap.Int("pushed_volunteers", result.PushedVolunteers),
		zap.Int("pushed_signups", result.PushedSignups),
		zap.Int("pushed_deletions", result.PushedDeletions),
		zap.Int("volunteers_added", result.VolunteersAdded),
		zap.Int("volunteers_updated", result.VolunteersUpdated),
		zap.Int("signups_added", result.SignupsAdded),
		zap.Int("signups_updated", result.SignupsUpdated))
	return result, nil
}

func pushChanges(ctx context.Context, local SyncLocalStore, remote db.Replica, since time.Time, result *SyncResult) error {
	volunteers, err := local.GetVolunteers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch local volunteers: %w", err)
	}
	signups, err := local.GetSignups(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch local signups: %w", err)
	}
	tombstones, err := local.GetTombstonesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to fetch local deletions: %w", err)
	}

	// Only records changed since the last sync are appended
	var volunteerRows []db.Volunteer
	for _, v := range volunteers {
		if v.UpdatedAt.After(since) {
			volunteerRows = append(volunteerRows, db.VolunteerFromModel(v))
		}
	}
	var signupRows []db.Signup
	for _, s := range signups {
		if s.UpdatedAt.After(since) {
			signupRows = append(signupRows, db.SignupFromModel(s))
		}
	}
	result.PushedVolunteers = len(volunteerRows)
	result.PushedSignups = len(signupRows)
	result.PushedDeletions = len(tombstones)

	// Deletions travel as rows flagged deleted
	deletedVolunteers, deletedSignups := db.TombstoneRows(tombstones)
	volunteerRows = append(volunteerRows, deletedVolunteers...)
	signupRows = append(signupRows, deletedSignups...)

	if len(volunteerRows) > 0 {
		if err := remote.AppendVolunteerRows(ctx, volunteerRows); err != nil {
			return fmt.Errorf("failed to push volunteers: %w", err)
		}
	}
	if len(signupRows) > 0 {
		if err := remote.AppendSignupRows(ctx, signupRows); err != nil {
			return fmt.Errorf("failed to push signups: %w", err)
		}
	}
	return nil
}

// pullVolunteers merges every remote volunteer row and returns how remote ids
// map onto local ids. Rows are not filtered by the sync boundary: another
// device may push an edit long after making it, so only updated_at decides.
func pullVolunteers(
	ctx context.Context,
	local SyncLocalStore,
	logger *zap.Logger,
	rows []db.Volunteer,
	result *SyncResult,
) (map[string]string, error) {
	volunteers, err := local.GetVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch local volunteers: %w", err)
	}

	// Index local records by id and by email
	byID := make(map[string]model.Volunteer, len(volunteers))
	byEmail := make(map[string]string, len(volunteers))
	for _, v := range volunteers {
		byID[v.ID] = v
		if email := normaliseEmail(v.Email); email != "" {
			byEmail[email] = v.ID
		}
	}

	idMap := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Deleted {
			existing, ok := byID[row.ID]
			if !ok || existing.UpdatedAt.After(row.UpdatedAt) {
				continue
			}
			if err := deleteVolunteerCascade(ctx, local, row.ID); err != nil {
				return nil, err
			}
			delete(byID, row.ID)
			result.VolunteersDeleted++
			continue
		}

		// Match by id, then by email
		incoming := row.ToModel()
		localID := ""
		matchedByEmail := false
		if _, ok := byID[row.ID]; ok {
			localID = row.ID
		} else if id, ok := byEmail[normaliseEmail(row.Email)]; ok {
			localID = id
			matchedByEmail = true
		}

		if localID == "" {
			if err := local.InsertVolunteer(ctx, &incoming); err != nil {
				return nil, fmt.Errorf("failed to insert synced volunteer: %w", err)
			}
			byID[incoming.ID] = incoming
			if email := normaliseEmail(incoming.Email); email != "" {
				byEmail[email] = incoming.ID
			}
			idMap[row.ID] = incoming.ID
			result.VolunteersAdded++
			continue
		}

		idMap[row.ID] = localID

		// Last writer wins
		existing := byID[localID]
		if !incoming.UpdatedAt.After(existing.UpdatedAt) {
			continue
		}
		incoming.ID = localID
		incoming.CreatedAt = existing.CreatedAt
		if err := local.UpdateVolunteer(ctx, &incoming); err != nil {
			return nil, fmt.Errorf("failed to update synced volunteer: %w", err)
		}
		byID[localID] = incoming
		result.VolunteersUpdated++
		if matchedByEmail {
			result.VolunteersMatched++
			logger.Debug("Matched remote volunteer by email",
				zap.String("remote_id", row.ID),
				zap.String("local_id", localID))
		}
	}

	for id := range byID {
		if _, ok := idMap[id]; !ok {
			idMap[id] = id
		}
	}
	return idMap, nil
}

// pullSignups merges every remote signup row. Rows are matched by id, then by
// (volunteer, date); rows whose volunteer is unknown locally are skipped.
func pullSignups(
	ctx context.Context,
	local SyncLocalStore,
	logger *zap.Logger,
	rows []db.Signup,
	idMap map[string]string,
	result *SyncResult,
) error {
	for _, row := range rows {
		existing, err := local.GetSignup(ctx, row.ID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to fetch signup: %w", err)
		}

		if row.Deleted {
			if existing == nil || existing.UpdatedAt.After(row.UpdatedAt) {
				continue
			}
			if err := local.DeleteSignup(ctx, row.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("failed to delete synced signup: %w", err)
			}
			result.SignupsDeleted++
			continue
		}

		// Remap the volunteer onto its local id
		incoming := row.ToModel()
		volunteerID, known := idMap[incoming.VolunteerID]
		if !known || !incoming.Status.IsValid() {
			logger.Debug("Skipping remote signup",
				zap.String("signup_id", row.ID),
				zap.String("volunteer_id", row.VolunteerID),
				zap.String("status", row.Status))
			result.SignupsSkipped++
			continue
		}
		incoming.VolunteerID = volunteerID

		if existing == nil {
			existing, err = local.FindSignup(ctx, incoming.VolunteerID, incoming.Date)
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("failed to find signup: %w", err)
			}
		}

		if existing == nil {
			if err := local.InsertSignup(ctx, &incoming); err != nil {
				return fmt.Errorf("failed to insert synced signup: %w", err)
			}
			result.SignupsAdded++
			continue
		}

		// Last writer wins; the local id is kept
		if !incoming.UpdatedAt.After(existing.UpdatedAt) {
			continue
		}
		existing.Status = incoming.Status
		existing.Role = incoming.Role
		existing.UpdatedAt = incoming.UpdatedAt
		if err := local.UpdateSignup(ctx, existing); err != nil {
			return fmt.Errorf("failed to update synced signup: %w", err)
		}
		result.SignupsUpdated++
	}
	return nil
}

func deleteVolunteerCascade(ctx context.Context, local SyncLocalStore, id string) error {
	if err := local.DeleteShiftsForVolunteer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	if _, err := local.DeleteSignupsForVolunteer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete signups: %w", err)
	}
	if err := local.DeleteVolunteer(ctx, id); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to delete volunteer: %w", err)
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RunSync loads the stored sync boundary, syncs, and saves the new boundary
func RunSync(ctx context.Context, local SyncStore, remote db.Replica, logger *zap.Logger) (*SyncResult, error) {
	state, err := local.GetSyncState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}

	result, err := SyncWithCloud(ctx, local, remote, logger, state, timeNow())
	if err != nil {
		return nil, err
	}

	if err := local.SaveSyncState(ctx, result.State); err != nil {
		return nil, fmt.Errorf("failed to save sync state: %w", err)
	}
	return result, nil
}

// BackgroundSyncer runs a sync after local mutations without blocking the
// caller. Local writes are already committed when Trigger is called; a
// failed sync is logged and dropped. Triggers that arrive while a sync is
// running collapse into one follow-up run. A nil BackgroundSyncer ignores
// triggers.
type BackgroundSyncer struct {
	run    func(ctx context.Context) error
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	pending bool
	wg      sync.WaitGroup
}

func NewBackgroundSyncer(logger *zap.Logger, run func(ctx context.Context) error) *BackgroundSyncer {
	return &BackgroundSyncer{run: run, logger: logger}
}

// Trigger schedules a sync. ctx bounds the sync itself, not the call.
func (b *BackgroundSyncer) Trigger(ctx context.Context) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.pending = true
		return
	}
	b.running = true
	b.wg.Add(1)
	go b.loop(ctx)
}

func (b *BackgroundSyncer) loop(ctx context.Context) {
	defer b.wg.Done()
	for {
		if err := b.run(ctx); err != nil {
			b.logger.Warn("Background sync failed", zap.Error(err))
		}

		b.mu.Lock()
		if !b.pending || ctx.Err() != nil {
			b.running = false
			b.pending = false
			b.mu.Unlock()
			return
		}
		b.pending = false
		b.mu.Unlock()
	}
}

// Wait blocks until any in-flight sync has finished
func (b *BackgroundSyncer) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}
