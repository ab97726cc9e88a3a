package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/pantry-roster/pkg/sheetssql/sheetssqltest"
)

func newTestCloudDB(t *testing.T) (*CloudDB, *sheetssqltest.MemoryClient) {
	t.Helper()
	client := sheetssqltest.NewMemoryClient()
	cloud, err := NewCloudDB(client, "replica")
	require.NoError(t, err)
	return cloud, client
}

func TestNewCloudDB_CreatesTables(t *testing.T) {
	_, client := newTestCloudDB(t)

	sheets, err := client.ListSheets("replica")
	require.NoError(t, err)
	assert.Equal(t, []string{"volunteer", "signup"}, sheets)

	header := client.Rows("volunteer")[0]
	assert.Equal(t, "first_name", header[1])
	assert.Equal(t, "recurring_slots", header[6])
}

func TestNewCloudDB_PropagatesClientError(t *testing.T) {
	client := sheetssqltest.NewMemoryClient()
	client.Fail = errors.New("quota exceeded")

	_, err := NewCloudDB(client, "replica")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestCloudDB_LatestRowPerIDWins(t *testing.T) {
	ctx := context.Background()
	cloud, _ := newTestCloudDB(t)
	t1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, cloud.AppendVolunteerRows(ctx, []Volunteer{
		{ID: "v1", FirstName: "Ada", RecurringDays: []string{"Monday"}, UpdatedAt: t1},
		{ID: "v2", FirstName: "Grace", UpdatedAt: t1},
	}))
	require.NoError(t, cloud.AppendVolunteerRows(ctx, []Volunteer{
		{ID: "v1", FirstName: "Ada", RecurringSlots: []string{"every-Monday"}, UpdatedAt: t2},
		{ID: "v2", UpdatedAt: t2, Deleted: true},
	}))

	rows, err := cloud.GetVolunteerRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "v1", rows[0].ID)
	assert.Equal(t, []string{"every-Monday"}, rows[0].RecurringSlots)
	assert.Nil(t, rows[0].RecurringDays)
	assert.True(t, rows[1].Deleted)
}

func TestCloudDB_SignupRows(t *testing.T) {
	ctx := context.Background()
	cloud, _ := newTestCloudDB(t)
	t1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, cloud.AppendSignupRows(ctx, []Signup{
		{ID: "s1", VolunteerID: "v1", Date: "2026-02-16", DayOfWeek: "Monday", Status: "signed-up", UpdatedAt: t1},
		{ID: "s1", VolunteerID: "v1", Date: "2026-02-16", DayOfWeek: "Monday", Status: "cancelled", UpdatedAt: t1},
	}))

	rows, err := cloud.GetSignupRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cancelled", rows[0].Status)
}

func TestLatestByID_OlderRowLaterInSheetLoses(t *testing.T) {
	t1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []Signup{
		{ID: "s1", Status: "cancelled", UpdatedAt: t1.Add(time.Hour)},
		{ID: "", Status: "signed-up"},
		{ID: "s1", Status: "signed-up", UpdatedAt: t1},
	}

	got := latestByID(rows, func(r Signup) (string, time.Time) { return r.ID, r.UpdatedAt })

	require.Len(t, got, 1)
	assert.Equal(t, "cancelled", got[0].Status)
}
