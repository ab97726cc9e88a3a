package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVolunteerRows(t *testing.T) {
	raw := [][]interface{}{
		{"Email", "first name", "Last name", "Recurring slots"},
		{"ada@example.com", "Ada", "Lovelace", "every-Monday, 1st-Saturday"},
		{"", "", "", ""},
		{"", "Grace", "Hopper"},
	}

	volunteers, err := ParseVolunteerRows(raw)
	require.NoError(t, err)
	require.Len(t, volunteers, 2)

	assert.Equal(t, "Ada", volunteers[0].FirstName)
	assert.Equal(t, "ada@example.com", volunteers[0].Email)
	assert.Equal(t, []string{"every-Monday", "1st-Saturday"}, volunteers[0].RecurringSlots)
	assert.Empty(t, volunteers[0].ID)

	assert.Equal(t, "Hopper", volunteers[1].LastName)
	assert.Empty(t, volunteers[1].Phone)
	assert.Nil(t, volunteers[1].RecurringSlots)
}

func TestParseVolunteerRows_MissingHeader(t *testing.T) {
	_, err := ParseVolunteerRows([][]interface{}{{"First name", "Email"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Last name")

	_, err = ParseVolunteerRows(nil)
	assert.Error(t, err)
}
