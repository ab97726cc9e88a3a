package sheetsclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
)

// Column names in a roster sheet. Only the name columns are required.
const (
	columnFirstName = "First name"
	columnLastName  = "Last name"
	columnEmail     = "Email"
	columnPhone     = "Phone"
	columnSlots     = "Recurring slots"
)

var requiredVolunteerFields = []string{columnFirstName, columnLastName}

// ListVolunteerRows reads a roster tab and parses it into volunteers without ids
func (c *Client) ListVolunteerRows(spreadsheetID, tab string) ([]model.Volunteer, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	volunteers, err := ParseVolunteerRows(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse volunteers: %w", err)
	}

	return volunteers, nil
}

// ParseVolunteerRows converts raw roster data into volunteers. The header row
// is matched case-insensitively; recurring slots are comma separated.
func ParseVolunteerRows(raw [][]interface{}) ([]model.Volunteer, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	fieldIndexes := make(map[string]int)
	for i, cell := range raw[0] {
		if cellStr, ok := cell.(string); ok {
			fieldIndexes[strings.ToLower(strings.TrimSpace(cellStr))] = i
		}
	}
	for _, field := range requiredVolunteerFields {
		if _, ok := fieldIndexes[strings.ToLower(field)]; !ok {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[strings.ToLower(field)]
		if !ok || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}

	volunteers := make([]model.Volunteer, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		firstName := getField(columnFirstName, row)
		// Skip empty rows (rows with no first name)
		if firstName == "" {
			continue
		}

		var slots []string
		for _, slot := range strings.Split(getField(columnSlots, row), ",") {
			if slot = strings.TrimSpace(slot); slot != "" {
				slots = append(slots, slot)
			}
		}

		volunteers = append(volunteers, model.Volunteer{
			FirstName:      firstName,
			LastName:       getField(columnLastName, row),
			Email:          getField(columnEmail, row),
			Phone:          getField(columnPhone, row),
			RecurringSlots: slots,
		})
	}

	return volunteers, nil
}
