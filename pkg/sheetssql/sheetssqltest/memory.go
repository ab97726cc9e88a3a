// Package sheetssqltest provides an in-memory spreadsheet for tests.
package sheetssqltest

import (
	"fmt"
	"strings"
	"sync"
)

// MemoryClient implements sheetssql.SheetsClient over in-memory tabs.
// Ranges of the form "tab!A1:ZZ2" return only the first two rows.
type MemoryClient struct {
	mu     sync.Mutex
	sheets map[string][][]interface{}
	order  []string

	// Fail, when set, is returned by every call
	Fail error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{sheets: make(map[string][][]interface{})}
}

func (c *MemoryClient) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	tab, cells, hasRange := strings.Cut(sheetRange, "!")
	rows, ok := c.sheets[tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	if hasRange && strings.HasSuffix(cells, "2") && len(rows) > 2 {
		rows = rows[:2]
	}

	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out, nil
}

func (c *MemoryClient) AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}

	tab, _, _ := strings.Cut(sheetRange, "!")
	if _, ok := c.sheets[tab]; !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	for _, row := range values {
		c.sheets[tab] = append(c.sheets[tab], append([]interface{}(nil), row...))
	}
	return nil
}

func (c *MemoryClient) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return 0, c.Fail
	}

	if _, ok := c.sheets[sheetTitle]; ok {
		return 0, fmt.Errorf("sheet %s already exists", sheetTitle)
	}
	c.sheets[sheetTitle] = nil
	c.order = append(c.order, sheetTitle)
	return int64(len(c.order)), nil
}

func (c *MemoryClient) ListSheets(spreadsheetID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}
	return append([]string(nil), c.order...), nil
}

// UpdateValues overwrites rows from the top of the tab. Ranges must start at A1.
func (c *MemoryClient) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}

	tab, _, _ := strings.Cut(sheetRange, "!")
	rows, ok := c.sheets[tab]
	if !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	for i, row := range values {
		copied := append([]interface{}(nil), row...)
		if i < len(rows) {
			rows[i] = copied
		} else {
			rows = append(rows, copied)
		}
	}
	c.sheets[tab] = rows
	return nil
}

// ClearValues empties every row of the tab
func (c *MemoryClient) ClearValues(spreadsheetID, sheetRange string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}

	tab, _, _ := strings.Cut(sheetRange, "!")
	if _, ok := c.sheets[tab]; !ok {
		return fmt.Errorf("unable to parse range: %s", sheetRange)
	}
	c.sheets[tab] = nil
	return nil
}

// Rows returns a copy of every row in a tab, including header and type rows
func (c *MemoryClient) Rows(tab string) [][]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]interface{}, len(c.sheets[tab]))
	for i, row := range c.sheets[tab] {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}

// SetRows replaces a tab's contents, creating it if needed
func (c *MemoryClient) SetRows(tab string, rows [][]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sheets[tab]; !ok {
		c.order = append(c.order, tab)
	}
	c.sheets[tab] = rows
}
