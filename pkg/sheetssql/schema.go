package sheetssql

import (
	"fmt"
	"reflect"
	"strings"
)

// SchemaFromModels builds a Schema by reflecting on struct definitions.
// Each struct is a table named after the struct in snake_case. Every field
// needs `ssql_header` and `ssql_type` tags.
func SchemaFromModels(models ...interface{}) (*Schema, error) {
	tables := make([]TableSchema, 0, len(models))

	for _, model := range models {
		table, err := tableSchemaFromModel(model)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return &Schema{Tables: tables}, nil
}

func tableSchemaFromModel(model interface{}) (TableSchema, error) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return TableSchema{}, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}

	columns := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		header := field.Tag.Get("ssql_header")
		if header == "" {
			return TableSchema{}, fmt.Errorf("field %s.%s missing 'ssql_header' tag", t.Name(), field.Name)
		}

		typ := field.Tag.Get("ssql_type")
		if typ == "" {
			return TableSchema{}, fmt.Errorf("field %s.%s missing 'ssql_type' tag", t.Name(), field.Name)
		}

		columns = append(columns, Column{Name: header, Type: typ})
	}

	if len(columns) == 0 {
		return TableSchema{}, fmt.Errorf("struct %s has no fields", t.Name())
	}

	return TableSchema{
		Name:    toSnakeCase(t.Name()),
		Columns: columns,
	}, nil
}

// toSnakeCase converts PascalCase to snake_case
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// ensureSchema verifies existing tables and creates missing ones. A table
// written by an older release, whose columns are a prefix of the schema, is
// extended with the new trailing columns.
func (db *DB) ensureSchema() error {
	existing, err := db.client.ListSheets(db.spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to get existing sheets: %w", err)
	}

	sheetSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		sheetSet[name] = true
	}

	for _, table := range db.schema.Tables {
		if !sheetSet[table.Name] {
			if err := db.createTable(table); err != nil {
				return fmt.Errorf("failed to create table %s: %w", table.Name, err)
			}
			continue
		}

		present, err := db.checkTableSchema(table)
		if err != nil {
			return fmt.Errorf("table %s schema mismatch: %w", table.Name, err)
		}
		if present < len(table.Columns) {
			if err := db.writeTableHeaders(table); err != nil {
				return fmt.Errorf("failed to extend table %s: %w", table.Name, err)
			}
		}
	}

	return nil
}

// checkTableSchema compares a table's header and type rows with the schema
// and returns how many leading schema columns the sheet already has. Any
// column present must match by position.
func (db *DB) checkTableSchema(table TableSchema) (int, error) {
	values, err := db.client.GetValues(db.spreadsheetID, fmt.Sprintf("%s!A1:ZZ2", table.Name))
	if err != nil {
		return 0, fmt.Errorf("failed to read table headers: %w", err)
	}

	if len(values) < 2 {
		return 0, fmt.Errorf("table missing header or type row")
	}

	headers := values[0]
	types := values[1]

	if len(headers) == 0 || len(headers) > len(table.Columns) {
		return 0, fmt.Errorf("expected %d columns, found %d", len(table.Columns), len(headers))
	}

	for i, header := range headers {
		col := table.Columns[i]
		if name, ok := header.(string); !ok || name != col.Name {
			return 0, fmt.Errorf("column %d: expected header '%s', got '%v'", i, col.Name, header)
		}

		if i >= len(types) {
			return 0, fmt.Errorf("missing type for column %s", col.Name)
		}
		if typ, ok := types[i].(string); !ok || typ != col.Type {
			return 0, fmt.Errorf("column %d (%s): expected type '%s', got '%v'", i, col.Name, col.Type, types[i])
		}
	}

	return len(headers), nil
}

// writeTableHeaders overwrites the header and type rows with the full schema
func (db *DB) writeTableHeaders(table TableSchema) error {
	headers, types := headerRows(table)
	return db.client.UpdateValues(db.spreadsheetID, table.Name+"!A1", [][]interface{}{headers, types})
}

func headerRows(table TableSchema) ([]interface{}, []interface{}) {
	headers := make([]interface{}, len(table.Columns))
	types := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Name
		types[i] = col.Type
	}
	return headers, types
}

// createTable adds a sheet and writes its header and type rows
func (db *DB) createTable(table TableSchema) error {
	if _, err := db.client.CreateSheet(db.spreadsheetID, table.Name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers, types := headerRows(table)
	if err := db.client.AppendRows(db.spreadsheetID, table.Name, [][]interface{}{headers, types}); err != nil {
		return fmt.Errorf("failed to write headers and types: %w", err)
	}

	return nil
}
