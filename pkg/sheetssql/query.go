package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// listSeparator joins []string fields into a single cell
const listSeparator = ","

var timeType = reflect.TypeOf(time.Time{})

// GetTableAs reads every data row of the table named after T and maps it onto T.
// Columns are matched by header name so column order in the sheet is irrelevant.
func GetTableAs[T any](db *DB, tableName string) ([]T, error) {
	values, err := db.client.GetValues(db.spreadsheetID, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableName, err)
	}

	if len(values) < 3 {
		return []T{}, nil
	}

	var model T
	t := reflect.TypeOf(model)

	fieldByHeader := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if header := t.Field(i).Tag.Get("ssql_header"); header != "" {
			fieldByHeader[header] = i
		}
	}

	// column index -> struct field index
	columns := make(map[int]int)
	for colIdx, header := range values[0] {
		headerStr, ok := header.(string)
		if !ok {
			continue
		}
		if fieldIdx, ok := fieldByHeader[headerStr]; ok {
			columns[colIdx] = fieldIdx
		}
	}

	dataRows := values[2:]
	results := make([]T, 0, len(dataRows))
	for rowIdx, row := range dataRows {
		result := reflect.New(t).Elem()

		for colIdx, fieldIdx := range columns {
			if colIdx >= len(row) || row[colIdx] == nil {
				continue
			}
			if err := setFieldValue(result.Field(fieldIdx), row[colIdx]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+3, t.Field(fieldIdx).Tag.Get("ssql_header"), err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// setFieldValue converts a sheet cell to the field's Go type
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	cellStr, ok := cellValue.(string)
	if !ok {
		// Unformatted reads can return numbers and bools
		cellStr = fmt.Sprint(cellValue)
	}

	if field.Type() == timeType {
		if cellStr == "" {
			field.Set(reflect.ValueOf(time.Time{}))
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp: %w", err)
		}
		field.Set(reflect.ValueOf(parsed))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
			return nil
		}
		floatVal, err := strconv.ParseFloat(cellStr, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(strings.ToLower(cellStr))
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		if cellStr == "" {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		parts := strings.Split(cellStr, listSeparator)
		list := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, part := range parts {
			list.Index(i).SetString(strings.TrimSpace(part))
		}
		field.Set(list)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// cellFromField renders a struct field as a sheet cell
func cellFromField(field reflect.Value) interface{} {
	if field.Type() == timeType {
		ts := field.Interface().(time.Time)
		if ts.IsZero() {
			return ""
		}
		return ts.UTC().Format(time.RFC3339Nano)
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		parts := make([]string, field.Len())
		for i := range parts {
			parts[i] = field.Index(i).String()
		}
		return strings.Join(parts, listSeparator)
	}

	if field.Kind() == reflect.String {
		return field.String()
	}

	return field.Interface()
}

func rowFromModel(v reflect.Value) []interface{} {
	t := v.Type()
	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("ssql_header") == "" {
			continue
		}
		row = append(row, cellFromField(v.Field(i)))
	}
	return row
}

// InsertModel appends a struct as a row to its corresponding table
func InsertModel[T any](db *DB, model T) error {
	v := reflect.ValueOf(model)
	return db.InsertRow(toSnakeCase(v.Type().Name()), rowFromModel(v))
}

// InsertModels appends multiple structs as rows to their corresponding table
func InsertModels[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	tableName := toSnakeCase(reflect.TypeOf(models[0]).Name())

	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		rows = append(rows, rowFromModel(reflect.ValueOf(model)))
	}

	return db.InsertRows(tableName, rows)
}
