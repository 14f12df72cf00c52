package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/OldStager01/energy-intelligence/pkg/validation"
)

// Column kinds of the dataset tables. Anything not listed is a float.
var (
	textColumns    = map[string]bool{"vm_id": true}
	integerColumns = map[string]bool{"core_count": true}
	timeColumns    = map[string]bool{"timestamp": true}
)

// InsertRows loads CSV-shaped rows into table inside one transaction and returns
// the number of rows written. Values are converted to the column's Go type first
// since ClickHouse will not coerce strings.
func (db *DB) InsertRows(ctx context.Context, table string, columns []string, rows [][]string) (int, error) {
	if err := validation.ValidateIdentifier("table", table); err != nil {
		return 0, err
	}
	for _, c := range columns {
		if err := validation.ValidateIdentifier("column", c); err != nil {
			return 0, err
		}
	}

	written := 0
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, db.insertStatement(table, columns))
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
		}
		defer stmt.Close()

		args := make([]interface{}, len(columns))
		for i, row := range rows {
			if len(row) != len(columns) {
				return fmt.Errorf("row %d of %s has %d values, want %d", i+1, table, len(row), len(columns))
			}
			for j, raw := range row {
				v, err := convertValue(columns[j], raw)
				if err != nil {
					return fmt.Errorf("row %d of %s: %w", i+1, table, err)
				}
				args[j] = v
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert row %d into %s: %w", i+1, table, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func convertValue(column, raw string) (interface{}, error) {
	switch {
	case textColumns[column]:
		return raw, nil
	case timeColumns[column]:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return t.UTC(), nil
	case integerColumns[column]:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return int32(n), nil
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return f, nil
	}
}
