package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type TxFunc func(tx *sql.Tx) error

func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (db *DB) TableExists(ctx context.Context, tableName string) (bool, error) {
	var query string
	switch db.Driver {
	case DriverClickHouse:
		query = `SELECT count() > 0 FROM system.tables WHERE database = currentDatabase() AND name = ?`
	default:
		query = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	}

	var exists bool
	if err := db.QueryRowContext(ctx, query, tableName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return exists, nil
}

func (db *DB) GetVersion(ctx context.Context) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// insertStatement builds a parameterized insert for the driver's placeholder
// style. ClickHouse prepares a batch from the column list alone.
func (db *DB) insertStatement(table string, columns []string) string {
	stmt := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(columns, ", "))
	if db.Driver == DriverClickHouse {
		return stmt
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return stmt + " VALUES (" + strings.Join(placeholders, ", ") + ")"
}
