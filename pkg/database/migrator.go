package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/OldStager01/energy-intelligence/internal/logger"
)

// ClickHouse executes one statement per call, so its migrations hold one
// statement per file.
//
//go:embed migrations/postgres/*.sql migrations/clickhouse/*.sql
var migrationsFS embed.FS

// Migrator creates the dataset tables for the connected driver.
type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Run(ctx context.Context) error {
	files, err := m.Files()
	if err != nil {
		return fmt.Errorf("failed to get migration files: %w", err)
	}

	for _, file := range files {
		if err := m.executeMigration(ctx, file); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}

	return nil
}

// Files lists the migrations for the connected driver in execution order.
func (m *Migrator) Files() ([]string, error) {
	dir := m.dir()
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func (m *Migrator) dir() string {
	if m.db.Driver == DriverClickHouse {
		return "migrations/clickhouse"
	}
	return "migrations/postgres"
}

func (m *Migrator) executeMigration(ctx context.Context, file string) error {
	content, err := fs.ReadFile(migrationsFS, file)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	logger.WithField("driver", m.db.Driver).Infof("Executing migration: %s", path.Base(file))

	if _, err := m.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}

	return nil
}
