package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLSource reads datasets from tables reachable through database/sql. It works
// with the postgres and clickhouse drivers alike.
type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

func (s *SQLSource) Series(ctx context.Context, ref SeriesRef) (*Series, error) {
	if err := checkIdent("table", ref.Name); err != nil {
		return nil, err
	}
	if err := checkIdent("column", ref.Column); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s", ref.Column, ref.Name)
	if ref.OrderBy != "" {
		if err := checkIdent("column", ref.OrderBy); err != nil {
			return nil, err
		}
		query += " ORDER BY " + ref.OrderBy
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query series %s: %w", ref.Name, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan series %s: %w", ref.Name, err)
		}
		if !v.Valid {
			return nil, fmt.Errorf("%w: %s.%s contains NULL", ErrInvalidValue, ref.Name, ref.Column)
		}
		values = append(values, v.Float64)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read series %s: %w", ref.Name, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, ref.Name)
	}
	return NewSeries(ref.Name, values), nil
}

func (s *SQLSource) Table(ctx context.Context, name string) (*Table, error) {
	if err := checkIdent("table", name); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+name)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	t := &Table{Name: name, Columns: columns}
	raw := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", name, err)
		}
		row := make([]string, len(columns))
		for i, v := range raw {
			row[i] = formatValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return t, nil
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
