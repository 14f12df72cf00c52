// Package dataset loads the static telemetry snapshots the gateway samples from.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/OldStager01/energy-intelligence/pkg/validation"
)

var (
	ErrEmptyDataset    = errors.New("dataset is empty")
	ErrColumnNotFound  = errors.New("column not found")
	ErrInvalidValue    = errors.New("invalid numeric value")
	ErrInvalidIdentity = errors.New("invalid dataset identifier")
)

// SeriesRef names a numeric column of an ordered dataset.
type SeriesRef struct {
	Name    string
	Column  string
	OrderBy string
}

// Source loads datasets by name. File sources treat names as paths relative to their
// directory; SQL sources treat them as table names.
type Source interface {
	Series(ctx context.Context, ref SeriesRef) (*Series, error)
	Table(ctx context.Context, name string) (*Table, error)
	Close() error
}

// Series is an immutable ordered sequence of readings.
type Series struct {
	name   string
	values []float64
}

func NewSeries(name string, values []float64) *Series {
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{name: name, values: v}
}

func (s *Series) Name() string {
	return s.name
}

func (s *Series) Len() int {
	return len(s.values)
}

// Last returns the most recent reading. It panics on an empty series; loaders never
// produce one.
func (s *Series) Last() float64 {
	return s.values[len(s.values)-1]
}

// Tail returns a copy of the last n readings, oldest first. Fewer are returned when
// the series is shorter than n.
func (s *Series) Tail(n int) []float64 {
	if n > len(s.values) {
		n = len(s.values)
	}
	out := make([]float64, n)
	copy(out, s.values[len(s.values)-n:])
	return out
}

// Table is an immutable tabular dataset kept as strings.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, t.Name, name)
}

// Floats parses one column as float64 values.
func (t *Table) Floats(column string) ([]float64, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d column %s: %q", ErrInvalidValue, t.Name, i+1, column, row[idx])
		}
		out = append(out, v)
	}
	return out, nil
}

func checkIdent(kind, s string) error {
	if err := validation.ValidateIdentifier(kind, s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}
