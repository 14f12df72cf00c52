package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// FileSource reads CSV snapshots with a header row from a directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Table(ctx context.Context, name string) (*Table, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header", ErrEmptyDataset, path)
	}
	return &Table{Name: name, Columns: records[0], Rows: records[1:]}, nil
}

// Series reads ref.Column from the CSV file ref.Name. Rows keep their stored order
// unless ref.OrderBy names a column of the file; then they are sorted by it,
// numerically when every key parses as a number and lexically otherwise.
func (s *FileSource) Series(ctx context.Context, ref SeriesRef) (*Series, error) {
	t, err := s.Table(ctx, ref.Name)
	if err != nil {
		return nil, err
	}
	if _, err := t.ColumnIndex(ref.OrderBy); err == nil {
		if err := sortRows(t, ref.OrderBy); err != nil {
			return nil, err
		}
	}
	values, err := t.Floats(ref.Column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, ref.Name)
	}
	return NewSeries(ref.Name, values), nil
}

func (s *FileSource) Close() error {
	return nil
}

func sortRows(t *Table, column string) error {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	numeric := true
	keys := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			numeric = false
			break
		}
		keys[i] = v
	}
	if numeric {
		order := make([]int, len(t.Rows))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
		rows := make([][]string, len(t.Rows))
		for i, o := range order {
			rows[i] = t.Rows[o]
		}
		t.Rows = rows
		return nil
	}
	sort.SliceStable(t.Rows, func(a, b int) bool { return t.Rows[a][idx] < t.Rows[b][idx] })
	return nil
}
