package dataset

import (
	"strconv"
	"strings"
)

// Table is an in-memory survey table: one row per respondent, string cells.
// Column order is stable and shared by every row; ragged source rows are
// padded at load time.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates a table from a header and rows. Rows shorter than the
// header are padded with empty cells, longer ones truncated.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		padded := make([]string, len(columns))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t
}

// ColumnIndex returns the position of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns all cell values of one column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, true
}

// Clone returns a deep copy. Consumers that derive views copy first so the
// shared cleaned table stays untouched.
func (t *Table) Clone() *Table {
	return NewTable(t.Columns, t.Rows)
}

// MissingCount returns the number of empty cells per column, keyed by name.
func (t *Table) MissingCount() map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for _, col := range t.Columns {
		counts[col] = 0
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if strings.TrimSpace(cell) == "" {
				counts[t.Columns[i]]++
			}
		}
	}
	return counts
}

// UniqueCount returns the number of distinct non-empty values in a column.
func (t *Table) UniqueCount(name string) int {
	values, ok := t.Column(name)
	if !ok {
		return 0
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// IsNumeric reports whether every non-empty cell of a column parses as a
// float and at least one cell is non-empty.
func (t *Table) IsNumeric(name string) bool {
	values, ok := t.Column(name)
	if !ok {
		return false
	}
	found := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err != nil {
			return false
		}
		found = true
	}
	return found
}

// NumericColumn parses a column into float values, skipping empty cells.
func (t *Table) NumericColumn(name string) ([]float64, bool) {
	values, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	parsed := make([]float64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return nil, false
		}
		parsed = append(parsed, f)
	}
	if len(parsed) == 0 {
		return nil, false
	}
	return parsed, true
}
