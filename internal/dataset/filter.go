package dataset

import (
	"fmt"
	"strings"
)

// FilterSpec constrains a table to rows whose cells match the allowed
// values. Columns are AND-combined; values within a column are
// OR-combined. An empty spec matches every row.
type FilterSpec map[string][]string

// IsEmpty reports whether the spec carries no effective constraint.
func (s FilterSpec) IsEmpty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Apply returns the matching subset as a new table with the source column
// order preserved. The source table is never mutated, so repeated
// application of the same spec yields identical output. Filtering on a
// column the table does not have is an error; the tolerant stage is
// cleaning, not filtering.
func (s FilterSpec) Apply(t *Table) (*Table, error) {
	if s.IsEmpty() {
		return t.Clone(), nil
	}

	type constraint struct {
		idx     int
		allowed map[string]bool
	}
	constraints := make([]constraint, 0, len(s))
	for col, values := range s {
		if len(values) == 0 {
			continue
		}
		idx, ok := t.ColumnIndex(col)
		if !ok {
			return nil, fmt.Errorf("filter column %q not found", col)
		}
		allowed := make(map[string]bool, len(values))
		for _, v := range values {
			allowed[strings.ToLower(strings.TrimSpace(v))] = true
		}
		constraints = append(constraints, constraint{idx: idx, allowed: allowed})
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		match := true
		for _, c := range constraints {
			if !c.allowed[strings.ToLower(strings.TrimSpace(row[c.idx]))] {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, row)
		}
	}

	return NewTable(t.Columns, rows), nil
}
