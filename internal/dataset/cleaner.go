package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"surveypulse/pkg/contracts/domain"
)

// FillPolicy decides what replaces a missing survey cell. Categorical
// columns receive the default token (or a per-column override); numeric
// columns receive the column median when MedianNumeric is set, mirroring
// the usual survey-cleaning convention.
type FillPolicy struct {
	Default       string
	PerColumn     map[string]string
	MedianNumeric bool
}

// CleaningSpec describes the full cleaning pass: columns to drop, verbose
// headers to rename, and the fill policy for whatever cells remain empty.
type CleaningSpec struct {
	Drop   []string
	Rename map[string]string
	Fill   FillPolicy
}

// Cleaner applies a CleaningSpec to raw survey tables.
type Cleaner struct {
	spec   CleaningSpec
	logger *slog.Logger
}

// NewCleaner creates a cleaner for the given spec.
func NewCleaner(spec CleaningSpec, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if spec.Fill.Default == "" {
		spec.Fill.Default = "Not Specified"
	}
	return &Cleaner{spec: spec, logger: logger}
}

// Clean returns a new table containing only the retained columns under
// their display names, with missing cells filled. The raw table is never
// mutated. Drop or rename targets absent from the input are skipped and
// reported as warnings rather than failing the pass, to tolerate minor
// schema drift between survey revisions.
func (c *Cleaner) Clean(raw *Table) (*Table, domain.CleanReport) {
	report := domain.CleanReport{
		RawColumns: len(raw.Columns),
		RawRows:    len(raw.Rows),
	}

	dropSet := make(map[string]bool, len(c.spec.Drop))
	for _, name := range c.spec.Drop {
		if _, ok := raw.ColumnIndex(name); !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("drop target %q not found in input, skipped", name))
			continue
		}
		dropSet[name] = true
		report.DroppedColumns = append(report.DroppedColumns, name)
	}
	sort.Strings(report.DroppedColumns)

	for name := range c.spec.Rename {
		if _, ok := raw.ColumnIndex(name); !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("rename target %q not found in input, skipped", name))
		}
	}

	// Retained columns keep their original order under their new names.
	keepIdx := make([]int, 0, len(raw.Columns))
	kept := make([]string, 0, len(raw.Columns))
	for i, col := range raw.Columns {
		if dropSet[col] {
			continue
		}
		keepIdx = append(keepIdx, i)
		kept = append(kept, col)
	}

	// Resolve display names. A rename that would duplicate another
	// retained column's name is reverted with a warning so no column
	// appears twice in the output.
	taken := make(map[string]bool, len(kept))
	for _, col := range kept {
		if _, ok := c.spec.Rename[col]; !ok {
			taken[col] = true
		}
	}
	columns := make([]string, len(kept))
	for j, col := range kept {
		renamed, ok := c.spec.Rename[col]
		if !ok {
			columns[j] = col
			continue
		}
		if taken[renamed] {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("rename %q to %q collides with another column, kept original name", col, renamed))
			columns[j] = col
			taken[col] = true
			continue
		}
		columns[j] = renamed
		taken[renamed] = true
		report.RenamedColumns++
	}

	rows := make([][]string, len(raw.Rows))
	for r, row := range raw.Rows {
		out := make([]string, len(keepIdx))
		for j, idx := range keepIdx {
			if idx < len(row) {
				out[j] = strings.TrimSpace(row[idx])
			}
		}
		rows[r] = out
	}

	cleaned := NewTable(columns, rows)
	report.FilledCells = c.fill(cleaned)

	c.logger.Info("cleaned survey table",
		slog.Int("raw_columns", report.RawColumns),
		slog.Int("columns", len(cleaned.Columns)),
		slog.Int("dropped", len(report.DroppedColumns)),
		slog.Int("renamed", report.RenamedColumns),
		slog.Int("filled_cells", report.FilledCells),
		slog.Int("warnings", len(report.Warnings)))

	return cleaned, report
}

// fill substitutes missing cells in place and returns how many it touched.
// Running it on an already-filled table touches nothing, so cleaning is
// idempotent.
func (c *Cleaner) fill(t *Table) int {
	filled := 0
	for i, col := range t.Columns {
		token := c.spec.Fill.Default
		if override, ok := c.spec.Fill.PerColumn[col]; ok {
			token = override
		} else if c.spec.Fill.MedianNumeric && t.IsNumeric(col) {
			if values, ok := t.NumericColumn(col); ok {
				token = strconv.FormatFloat(median(values), 'f', -1, 64)
			}
		}
		for _, row := range t.Rows {
			if strings.TrimSpace(row[i]) == "" {
				row[i] = token
				filled++
			}
		}
	}
	return filled
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
