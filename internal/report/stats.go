package report

import (
	"fmt"
	"math"
	"sort"

	"surveypulse/internal/dataset"
	"surveypulse/pkg/contracts/domain"
)

// DefaultHistogramBins matches the usual dashboard default.
const DefaultHistogramBins = 10

// Describe computes descriptive statistics for every numeric column of the
// cleaned table, in column order. Non-numeric columns are excluded
// silently.
func Describe(t *dataset.Table) []domain.ColumnStats {
	stats := make([]domain.ColumnStats, 0)
	for _, col := range t.Columns {
		if s, err := DescribeColumn(t, col); err == nil {
			stats = append(stats, *s)
		}
	}
	return stats
}

// DescribeColumn computes count, mean, std, min, quartiles and max for one
// numeric column.
func DescribeColumn(t *dataset.Table, column string) (*domain.ColumnStats, error) {
	values, ok := t.NumericColumn(column)
	if !ok {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return &domain.ColumnStats{
		Column: column,
		Count:  len(sorted),
		Mean:   mean(sorted),
		Std:    std(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, nil
}

// HistogramFor bins one numeric column into equal-width buckets. The last
// bucket is closed on both ends so the maximum lands inside it.
func HistogramFor(t *dataset.Table, column string, bins int) (*domain.Histogram, error) {
	values, ok := t.NumericColumn(column)
	if !ok {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return &domain.Histogram{
			Column: column,
			Bins:   []domain.HistogramBin{{Low: lo, High: hi, Count: len(values)}},
		}, nil
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i] = domain.HistogramBin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	out[bins-1].High = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}

	return &domain.Histogram{Column: column, Bins: out}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// std is the sample standard deviation; a single observation has none.
func std(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// quantile linearly interpolates between the two nearest order statistics,
// matching the common dataframe default.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
