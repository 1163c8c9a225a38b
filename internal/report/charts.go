package report

import (
	"fmt"
	"sort"
	"strings"

	"surveypulse/internal/dataset"
	"surveypulse/pkg/contracts/domain"
)

// MultiSelectSeparator splits free-form multi-select answers. Confirmed
// against the published survey export, which joins selections with a
// comma and a space.
const MultiSelectSeparator = ", "

// CountOptions controls how a question column is tallied.
type CountOptions struct {
	// Percent normalizes counts to percentages of the respondent total.
	Percent bool
	// MultiSelect tokenizes each cell on MultiSelectSeparator before
	// counting, for questions that allow several answers.
	MultiSelect bool
}

// ValueCounts tallies the answers of one question column, descending by
// count with ties broken by first appearance in the data.
func ValueCounts(t *dataset.Table, column string, opts CountOptions) ([]domain.ValueCount, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("column %q not found", column)
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0
	for _, cell := range values {
		for _, token := range tokenize(cell, opts.MultiSelect) {
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
			total++
		}
	}

	firstSeen := make(map[string]int, len(order))
	for i, v := range order {
		firstSeen[v] = i
	}

	out := make([]domain.ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, domain.ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Value] < firstSeen[out[j].Value]
	})

	if opts.Percent && total > 0 {
		for i := range out {
			out[i].Percent = float64(out[i].Count) * 100 / float64(total)
		}
	}

	return out, nil
}

// BarChart builds a render-ready bar chart for one question column.
func BarChart(t *dataset.Table, column string, opts CountOptions) (*domain.ChartConfig, error) {
	points, err := ValueCounts(t, column, opts)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, p := range points {
		total += p.Count
	}
	yAxis := "Responses"
	if opts.Percent {
		yAxis = "Percent"
	}
	return &domain.ChartConfig{
		ChartType: "bar",
		Title:     column,
		XAxis:     column,
		YAxis:     yAxis,
		Points:    points,
		Total:     total,
	}, nil
}

func tokenize(cell string, multi bool) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if !multi {
		return []string{cell}
	}
	parts := strings.Split(cell, MultiSelectSeparator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
