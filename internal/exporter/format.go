package exporter

import "fmt"

// formatFloat renders a statistic with two decimal places, so 13.4
// appears as 13.40 in the export.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
