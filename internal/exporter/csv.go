package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"surveypulse/internal/dataset"
	"surveypulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter serializes cleaned or filtered survey tables to CSV.
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the export correctly.
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer with Excel-friendly defaults.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteTable writes the header row and every data row to w in column
// order. The same table always serializes to the same bytes, so repeated
// exports of one filter result are byte-identical.
func (c *CSVWriter) WriteTable(w io.Writer, t *dataset.Table) error {
	if c.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// TableBytes renders a table to an in-memory CSV document.
func (c *CSVWriter) TableBytes(t *dataset.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteTable(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTableFile writes a table to a file, creating the directory if
// needed.
func (c *CSVWriter) WriteTableFile(path string, t *dataset.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	slog.Info("writing survey export",
		slog.String("path", path),
		slog.Int("rows", len(t.Rows)))

	if err := c.WriteTable(f, t); err != nil {
		return err
	}
	return f.Close()
}

// WriteStats writes a descriptive-statistics table to w, one row per
// numeric column.
func (c *CSVWriter) WriteStats(w io.Writer, stats []domain.ColumnStats) error {
	if c.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	header := []string{"Column", "Count", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range stats {
		row := []string{
			s.Column,
			formatInt(int64(s.Count)),
			formatFloat(s.Mean),
			formatFloat(s.Std),
			formatFloat(s.Min),
			formatFloat(s.Q1),
			formatFloat(s.Median),
			formatFloat(s.Q3),
			formatFloat(s.Max),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write stats row for %s: %w", s.Column, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
