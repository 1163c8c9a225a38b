package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"

	"surveypulse/internal/config"
	"surveypulse/internal/dataset"
	"surveypulse/internal/exporter"
	"surveypulse/internal/geo"
	"surveypulse/internal/metrics"
	"surveypulse/internal/report"
	"surveypulse/pkg/contracts/domain"
)

// SurveyService owns the session's survey table. The raw file is loaded
// and cleaned once; every view afterwards reads the cleaned table and
// writes nothing back.
type SurveyService struct {
	cfg     config.SurveyConfig
	logger  *slog.Logger
	writer  *exporter.CSVWriter
	mapper  *geo.Mapper
	metrics *metrics.Metrics

	mu      sync.RWMutex
	raw     *dataset.Table
	cleaned *dataset.Table
	cleanRp domain.CleanReport
}

// NewSurveyService creates the service. Call Load before serving views.
func NewSurveyService(cfg config.SurveyConfig, logger *slog.Logger, m *metrics.Metrics) *SurveyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurveyService{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "survey_service")),
		writer:  exporter.NewCSVWriter(),
		mapper:  geo.NewMapper(geo.DefaultRegions(), logger),
		metrics: m,
	}
}

// Load reads the survey file and runs the cleaning pass.
func (s *SurveyService) Load(ctx context.Context) error {
	raw, err := dataset.Load(s.cfg.File)
	if err != nil {
		return fmt.Errorf("load survey %s: %w", s.cfg.File, err)
	}

	cleaner := dataset.NewCleaner(s.cleaningSpec(raw), s.logger)
	cleaned, rp := cleaner.Clean(raw)

	s.mu.Lock()
	s.raw = raw
	s.cleaned = cleaned
	s.cleanRp = rp
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "survey dataset ready",
		slog.String("file", s.cfg.File),
		slog.Int("rows", len(cleaned.Rows)),
		slog.Int("columns", len(cleaned.Columns)))

	return nil
}

// LoadTable installs an already-loaded table, used by tests and the batch
// CLI.
func (s *SurveyService) LoadTable(raw *dataset.Table) {
	cleaner := dataset.NewCleaner(s.cleaningSpec(raw), s.logger)
	cleaned, rp := cleaner.Clean(raw)

	s.mu.Lock()
	s.raw = raw
	s.cleaned = cleaned
	s.cleanRp = rp
	s.mu.Unlock()
}

// cleaningSpec builds the cleaning pass from configuration: explicit drop
// targets plus every column matching the drop prefix (the survey export
// ships index columns named "Unnamed: N").
func (s *SurveyService) cleaningSpec(raw *dataset.Table) dataset.CleaningSpec {
	drop := append([]string(nil), s.cfg.DropColumns...)
	if s.cfg.DropPrefix != "" {
		for _, col := range raw.Columns {
			if strings.HasPrefix(col, s.cfg.DropPrefix) {
				drop = append(drop, col)
			}
		}
	}
	return dataset.CleaningSpec{
		Drop:   drop,
		Rename: s.cfg.Rename,
		Fill: dataset.FillPolicy{
			Default:       s.cfg.FillDefault,
			MedianNumeric: s.cfg.MedianNumeric,
		},
	}
}

// table returns the cleaned table or ErrDatasetNotLoaded.
func (s *SurveyService) table() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.cleaned, nil
}

// Summary returns the cleaning report for the session's dataset.
func (s *SurveyService) Summary(ctx context.Context) (domain.CleanReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned == nil {
		return domain.CleanReport{}, ErrDatasetNotLoaded
	}
	return s.cleanRp, nil
}

// Columns returns the cleaned columns with inferred kinds and per-column
// missing/unique tallies.
func (s *SurveyService) Columns(ctx context.Context) ([]domain.ColumnInfo, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}

	missing := t.MissingCount()
	infos := make([]domain.ColumnInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		kind := domain.KindCategorical
		if t.IsNumeric(col) {
			kind = domain.KindNumeric
		}
		infos = append(infos, domain.ColumnInfo{
			Name:    col,
			Kind:    kind,
			Missing: missing[col],
			Unique:  t.UniqueCount(col),
		})
	}
	return infos, nil
}

// Preview returns the first limit cleaned rows.
func (s *SurveyService) Preview(ctx context.Context, limit int) (*dataset.Table, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > len(t.Rows) {
		limit = len(t.Rows)
	}
	return dataset.NewTable(t.Columns, t.Rows[:limit]), nil
}

// Chart builds the bar-chart payload for one question column.
func (s *SurveyService) Chart(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	if _, ok := t.ColumnIndex(column); !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return report.BarChart(t, column, opts)
}

// Stats returns descriptive statistics for every numeric column.
func (s *SurveyService) Stats(ctx context.Context) ([]domain.ColumnStats, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	stats := report.Describe(t)
	if len(stats) == 0 {
		return nil, ErrNoNumericData
	}
	return stats, nil
}

// StatsCSV serializes the descriptive statistics table.
func (s *SurveyService) StatsCSV(ctx context.Context) ([]byte, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := s.writer.WriteStats(&b, stats); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// ColumnReport bundles one numeric column's statistics and histogram.
type ColumnReport struct {
	Stats     *domain.ColumnStats `json:"stats"`
	Histogram *domain.Histogram   `json:"histogram"`
}

// ColumnStats returns statistics and a histogram for one numeric column.
func (s *SurveyService) ColumnStats(ctx context.Context, column string, bins int) (*ColumnReport, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	if _, ok := t.ColumnIndex(column); !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	stats, err := report.DescribeColumn(t, column)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoNumericData, column)
	}
	hist, err := report.HistogramFor(t, column, bins)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoNumericData, column)
	}
	return &ColumnReport{Stats: stats, Histogram: hist}, nil
}

// Export applies a filter spec and serializes the matching rows to CSV.
// An empty spec exports the whole cleaned table; zero matches export a
// header-only document. The same spec always yields identical bytes.
func (s *SurveyService) Export(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error) {
	t, err := s.table()
	if err != nil {
		return nil, 0, err
	}

	filtered, err := spec.Apply(t)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrColumnNotFound, err)
	}

	data, err := s.writer.TableBytes(filtered)
	if err != nil {
		return nil, 0, err
	}

	if s.metrics != nil {
		s.metrics.ObserveExport(len(filtered.Rows))
	}

	s.logger.InfoContext(ctx, "exported filtered survey",
		slog.Int("rows", len(filtered.Rows)),
		slog.Int("filters", len(spec)))

	return data, len(filtered.Rows), nil
}

// RegionView is the geospatial tab payload: one marker per mapped census
// region plus warnings for regions the coordinate table does not know.
type RegionView struct {
	Counts   []domain.RegionCount       `json:"counts"`
	GeoJSON  *geojson.FeatureCollection `json:"geojson"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// Regions groups respondents by census region and joins map coordinates.
func (s *SurveyService) Regions(ctx context.Context) (*RegionView, error) {
	t, err := s.table()
	if err != nil {
		return nil, err
	}

	counts, warnings, err := s.mapper.Counts(t, s.cfg.RegionColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, s.cfg.RegionColumn)
	}

	return &RegionView{
		Counts:   counts,
		GeoJSON:  geo.FeatureCollection(counts),
		Warnings: warnings,
	}, nil
}

// Guide returns the static user guide sections.
func (s *SurveyService) Guide() []domain.GuideSection {
	return []domain.GuideSection{
		{
			Title: "Data Cleaning",
			Body: "The raw survey is cleaned once at startup: index columns are dropped, " +
				"verbose question headers are renamed to short labels, and missing answers " +
				"are filled with a default token (numeric columns use the column median).",
		},
		{
			Title: "Basic Visualization",
			Body: "Pick a question column to chart its answer breakdown. Use percent=true " +
				"for percentages and multi=true for questions that allow several answers.",
		},
		{
			Title: "Basic Statistical Reports",
			Body: "Numeric columns get count, mean, standard deviation, quartiles and a " +
				"histogram. Non-numeric columns are excluded.",
		},
		{
			Title: "Enhanced Dashboard & Export",
			Body: "POST a filter (allowed values per column, AND across columns) to download " +
				"the matching rows as CSV. An empty filter downloads the full cleaned table.",
		},
		{
			Title: "Geospatial Visualization",
			Body: "Respondents are grouped by U.S. census region and rendered as GeoJSON " +
				"markers sized by response count.",
		},
	}
}
