package http

import (
	"context"

	"surveypulse/internal/dataset"
	"surveypulse/internal/report"
	"surveypulse/internal/services"
	"surveypulse/pkg/contracts/domain"
)

// SurveyServiceInterface defines what the survey handler needs from the
// service layer. Declared here so tests can substitute a mock.
type SurveyServiceInterface interface {
	Summary(ctx context.Context) (domain.CleanReport, error)
	Columns(ctx context.Context) ([]domain.ColumnInfo, error)
	Preview(ctx context.Context, limit int) (*dataset.Table, error)
	Chart(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error)
	Stats(ctx context.Context) ([]domain.ColumnStats, error)
	StatsCSV(ctx context.Context) ([]byte, error)
	ColumnStats(ctx context.Context, column string, bins int) (*services.ColumnReport, error)
	Export(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error)
	Regions(ctx context.Context) (*services.RegionView, error)
	Guide() []domain.GuideSection
}
