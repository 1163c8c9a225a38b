package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypulse/internal/dataset"
	apierrors "surveypulse/internal/errors"
	"surveypulse/internal/report"
	"surveypulse/internal/services"
	"surveypulse/pkg/contracts/domain"
)

// mockSurveyService substitutes the service layer per test case.
type mockSurveyService struct {
	summary     func(ctx context.Context) (domain.CleanReport, error)
	columns     func(ctx context.Context) ([]domain.ColumnInfo, error)
	preview     func(ctx context.Context, limit int) (*dataset.Table, error)
	chart       func(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error)
	stats       func(ctx context.Context) ([]domain.ColumnStats, error)
	statsCSV    func(ctx context.Context) ([]byte, error)
	columnStats func(ctx context.Context, column string, bins int) (*services.ColumnReport, error)
	export      func(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error)
	regions     func(ctx context.Context) (*services.RegionView, error)
	guide       func() []domain.GuideSection
}

func (m *mockSurveyService) Summary(ctx context.Context) (domain.CleanReport, error) {
	return m.summary(ctx)
}
func (m *mockSurveyService) Columns(ctx context.Context) ([]domain.ColumnInfo, error) {
	return m.columns(ctx)
}
func (m *mockSurveyService) Preview(ctx context.Context, limit int) (*dataset.Table, error) {
	return m.preview(ctx, limit)
}
func (m *mockSurveyService) Chart(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error) {
	return m.chart(ctx, column, opts)
}
func (m *mockSurveyService) Stats(ctx context.Context) ([]domain.ColumnStats, error) {
	return m.stats(ctx)
}
func (m *mockSurveyService) StatsCSV(ctx context.Context) ([]byte, error) {
	return m.statsCSV(ctx)
}
func (m *mockSurveyService) ColumnStats(ctx context.Context, column string, bins int) (*services.ColumnReport, error) {
	return m.columnStats(ctx, column, bins)
}
func (m *mockSurveyService) Export(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error) {
	return m.export(ctx, spec)
}
func (m *mockSurveyService) Regions(ctx context.Context) (*services.RegionView, error) {
	return m.regions(ctx)
}
func (m *mockSurveyService) Guide() []domain.GuideSection {
	return m.guide()
}

func newTestHandler(mock *mockSurveyService) *SurveyHandler {
	logger := slog.Default()
	return NewSurveyHandler(mock, logger, apierrors.NewErrorHandler(logger))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSummary(t *testing.T) {
	mock := &mockSurveyService{
		summary: func(ctx context.Context) (domain.CleanReport, error) {
			return domain.CleanReport{RawColumns: 38, RawRows: 1186, RenamedColumns: 5}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(38), data["raw_columns"])
}

func TestGetSummary_DatasetNotLoaded(t *testing.T) {
	mock := &mockSurveyService{
		summary: func(ctx context.Context) (domain.CleanReport, error) {
			return domain.CleanReport{}, services.ErrDatasetNotLoaded
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "error", body["status"])
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "DATASET_NOT_LOADED", apiErr["error_code"])
}

func TestGetColumns(t *testing.T) {
	mock := &mockSurveyService{
		columns: func(ctx context.Context) ([]domain.ColumnInfo, error) {
			return []domain.ColumnInfo{
				{Name: "SeenFilms", Kind: domain.KindCategorical, Unique: 2},
				{Name: "Age", Kind: domain.KindNumeric, Unique: 40},
			}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/columns", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestGetPreview_LimitValidation(t *testing.T) {
	mock := &mockSurveyService{
		preview: func(ctx context.Context, limit int) (*dataset.Table, error) {
			return dataset.NewTable([]string{"A"}, [][]string{{"1"}}), nil
		},
	}
	handler := newTestHandler(mock)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"default limit", "", http.StatusOK},
		{"explicit limit", "?limit=5", http.StatusOK},
		{"zero limit", "?limit=0", http.StatusBadRequest},
		{"over maximum", "?limit=5000", http.StatusBadRequest},
		{"not a number", "?limit=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/preview"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.Routes().ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGetChart_PassesOptions(t *testing.T) {
	var gotColumn string
	var gotOpts report.CountOptions
	mock := &mockSurveyService{
		chart: func(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error) {
			gotColumn = column
			gotOpts = opts
			return &domain.ChartConfig{ChartType: "bar", Title: column}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/charts/SeenFilms?percent=true&multi=true", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SeenFilms", gotColumn)
	assert.True(t, gotOpts.Percent)
	assert.True(t, gotOpts.MultiSelect)
}

func TestGetChart_ColumnNotFound(t *testing.T) {
	mock := &mockSurveyService{
		chart: func(ctx context.Context, column string, opts report.CountOptions) (*domain.ChartConfig, error) {
			return nil, services.ErrColumnNotFound
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/charts/Nope", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "COLUMN_NOT_FOUND", apiErr["error_code"])
}

func TestGetStats_JSON(t *testing.T) {
	mock := &mockSurveyService{
		stats: func(ctx context.Context) ([]domain.ColumnStats, error) {
			return []domain.ColumnStats{{Column: "Age", Count: 1186}}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestGetStats_CSVFormat(t *testing.T) {
	mock := &mockSurveyService{
		statsCSV: func(ctx context.Context) ([]byte, error) {
			return []byte("Column,Count\nAge,1186\n"), nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/stats?format=csv", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "survey_stats.csv")
	assert.Contains(t, rec.Body.String(), "Age,1186")
}

func TestGetStats_NoNumericData(t *testing.T) {
	mock := &mockSurveyService{
		stats: func(ctx context.Context) ([]domain.ColumnStats, error) {
			return nil, services.ErrNoNumericData
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetColumnStats_BinsValidation(t *testing.T) {
	mock := &mockSurveyService{
		columnStats: func(ctx context.Context, column string, bins int) (*services.ColumnReport, error) {
			return &services.ColumnReport{
				Stats:     &domain.ColumnStats{Column: column},
				Histogram: &domain.Histogram{Column: column},
			}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/stats/Age?bins=20", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/stats/Age?bins=0", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/stats/Age?bins=500", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	var gotSpec dataset.FilterSpec
	mock := &mockSurveyService{
		export: func(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error) {
			gotSpec = spec
			return []byte("SeenFilms\nYes\n"), 1, nil
		},
	}
	handler := newTestHandler(mock)

	payload := `{"filters":{"SeenFilms":["Yes"]},"filename":"fans.csv"}`
	req := httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dataset.FilterSpec{"SeenFilms": {"Yes"}}, gotSpec)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fans.csv")
	assert.Equal(t, "1", rec.Header().Get("X-Export-Rows"))
	assert.Equal(t, "SeenFilms\nYes\n", rec.Body.String())
}

func TestExport_DefaultFilename(t *testing.T) {
	mock := &mockSurveyService{
		export: func(ctx context.Context, spec dataset.FilterSpec) ([]byte, int, error) {
			return []byte("A\n"), 0, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "survey_export_")
	assert.Contains(t, disposition, ".csv")
}

func TestExport_InvalidBody(t *testing.T) {
	handler := newTestHandler(&mockSurveyService{})

	req := httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", apiErr["error_code"])
}

func TestExport_FilenameValidation(t *testing.T) {
	handler := newTestHandler(&mockSurveyService{})

	payload := `{"filename":"../../etc/passwd"}`
	req := httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", apiErr["error_code"])
}

func TestGetRegions(t *testing.T) {
	mock := &mockSurveyService{
		regions: func(ctx context.Context) (*services.RegionView, error) {
			return &services.RegionView{
				Counts: []domain.RegionCount{
					{Region: "Pacific", Count: 175, Lat: 41.5, Lng: -121.5},
				},
				Warnings: []string{`region "Hoth" has no coordinates, marker skipped`},
			}, nil
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/regions", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].(map[string]any)
	warnings := data["warnings"].([]any)
	assert.Len(t, warnings, 1)
}

func TestGetGuide(t *testing.T) {
	mock := &mockSurveyService{
		guide: func() []domain.GuideSection {
			return []domain.GuideSection{
				{Title: "Data Cleaning", Body: "..."},
				{Title: "Basic Visualization", Body: "..."},
			}
		},
	}
	handler := newTestHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/guide", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(2), body["count"])
}
