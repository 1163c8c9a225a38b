package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"surveypulse/internal/dataset"
	apierrors "surveypulse/internal/errors"
	"surveypulse/internal/middleware"
	"surveypulse/internal/report"
	"surveypulse/internal/services"
)

// SurveyHandler exposes the dashboard tabs as HTTP endpoints.
type SurveyHandler struct {
	service      SurveyServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewSurveyHandler creates a new survey handler.
func NewSurveyHandler(service SurveyServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SurveyHandler {
	return &SurveyHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "survey_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the survey routes.
func (h *SurveyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/columns", h.GetColumns)
	r.Get("/preview", h.GetPreview)
	r.Get("/stats", h.GetStats)
	r.Get("/guide", h.GetGuide)
	r.Get("/regions", h.GetRegions)
	r.Post("/export", h.Export)

	r.Route("/charts/{column}", func(r chi.Router) {
		r.Use(h.ColumnCtx)
		r.Get("/", h.GetChart)
	})
	r.Route("/stats/{column}", func(r chi.Router) {
		r.Use(h.ColumnCtx)
		r.Get("/", h.GetColumnStats)
	})

	return r
}

// ColumnCtx middleware validates the column URL parameter.
func (h *SurveyHandler) ColumnCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		column := chi.URLParam(r, "column")
		if column == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("column", "Column name is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSummary handles GET /api/survey/summary
func (h *SurveyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetColumns handles GET /api/survey/columns
func (h *SurveyHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := h.service.Columns(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   columns,
		"count":  len(columns),
	})
}

// GetPreview handles GET /api/survey/preview
func (h *SurveyHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 1000 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "Limit must be a number between 1 and 1000"))
			return
		}
		limit = parsed
	}

	preview, err := h.service.Preview(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"columns": preview.Columns,
			"rows":    preview.Rows,
		},
		"count": len(preview.Rows),
	})
}

// GetChart handles GET /api/survey/charts/{column}
func (h *SurveyHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	opts := report.CountOptions{
		Percent:     r.URL.Query().Get("percent") == "true",
		MultiSelect: r.URL.Query().Get("multi") == "true",
	}

	h.logger.InfoContext(r.Context(), "building chart",
		slog.String("column", column),
		slog.Bool("percent", opts.Percent),
		slog.Bool("multi", opts.MultiSelect),
	)

	chart, err := h.service.Chart(r.Context(), column, opts)
	if err != nil {
		h.handleServiceError(w, r, err, column)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   chart,
		"count":  len(chart.Points),
	})
}

// GetStats handles GET /api/survey/stats; format=csv downloads the table.
func (h *SurveyHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "csv" {
		data, err := h.service.StatsCSV(r.Context())
		if err != nil {
			h.handleServiceError(w, r, err, "")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="survey_stats.csv"`)
		w.Write(data)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
		"count":  len(stats),
	})
}

// GetColumnStats handles GET /api/survey/stats/{column}
func (h *SurveyHandler) GetColumnStats(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")

	bins := 0
	if binsStr := r.URL.Query().Get("bins"); binsStr != "" {
		parsed, err := strconv.Atoi(binsStr)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("bins", "Bins must be a number between 1 and 100"))
			return
		}
		bins = parsed
	}

	reportData, err := h.service.ColumnStats(r.Context(), column, bins)
	if err != nil {
		h.handleServiceError(w, r, err, column)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   reportData,
		"column": column,
	})
}

// ExportRequest is the filtered-export request body.
type ExportRequest struct {
	Filters  map[string][]string `json:"filters" validate:"omitempty,dive,required,dive,required"`
	Filename string              `json:"filename" validate:"omitempty,max=64,excludesall=/\\"`
}

// Export handles POST /api/survey/export; the response body is the CSV
// document.
func (h *SurveyHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Export request validation failed",
			err.Error(),
		))
		return
	}

	h.logger.InfoContext(r.Context(), "exporting filtered survey",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("filter_columns", len(req.Filters)),
	)

	data, rows, err := h.service.Export(r.Context(), dataset.FilterSpec(req.Filters))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("survey_export_%s.csv", uuid.New().String()[:8])
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.Write(data)
}

// GetRegions handles GET /api/survey/regions
func (h *SurveyHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Regions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Counts),
	})
}

// GetGuide handles GET /api/survey/guide
func (h *SurveyHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	sections := h.service.Guide()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   sections,
		"count":  len(sections),
	})
}

// handleServiceError maps service sentinels to API errors.
func (h *SurveyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, column string) {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotLoaded)
	case errors.Is(err, services.ErrColumnNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ColumnNotFoundError(column))
	case errors.Is(err, services.ErrNoNumericData):
		h.errorHandler.HandleError(w, r, apierrors.NoNumericDataError(column))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
