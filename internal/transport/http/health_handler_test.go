package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypulse/internal/config"
	"surveypulse/internal/dataset"
	"surveypulse/internal/metrics"
	"surveypulse/internal/services"
)

func newHealthFixture() (*HealthHandler, *services.SurveyService) {
	survey := services.NewSurveyService(config.SurveyConfig{}, slog.Default(), metrics.New())
	health := services.NewHealthService(survey)
	return NewHealthHandler(health, slog.Default()), survey
}

func TestHealthCheck(t *testing.T) {
	handler, _ := newHealthFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["uptime"])
}

func TestReadinessCheck(t *testing.T) {
	handler, survey := newHealthFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/health/ready", nil)
	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	survey.LoadTable(dataset.NewTable([]string{"A"}, [][]string{{"1"}}))

	// render.Status stores the code on the request context, so the ready
	// pass needs a fresh request.
	req = httptest.NewRequest(http.MethodGet, "/api/health/ready", nil)
	rec = httptest.NewRecorder()
	handler.ReadinessCheck(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersion(t *testing.T) {
	handler, _ := newHealthFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	handler.Version(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.Version, body["version"])
}
