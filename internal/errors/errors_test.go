package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusNotFound, "COLUMN_NOT_FOUND", "Survey column not found")
	assert.Equal(t, "Survey column not found", err.Error())
}

func TestSentinelStatusCodes(t *testing.T) {
	tests := []struct {
		err  *APIError
		code int
	}{
		{ErrColumnNotFound, http.StatusNotFound},
		{ErrNoNumericData, http.StatusUnprocessableEntity},
		{ErrDatasetNotLoaded, http.StatusServiceUnavailable},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{ErrInternalServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode)
		})
	}
}

func TestColumnNotFoundError(t *testing.T) {
	err := ColumnNotFoundError("SeenFilms")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "COLUMN_NOT_FOUND", err.ErrorCode)
	assert.Contains(t, err.Message, "SeenFilms")

	details := err.Details.(map[string]interface{})
	assert.Equal(t, "SeenFilms", details["column"])
}

func TestNoNumericDataError(t *testing.T) {
	err := NoNumericDataError("IsFan")

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "NO_NUMERIC_DATA", err.ErrorCode)
	assert.Contains(t, err.Message, "IsFan")
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("limit", "Limit must be a number between 1 and 1000")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	detail := err.Details.(ValidationError)
	assert.Equal(t, "limit", detail.Field)
}

func TestHandleError_APIErrorEnvelope(t *testing.T) {
	handler := NewErrorHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/survey/stats", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, ColumnNotFoundError("Age"))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])

	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "COLUMN_NOT_FOUND", apiErr["error_code"])
	assert.Equal(t, float64(http.StatusNotFound), apiErr["status_code"])
}

func TestHandleError_WrapsUnknownErrors(t *testing.T) {
	handler := NewErrorHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("sql driver exploded"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", apiErr["error_code"])
	// Internals never leak to clients.
	assert.NotContains(t, rec.Body.String(), "sql driver")
}

func TestHandleError_ContextDeadline(t *testing.T) {
	handler := NewErrorHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("query: %w", context.DeadlineExceeded))

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "REQUEST_TIMEOUT", apiErr["error_code"])
}

func TestHandleError_NilError(t *testing.T) {
	handler := NewErrorHandler(nil)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Empty(t, rec.Body.String())
}
