package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), includeStack)
}

func requestWithID(method, target, id string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, id))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", NewAppValidationError("bad name"), http.StatusBadRequest, TypeValidation},
		{"not found", NewNotFoundError("dataset turno.csv"), http.StatusNotFound, TypeNotFound},
		{"decoding", NewDecodingError("unreadable", nil), http.StatusUnprocessableEntity, TypeDataCorrupted},
		{"parsing", NewParsingError("bad cell", nil), http.StatusUnprocessableEntity, TypeDataCorrupted},
		{"storage", NewStorageError("insert failed", nil), http.StatusInternalServerError, TypeStorage},
		{"config", NewConfigError("bad overlay", nil), http.StatusInternalServerError, TypeInternal},
		{"api validation", ErrValidation("limit", "out of range"), http.StatusBadRequest, TypeValidation},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"cancelled", fmt.Errorf("reading: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	h := newTestHandler(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleError(rec, requestWithID(http.MethodGet, "/api/datasets/x", "req-1"), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/datasets/x", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h := newTestHandler(false)
	rec := httptest.NewRecorder()
	err := NewNotFoundError("run r9").WithContext("run_id", "r9").WithContext("type", "ignored")

	h.HandleError(rec, requestWithID(http.MethodGet, "/api/runs/r9", "req-2"), err)

	body := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", body["error_type"])
	assert.Equal(t, "r9", body["run_id"])
	// problem members win over context keys of the same name
	assert.Equal(t, TypeNotFound, body["type"])
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"production", false},
		{"debug", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestHandler(tt.includeStack).HandlePanic(rec, requestWithID(http.MethodGet, "/api", "req-3"), "kaboom")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decode(t, rec)
			if tt.includeStack {
				assert.Equal(t, "kaboom", body["panic"])
				assert.NotEmpty(t, body["stack"])
			} else {
				assert.NotContains(t, body, "panic")
			}
		})
	}
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/runs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "DELETE")
}
