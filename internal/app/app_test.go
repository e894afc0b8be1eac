package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/tabula/internal/config"
	"github.com/carlosrabelo/tabula/internal/db"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/internal/services"
	"github.com/carlosrabelo/tabula/internal/testutil"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// buildOutput runs a build into a temp dir, recording into a history
// database at historyPath when set. It returns the output dir and run ID.
func buildOutput(t *testing.T, historyPath string) (string, string) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	var opts []services.BuildOption
	if historyPath != "" {
		database, err := db.OpenDB(historyPath)
		require.NoError(t, err)
		defer database.Close()
		opts = append(opts, services.WithRecorder(repository.NewSQLiteRunRepo(database)))
	}

	out := t.TempDir()
	svc := services.NewBuildService(logger, opts...)
	m, err := svc.Build(context.Background(), services.BuildRequest{
		InputFile: testutil.WriteWorkbook(t, "export.xlsx", testutil.EnrollmentHeaders, testutil.EnrollmentRows()),
		OutputDir: out,
		Reference: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Workers:   2,
	})
	require.NoError(t, err)
	return out, m.RunID
}

func newTestApplication(t *testing.T, outputDir, historyPath string) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	paths := &config.Paths{OutputDir: outputDir, HistoryDB: historyPath}

	a, err := NewApplication(cfg, paths, "test", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })
	return a
}

func get(t *testing.T, a *Application, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestApplicationHealth(t *testing.T) {
	out, _ := buildOutput(t, "")
	a := newTestApplication(t, out, "")

	rec := get(t, a, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, a, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "disabled", status.Services["history"].Status)
}

func TestApplicationReadinessFailsWithoutOutput(t *testing.T) {
	a := newTestApplication(t, filepath.Join(t.TempDir(), "missing"), "")

	rec := get(t, a, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApplicationDatasets(t *testing.T) {
	out, _ := buildOutput(t, "")
	a := newTestApplication(t, out, "")

	t.Run("manifest", func(t *testing.T) {
		rec := get(t, a, "/api/datasets")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		var m domain.RunManifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		assert.Equal(t, 5, m.RowCount)
		assert.Len(t, m.Results, 15)
	})

	t.Run("dataset json", func(t *testing.T) {
		rec := get(t, a, "/api/datasets/modalidade.csv")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Name    string              `json:"name"`
			Columns []string            `json:"columns"`
			Rows    []map[string]string `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "modalidade.csv", body.Name)
		require.Len(t, body.Rows, 2)
		assert.Equal(t, "Presencial", body.Rows[0][body.Columns[0]])
	})

	t.Run("dataset csv", func(t *testing.T) {
		rec := get(t, a, "/api/datasets/modalidade.csv?format=csv")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.True(t, strings.Contains(rec.Body.String(), "Presencial;3;60.00"))
	})

	t.Run("dataset summary", func(t *testing.T) {
		rec := get(t, a, "/api/datasets/modalidade.csv/summary")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Column  string              `json:"coluna"`
			Total   int                 `json:"total"`
			Records []map[string]string `json:"registros"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Modalidade", body.Column)
		assert.Equal(t, 5, body.Total)
		assert.Len(t, body.Records, 2)
	})

	t.Run("static file", func(t *testing.T) {
		rec := get(t, a, "/datasets/turno.csv")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Matutino")
	})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"skipped dataset has no file", "/api/datasets/cotas.csv", http.StatusNotFound},
		{"not a csv", "/api/datasets/manifest.json", http.StatusBadRequest},
		{"summary of skipped dataset", "/api/datasets/cotas.csv/summary", http.StatusNotFound},
		{"bad format", "/api/datasets/turno.csv?format=xml", http.StatusBadRequest},
		{"unknown route", "/api/nope", http.StatusNotFound},
		{"no history", "/api/runs", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, a, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestApplicationRuns(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "history.db")
	out, runID := buildOutput(t, historyPath)
	a := newTestApplication(t, out, historyPath)
	require.NotNil(t, a.DB)

	rec := get(t, a, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, 13, runs[0].Generated)

	rec = get(t, a, "/api/runs/"+runID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, a, "/api/runs/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, a, "/api/runs?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationVersion(t *testing.T) {
	a := newTestApplication(t, t.TempDir(), "")

	rec := get(t, a, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body["version"])
}
