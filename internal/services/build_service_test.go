package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/exporter"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/internal/testutil"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var fixedNow = time.Date(2024, 6, 30, 9, 30, 0, 0, time.UTC)

func newTestBuildService(t *testing.T, opts ...BuildOption) (*BuildService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	opts = append([]BuildOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBuildService(logger, opts...), handler
}

func enrollmentRequest(t *testing.T) BuildRequest {
	t.Helper()
	return BuildRequest{
		InputFile: testutil.WriteWorkbook(t, "export.xlsx", testutil.EnrollmentHeaders, testutil.EnrollmentRows()),
		OutputDir: t.TempDir(),
		Workers:   4,
	}
}

func TestBuildServiceGeneratesCatalogue(t *testing.T) {
	svc, handler := newTestBuildService(t)
	req := enrollmentRequest(t)

	m, err := svc.Build(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, m.RunID)
	assert.Equal(t, 5, m.RowCount)
	assert.Equal(t, "2024-06-30", m.ReferenceDate)
	assert.Equal(t, "situacao_curso", m.StatusColumn)
	assert.Len(t, m.Results, 15)

	summary := m.Summary()
	assert.Equal(t, 13, summary.Generated)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Failed)

	for _, id := range []string{"cota_sistec.csv", "cotas.csv"} {
		r, ok := m.Result(id)
		require.True(t, ok, id)
		assert.Equal(t, domain.OutcomeMissingSources, r.Outcome, id)
	}

	table, err := exporter.ReadTable(filepath.Join(req.OutputDir, "modalidade.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Modalidade", "qtd", "pct_total"}, table.Columns)
	assert.Equal(t, [][]string{
		{"Presencial", "3", "60.00"},
		{"EAD", "2", "40.00"},
	}, table.Rows)

	assert.FileExists(t, filepath.Join(req.OutputDir, "manifest.json"))
	assert.True(t, handler.ContainsMessage("build finished"))
}

func TestBuildServiceExplicitReference(t *testing.T) {
	svc, _ := newTestBuildService(t)
	req := enrollmentRequest(t)
	req.Reference = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	req.Only = []string{"turno.csv"}

	m, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", m.ReferenceDate)
	require.Len(t, m.Results, 1)
	assert.Equal(t, domain.OutcomeGenerated, m.Results[0].Outcome)
}

func TestBuildServiceRecordsHistory(t *testing.T) {
	repo := repository.NewSQLiteRunRepo(testutil.NewTestDB(t))
	svc, _ := newTestBuildService(t, WithRecorder(repo))

	m, err := svc.Build(context.Background(), enrollmentRequest(t))
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), m.RunID)
	require.NoError(t, err)
	assert.Equal(t, m.Results, stored.Results)

	runs, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 13, runs[0].Generated)
}

func TestBuildServiceSynonymOverlay(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("turno:\n  - Horário das Aulas\n"), 0644))

	svc, _ := newTestBuildService(t)
	req := BuildRequest{
		InputFile:    testutil.WriteWorkbook(t, "export.xlsx", []string{"Horário das Aulas"}, [][]any{{"Noturno"}, {"Noturno"}}),
		OutputDir:    t.TempDir(),
		SynonymsFile: overlay,
		Only:         []string{"turno.csv"},
	}

	m, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Horário das Aulas", m.Mapping["turno"])
	assert.Equal(t, domain.OutcomeGenerated, m.Results[0].Outcome)
}

func TestBuildServiceFatalErrors(t *testing.T) {
	dir := t.TempDir()
	xls := filepath.Join(dir, "legacy.xls")
	require.NoError(t, os.WriteFile(xls, []byte("not a workbook"), 0644))
	badOverlay := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badOverlay, []byte("not_a_field:\n  - X\n"), 0644))

	tests := []struct {
		name     string
		req      BuildRequest
		wantType apperrors.ErrorType
	}{
		{
			name:     "missing input",
			req:      BuildRequest{InputFile: filepath.Join(dir, "nope.xlsx"), OutputDir: dir},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name:     "legacy xls",
			req:      BuildRequest{InputFile: xls, OutputDir: dir},
			wantType: apperrors.ErrTypeDecoding,
		},
		{
			name:     "invalid overlay",
			req:      BuildRequest{InputFile: xls, OutputDir: dir, SynonymsFile: badOverlay},
			wantType: apperrors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestBuildService(t)
			_, err := svc.Build(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			assert.NoFileExists(t, filepath.Join(dir, "manifest.json"))
		})
	}
}

func TestBuildServiceUnknownSelection(t *testing.T) {
	svc, _ := newTestBuildService(t)
	req := enrollmentRequest(t)
	req.Only = []string{"missing.csv"}

	_, err := svc.Build(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestBuildServiceDirectoryInput(t *testing.T) {
	svc, handler := newTestBuildService(t)
	req := enrollmentRequest(t)
	exportPath := req.InputFile
	req.InputFile = filepath.Dir(exportPath)

	m, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, exportPath, m.InputPath)
	assert.True(t, handler.ContainsMessage("using newest export in directory"))
}
