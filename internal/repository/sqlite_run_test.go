package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/testutil"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

func sampleManifest(id string, started time.Time) *domain.RunManifest {
	return &domain.RunManifest{
		RunID:         id,
		InputPath:     "/data/matriculas.xlsx",
		OutputDir:     "/data/datasets",
		ReferenceDate: "2024-06-30",
		RowCount:      3,
		StatusColumn:  "situacao_matricula",
		Mapping:       map[string]string{"Turno": "turno", "Situação": "situacao_matricula"},
		Collisions: []domain.HeaderCollision{
			{Normalized: "turno", Kept: "Turno", Ignored: "TURNO"},
		},
		Results: []domain.DatasetResult{
			{Dataset: "turno.csv", Outcome: domain.OutcomeGenerated, Rows: 2, Path: "/data/datasets/turno.csv", Duration: 3 * time.Millisecond},
			{Dataset: "cotas.csv", Outcome: domain.OutcomeMissingSources},
			{Dataset: "renda.csv", Outcome: domain.OutcomeInsufficientData, Error: "no values in renda_familiar"},
			{Dataset: "cor_raca.csv", Outcome: domain.OutcomeFailed, Error: "disk full"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
}

func TestSQLiteRunRepo_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	started := time.Date(2024, 6, 30, 12, 0, 0, 123, time.UTC)
	m := sampleManifest("run-1", started)

	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, m.InputPath, got.InputPath)
	assert.Equal(t, m.ReferenceDate, got.ReferenceDate)
	assert.Equal(t, m.RowCount, got.RowCount)
	assert.Equal(t, m.StatusColumn, got.StatusColumn)
	assert.Equal(t, m.Mapping, got.Mapping)
	assert.Equal(t, m.Collisions, got.Collisions)
	assert.Equal(t, m.Results, got.Results)
	assert.True(t, m.StartedAt.Equal(got.StartedAt))
	assert.True(t, m.FinishedAt.Equal(got.FinishedAt))
}

func TestSQLiteRunRepo_GetByIDNotFound(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestSQLiteRunRepo_CreateDuplicate(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	m := sampleManifest("run-1", time.Now().UTC())

	require.NoError(t, repo.Create(ctx, m))
	err := repo.Create(ctx, m)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestSQLiteRunRepo_CreateRollsBackOnBadResult(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()
	m := sampleManifest("run-1", time.Now().UTC())
	m.Results = append(m.Results, domain.DatasetResult{Dataset: "x.csv", Outcome: "bogus"})

	require.Error(t, repo.Create(ctx, m))

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteRunRepo_ListRecent(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		m := sampleManifest(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, m))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"run-2", "run-1", "run-0"}},
		{name: "limited", limit: 2, want: []string{"run-2", "run-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListRecent(ctx, tt.limit)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, s := range got {
				ids[i] = s.RunID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	got, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Generated)
	assert.Equal(t, 2, got[0].Skipped)
	assert.Equal(t, 1, got[0].Failed)
	assert.Equal(t, sampleManifest("run-2", base.Add(2*time.Hour)).Summary(), got[0])
}

func TestSQLiteRunRepo_ListRecentEmpty(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))

	got, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
