package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carlosrabelo/tabula/internal/db"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

const timeLayout = time.RFC3339Nano

// SQLiteRunRepo implements RunRepo using a SQLite database
type SQLiteRunRepo struct {
	db *sql.DB
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo
func NewSQLiteRunRepo(db *sql.DB) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: db}
}

var _ RunRepo = (*SQLiteRunRepo)(nil)

// Create stores the run and its results in one transaction
func (r *SQLiteRunRepo) Create(ctx context.Context, m *domain.RunManifest) error {
	mapping, err := json.Marshal(m.Mapping)
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}
	collisions := []domain.HeaderCollision{}
	if m.Collisions != nil {
		collisions = m.Collisions
	}
	collisionsJSON, err := json.Marshal(collisions)
	if err != nil {
		return fmt.Errorf("encoding collisions: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("beginning run transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, input_path, output_dir, reference_date, row_count, status_column, mapping_json, collisions_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID,
		m.InputPath,
		m.OutputDir,
		m.ReferenceDate,
		m.RowCount,
		m.StatusColumn,
		string(mapping),
		string(collisionsJSON),
		m.StartedAt.UTC().Format(timeLayout),
		m.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return apperrors.NewStorageError("inserting run", err).WithContext("run_id", m.RunID)
	}

	if err := insertResults(ctx, tx, m.RunID, m.Results); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("committing run", err)
	}
	committed = true
	return nil
}

func insertResults(ctx context.Context, q db.DBTX, runID string, results []domain.DatasetResult) error {
	query := `INSERT INTO run_datasets (run_id, position, dataset, outcome, rows, path, error, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, res := range results {
		_, err := q.ExecContext(ctx, query,
			runID, i, res.Dataset, string(res.Outcome), res.Rows, res.Path, res.Error, int64(res.Duration))
		if err != nil {
			return apperrors.NewStorageError("inserting run dataset", err).
				WithContext("run_id", runID).
				WithContext("dataset", res.Dataset)
		}
	}
	return nil
}

// GetByID loads a run with its results in catalogue order
func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.RunManifest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, input_path, output_dir, reference_date, row_count, status_column,
		mapping_json, collisions_json, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	var (
		m                     domain.RunManifest
		mapping, collisions   string
		startedAt, finishedAt string
	)
	err := row.Scan(&m.RunID, &m.InputPath, &m.OutputDir, &m.ReferenceDate, &m.RowCount, &m.StatusColumn,
		&mapping, &collisions, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound,
				fmt.Sprintf("run %s not found", id), ErrNotFound)
		}
		return nil, apperrors.NewStorageError("scanning run", err)
	}

	if err := json.Unmarshal([]byte(mapping), &m.Mapping); err != nil {
		return nil, fmt.Errorf("decoding mapping: %w", err)
	}
	if err := json.Unmarshal([]byte(collisions), &m.Collisions); err != nil {
		return nil, fmt.Errorf("decoding collisions: %w", err)
	}
	if len(m.Collisions) == 0 {
		m.Collisions = nil
	}
	m.StartedAt = parseTime(startedAt)
	m.FinishedAt = parseTime(finishedAt)

	results, err := r.listResults(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Results = results
	return &m, nil
}

func (r *SQLiteRunRepo) listResults(ctx context.Context, runID string) ([]domain.DatasetResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dataset, outcome, rows, path, error, duration_ns
		FROM run_datasets WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, apperrors.NewStorageError("listing run datasets", err)
	}
	defer rows.Close()

	results := []domain.DatasetResult{}
	for rows.Next() {
		var (
			res      domain.DatasetResult
			outcome  string
			duration int64
		)
		if err := rows.Scan(&res.Dataset, &outcome, &res.Rows, &res.Path, &res.Error, &duration); err != nil {
			return nil, apperrors.NewStorageError("scanning run dataset", err)
		}
		res.Outcome = domain.DatasetOutcome(outcome)
		res.Duration = time.Duration(duration)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating run datasets", err)
	}
	return results, nil
}

// ListRecent returns the newest runs first. A non-positive limit returns
// every run.
func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT r.id, r.input_path, r.output_dir, r.reference_date, r.row_count,
			r.started_at, r.finished_at,
			COALESCE(SUM(CASE WHEN d.outcome = 'generated' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN d.outcome IN ('missing_sources','insufficient_data','no_data') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN d.outcome = 'failed' THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN run_datasets d ON d.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("listing runs", err)
	}
	defer rows.Close()

	out := []domain.RunSummary{}
	for rows.Next() {
		var (
			s                     domain.RunSummary
			startedAt, finishedAt string
		)
		if err := rows.Scan(&s.RunID, &s.InputPath, &s.OutputDir, &s.ReferenceDate, &s.RowCount,
			&startedAt, &finishedAt, &s.Generated, &s.Skipped, &s.Failed); err != nil {
			return nil, apperrors.NewStorageError("scanning run", err)
		}
		s.StartedAt = parseTime(startedAt)
		s.FinishedAt = parseTime(finishedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating runs", err)
	}
	return out, nil
}

// parseTime returns the zero time for unparsable values
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
