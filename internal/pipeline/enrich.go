package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// minRowsPerWorker keeps tiny exports on a single goroutine
const minRowsPerWorker = 256

// Options controls enrichment
type Options struct {
	// Reference is the date used as the end of open-ended course spans.
	// Only its calendar date is used.
	Reference time.Time
	// Workers bounds row-parallel evaluation; values below 1 mean 1.
	Workers int
}

// Enrich projects rs onto the canonical schema and runs the derivation
// steps over every row. The result does not depend on Workers.
func Enrich(ctx context.Context, rs *domain.RecordSet, res schema.Resolution, opts Options) (*Frame, error) {
	if opts.Reference.IsZero() {
		return nil, fmt.Errorf("reference date is required")
	}
	reference := truncateToDate(opts.Reference)

	rows := res.Canonicalize(rs)
	students := make([]Student, len(rows))
	for i := range rows {
		students[i].Canonical = rows[i]
	}

	statusSource := schema.SystemStatus
	if res.Available.Has(schema.CourseStatus) && anyFilled(rows, schema.CourseStatus) {
		statusSource = schema.CourseStatus
	}
	e := &env{
		statusSource:   statusSource,
		hasSpecialNeed: res.Available.Has(schema.SpecialNeeds),
		reference:      reference,
	}

	start := time.Now()
	if err := derive(ctx, students, e, opts.Workers); err != nil {
		return nil, err
	}

	frame := newFrame(students, res, reference)
	slog.DebugContext(ctx, "enrich_complete",
		slog.Int("rows", len(students)),
		slog.String("status_source", statusSource.String()),
		slog.String("status_column", frame.StatusColumn),
		slog.Int("available_fields", len(res.Available)),
		slog.Duration("duration", time.Since(start)))
	return frame, nil
}

// derive splits the rows into contiguous ranges, one per worker. Each
// worker owns its range exclusively.
func derive(ctx context.Context, students []Student, e *env, workers int) error {
	n := len(students)
	if workers < 1 {
		workers = 1
	}
	if limit := (n + minRowsPerWorker - 1) / minRowsPerWorker; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		return deriveRange(ctx, students, e)
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		part := students[lo:hi]
		g.Go(func() error {
			return deriveRange(gctx, part, e)
		})
	}
	return g.Wait()
}

func deriveRange(ctx context.Context, students []Student, e *env) error {
	for i := range students {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, st := range steps {
			st.apply(&students[i], e)
		}
	}
	return nil
}

func anyFilled(rows []schema.Row, f schema.Field) bool {
	for i := range rows {
		if !rows[i][f].IsMissing() {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
