package datasets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/carlosrabelo/tabula/internal/exporter"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

const tracerName = "github.com/carlosrabelo/tabula/internal/datasets"

// Writer persists a generated table and returns its path
type Writer interface {
	WriteTable(name string, table domain.Table) (string, error)
}

var _ Writer = (*exporter.CSVWriter)(nil)

// Orchestrator gates, builds and writes every selected dataset
type Orchestrator struct {
	registry *Registry
	writer   Writer
	workers  int
	metrics  *infrastructure.DatasetMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkers bounds how many datasets are built concurrently
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMetrics records outcomes and build durations
func WithMetrics(m *infrastructure.DatasetMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an orchestrator over registry writing through w
func NewOrchestrator(registry *Registry, w Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		writer:   w,
		workers:  1,
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(slog.String("component", "datasets"))
	return o
}

// Run processes the selected datasets (all when only is empty) against
// frame. Per-dataset problems become result outcomes; the error is reserved
// for an invalid selection or a cancelled context. Results follow registry
// order regardless of how many workers ran.
func (o *Orchestrator) Run(ctx context.Context, frame *pipeline.Frame, only []string) ([]domain.DatasetResult, error) {
	specs, err := o.registry.Select(only)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "datasets.run",
		trace.WithAttributes(
			attribute.Int("datasets.selected", len(specs)),
			attribute.Int("datasets.workers", o.workers),
			attribute.Int("frame.rows", frame.Len()),
		))
	defer span.End()

	results := make([]domain.DatasetResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = o.process(gctx, spec, frame)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	for _, r := range results {
		o.logResult(ctx, r)
	}
	return results, nil
}

func (o *Orchestrator) process(ctx context.Context, spec Spec, frame *pipeline.Frame) (result domain.DatasetResult) {
	ctx, span := o.tracer.Start(ctx, "datasets.build",
		trace.WithAttributes(attribute.String("dataset.id", spec.ID)))
	start := time.Now()
	result.Dataset = spec.ID

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = domain.OutcomeFailed
			result.Error = fmt.Sprintf("builder panic: %v", r)
			result.Rows = 0
			result.Path = ""
		}
		result.Duration = time.Since(start)
		span.SetAttributes(
			attribute.String("dataset.outcome", string(result.Outcome)),
			attribute.Int("dataset.rows", result.Rows),
		)
		if result.Outcome == domain.OutcomeFailed {
			infrastructure.RecordError(ctx, fmt.Errorf("%s", result.Error))
		}
		span.End()
		o.metrics.RecordDataset(ctx, spec.ID, string(result.Outcome), result.Duration)
	}()

	if !spec.HasSources(frame.Available) {
		result.Outcome = domain.OutcomeMissingSources
		return result
	}
	if missing := spec.MissingRequirements(frame); len(missing) > 0 {
		result.Outcome = domain.OutcomeInsufficientData
		result.Error = "no values in " + strings.Join(missing, ", ")
		return result
	}

	table := spec.Builder.Build(frame)
	if table.Empty() {
		result.Outcome = domain.OutcomeNoData
		return result
	}

	path, err := o.writer.WriteTable(spec.ID, table)
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	result.Outcome = domain.OutcomeGenerated
	result.Rows = table.Len()
	result.Path = path
	return result
}

func (o *Orchestrator) logResult(ctx context.Context, r domain.DatasetResult) {
	attrs := []slog.Attr{
		slog.String("dataset", r.Dataset),
		slog.String("outcome", string(r.Outcome)),
		slog.Duration("duration", r.Duration),
	}
	switch r.Outcome {
	case domain.OutcomeGenerated:
		attrs = append(attrs, slog.Int("rows", r.Rows), slog.String("path", r.Path))
		o.logger.LogAttrs(ctx, slog.LevelInfo, "dataset generated", attrs...)
	case domain.OutcomeFailed:
		attrs = append(attrs, slog.String("error", r.Error))
		o.logger.LogAttrs(ctx, slog.LevelError, "dataset failed", attrs...)
	default:
		if r.Error != "" {
			attrs = append(attrs, slog.String("reason", r.Error))
		}
		o.logger.LogAttrs(ctx, slog.LevelInfo, "dataset skipped", attrs...)
	}
}
