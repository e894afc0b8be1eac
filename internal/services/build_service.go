package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carlosrabelo/tabula/internal/datasets"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/exporter"
	"github.com/carlosrabelo/tabula/internal/files"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	"github.com/carlosrabelo/tabula/internal/ingest"
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

const tracerName = "github.com/carlosrabelo/tabula/internal/services"

// BuildRequest describes one generation run
type BuildRequest struct {
	// InputFile is an export, or a directory whose newest export is used
	InputFile    string
	OutputDir    string
	Sheet        string
	SynonymsFile string
	Only         []string
	// Reference is the "today" used for open course spans; zero means now
	Reference  time.Time
	Workers    int
	RowWorkers int
	BOM        bool
}

// RunRecorder stores finished runs
type RunRecorder interface {
	Create(ctx context.Context, m *domain.RunManifest) error
}

// BuildService runs the load, resolve, enrich and generate stages
type BuildService struct {
	registry *datasets.Registry
	recorder RunRecorder
	metrics  *infrastructure.DatasetMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// BuildOption configures a BuildService
type BuildOption func(*BuildService)

// WithRecorder stores every finished run
func WithRecorder(r RunRecorder) BuildOption {
	return func(s *BuildService) { s.recorder = r }
}

// WithBuildMetrics records run and dataset metrics
func WithBuildMetrics(m *infrastructure.DatasetMetrics) BuildOption {
	return func(s *BuildService) { s.metrics = m }
}

// WithRegistry replaces the default catalogue
func WithRegistry(r *datasets.Registry) BuildOption {
	return func(s *BuildService) { s.registry = r }
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) BuildOption {
	return func(s *BuildService) { s.now = now }
}

// NewBuildService creates a build service
func NewBuildService(logger *slog.Logger, opts ...BuildOption) *BuildService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BuildService{
		registry: datasets.DefaultRegistry(),
		tracer:   otel.Tracer(tracerName),
		logger:   infrastructure.WithComponent(logger, "build"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build runs the whole pipeline for req and returns the manifest written
// to the output directory. Load-level problems abort the run; per-dataset
// problems are reported in the manifest results.
func (s *BuildService) Build(ctx context.Context, req BuildRequest) (m *domain.RunManifest, err error) {
	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	ctx, span := s.tracer.Start(ctx, "build.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("input.path", req.InputFile),
		))
	defer span.End()

	startedAt := s.now()
	rows := 0
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		s.metrics.RecordRun(ctx, rows, err)
	}()

	s.logger.InfoContext(ctx, "build started",
		slog.String("input", req.InputFile),
		slog.String("output_dir", req.OutputDir))

	synonyms, err := s.synonyms(req.SynonymsFile)
	if err != nil {
		return nil, err
	}

	input, err := files.ResolveInput(req.InputFile)
	if err != nil {
		return nil, err
	}
	if input != req.InputFile {
		s.logger.InfoContext(ctx, "using newest export in directory", slog.String("input", input))
	}
	if err := files.EnsureWritable(req.OutputDir); err != nil {
		return nil, err
	}

	rs, err := ingest.Load(input, ingest.Options{Sheet: req.Sheet})
	if err != nil {
		return nil, err
	}
	rows = rs.Len()

	res := schema.Resolve(rs.Headers, synonyms)
	for _, c := range res.Collisions {
		s.logger.WarnContext(ctx, "header collision",
			slog.String("normalized", c.Normalized),
			slog.String("kept", c.Kept),
			slog.String("ignored", c.Ignored))
	}
	s.logger.InfoContext(ctx, "columns resolved",
		slog.Int("headers", len(rs.Headers)),
		slog.Int("resolved", len(res.Mapping)),
		slog.Int("rows", rows))

	reference := req.Reference
	if reference.IsZero() {
		reference = startedAt
	}
	frame, err := pipeline.Enrich(ctx, rs, res, pipeline.Options{Reference: reference, Workers: req.RowWorkers})
	if err != nil {
		return nil, fmt.Errorf("enriching records: %w", err)
	}

	writer := exporter.NewCSVWriter(req.OutputDir).WithBOM(req.BOM)
	orch := datasets.NewOrchestrator(s.registry, writer,
		datasets.WithWorkers(req.Workers),
		datasets.WithMetrics(s.metrics),
		datasets.WithLogger(s.logger))

	m = datasets.NewManifest(runID, input, req.OutputDir, frame, startedAt)
	results, err := orch.Run(ctx, frame, req.Only)
	if err != nil {
		return nil, err
	}
	m.Results = results
	m.FinishedAt = s.now().UTC()

	if _, err := datasets.WriteManifest(writer, m); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.Create(ctx, m); err != nil {
			// the datasets are already on disk
			s.logger.ErrorContext(ctx, "failed to record run history", slog.String("error", err.Error()))
		}
	}

	summary := m.Summary()
	s.logger.InfoContext(ctx, "build finished",
		slog.Int("generated", summary.Generated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", m.FinishedAt.Sub(m.StartedAt)))
	return m, nil
}

func (s *BuildService) synonyms(path string) (*schema.SynonymTable, error) {
	if path == "" {
		return schema.DefaultSynonyms(), nil
	}
	table, err := schema.LoadSynonymOverlay(path, schema.DefaultSynonyms())
	if err != nil {
		return nil, apperrors.NewConfigError("invalid synonym overlay", err).WithContext("path", path)
	}
	return table, nil
}
