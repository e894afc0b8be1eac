package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/carlosrabelo/tabula/internal/aggregate"
	"github.com/carlosrabelo/tabula/internal/config"
	"github.com/carlosrabelo/tabula/internal/datasets"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/exporter"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// DefaultRunLimit caps history listings when no limit is given
const DefaultRunLimit = 20

// DataService reads generated datasets and run history
type DataService struct {
	outputDir string
	history   repository.RunRepo
	logger    *slog.Logger
}

// NewDataService creates a data service over outputDir. history may be nil
// when run history is disabled.
func NewDataService(outputDir string, history repository.RunRepo, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		outputDir: outputDir,
		history:   history,
		logger:    infrastructure.WithComponent(logger, "data"),
	}
}

// OutputDir returns the directory datasets are read from
func (ds *DataService) OutputDir() string {
	return ds.outputDir
}

// Manifest returns the manifest of the latest run in the output directory
func (ds *DataService) Manifest(ctx context.Context) (*domain.RunManifest, error) {
	path := filepath.Join(ds.outputDir, config.ManifestFileName)
	ds.logger.DebugContext(ctx, "reading manifest", slog.String("path", path))
	return datasets.ReadManifest(path)
}

// DatasetPath resolves a dataset file name inside the output directory.
// Only plain .csv file names are accepted.
func (ds *DataService) DatasetPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", apperrors.NewAppValidationError(fmt.Sprintf("invalid dataset name %q", name))
	}
	if strings.ToLower(filepath.Ext(name)) != ".csv" {
		return "", apperrors.NewAppValidationError(fmt.Sprintf("dataset %q is not a csv file", name))
	}
	path := filepath.Join(ds.outputDir, name)
	if !config.FileExists(path) {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("dataset %s", name))
	}
	return path, nil
}

// Dataset reads a generated dataset
func (ds *DataService) Dataset(ctx context.Context, name string) (domain.Table, error) {
	path, err := ds.DatasetPath(name)
	if err != nil {
		return domain.Table{}, err
	}

	table, err := exporter.ReadTable(path)
	if err != nil {
		return domain.Table{}, apperrors.NewDecodingError(fmt.Sprintf("failed to read dataset %s", name), err)
	}
	ds.logger.DebugContext(ctx, "dataset read",
		slog.String("dataset", name),
		slog.Int("rows", table.Len()))
	return table, nil
}

// Summary totals a category dataset. Datasets without a count column are
// rejected.
func (ds *DataService) Summary(ctx context.Context, name string) (aggregate.Summary, error) {
	table, err := ds.Dataset(ctx, name)
	if err != nil {
		return aggregate.Summary{}, err
	}
	if !slices.Contains(table.Columns, aggregate.CountColumn) {
		return aggregate.Summary{}, apperrors.NewAppValidationError(
			fmt.Sprintf("dataset %s has no %s column", name, aggregate.CountColumn))
	}
	return aggregate.Summarize(table), nil
}

// Runs lists recent runs, newest first
func (ds *DataService) Runs(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if ds.history == nil {
		return nil, apperrors.NewNotFoundError("run history")
	}
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return ds.history.ListRecent(ctx, limit)
}

// Run returns one stored run
func (ds *DataService) Run(ctx context.Context, id string) (*domain.RunManifest, error) {
	if ds.history == nil {
		return nil, apperrors.NewNotFoundError("run history")
	}
	return ds.history.GetByID(ctx, id)
}
