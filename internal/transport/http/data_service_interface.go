package http

import (
	"context"

	"github.com/carlosrabelo/tabula/internal/aggregate"
	"github.com/carlosrabelo/tabula/internal/services"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// DataServiceInterface is the subset of services.DataService the handlers use
type DataServiceInterface interface {
	Manifest(ctx context.Context) (*domain.RunManifest, error)
	DatasetPath(name string) (string, error)
	Dataset(ctx context.Context, name string) (domain.Table, error)
	Summary(ctx context.Context, name string) (aggregate.Summary, error)
	Runs(ctx context.Context, limit int) ([]domain.RunSummary, error)
	Run(ctx context.Context, id string) (*domain.RunManifest, error)
}

var _ DataServiceInterface = (*services.DataService)(nil)
