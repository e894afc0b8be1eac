// Package repository persists run history.
package repository

import (
	"context"
	"errors"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// ErrNotFound is wrapped by lookups that match no row
var ErrNotFound = errors.New("not found")

// RunRepo stores generation runs and their per-dataset results
type RunRepo interface {
	Create(ctx context.Context, m *domain.RunManifest) error
	GetByID(ctx context.Context, id string) (*domain.RunManifest, error)
	ListRecent(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
