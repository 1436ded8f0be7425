package ports

import (
	"context"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// CRSRepository loads CRS definitions from an external catalogue.
type CRSRepository interface {
	// ListDefinitions returns every usable entry in the catalogue.
	ListDefinitions(ctx context.Context) ([]domain.CRSEntry, error)
	GetDefinition(ctx context.Context, id string) (*domain.CRSEntry, error)
	UpsertOverride(ctx context.Context, entry domain.CRSEntry) error
}
