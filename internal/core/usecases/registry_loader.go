package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
)

// DefinitionValidator reports whether a projection engine can use def.
type DefinitionValidator func(def string) error

// LoadRegistry layers every catalogue entry the engine accepts over the
// built-in table. Rejected entries are logged and skipped; catalogue rows
// replace built-in rows with the same identifier.
func LoadRegistry(ctx context.Context, repo ports.CRSRepository, validate DefinitionValidator, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load crs catalogue: %w", err)
	}

	kept := make([]domain.CRSEntry, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if validate != nil {
			if err := validate(e.Definition); err != nil {
				skipped++
				logger.Debug("skipping crs definition", "crs", e.ID, "error", err)
				continue
			}
		}
		kept = append(kept, e)
	}

	reg, err := BuiltinRegistry().With(kept...)
	if err != nil {
		return nil, err
	}
	logger.Info("crs registry loaded", "catalogue", len(entries), "skipped", skipped, "total", reg.Len())
	return reg, nil
}
