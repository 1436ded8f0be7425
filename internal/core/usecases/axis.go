package usecases

import (
	"log/slog"
	"sync"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// AxisResolver classifies CRS identifiers as geographic or projected using
// the axis order recorded in the registry.
type AxisResolver struct {
	registry *Registry
	logger   *slog.Logger
	warned   sync.Map
}

// NewAxisResolver creates a resolver over reg. A nil logger uses slog.Default.
func NewAxisResolver(reg *Registry, logger *slog.Logger) *AxisResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AxisResolver{registry: reg, logger: logger}
}

// Classify never fails. Unknown identifiers are treated as projected and
// logged once per identifier.
func (r *AxisResolver) Classify(id string) domain.AxisOrder {
	if e, err := r.registry.Lookup(id); err == nil {
		return e.Axis
	}
	if _, seen := r.warned.LoadOrStore(id, struct{}{}); !seen {
		r.logger.Warn("unknown CRS identifier, assuming projected axis order", "crs", id)
	}
	return domain.Projected
}
