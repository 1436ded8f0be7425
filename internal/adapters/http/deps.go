package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/adapters/valkey"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Everything but
// Geometry is optional.
type Dependencies struct {
	Geometry *usecases.GeometryService
	Jobs     *usecases.JobService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
