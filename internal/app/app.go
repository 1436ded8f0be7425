// Package app assembles the services shared by the reproj binaries from
// configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/reproj/internal/adapters/geomengine"
	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/adapters/valkey"
	"github.com/samirrijal/reproj/internal/adapters/wkt"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/config"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
)

// Engine is a projection engine that can check definitions up front.
type Engine interface {
	ports.ProjectionEngine
	Validate(def string) error
}

// Runtime holds the wired services. Optional backends are nil when disabled
// or unreachable.
type Runtime struct {
	Config    *config.Config
	DB        *postgres.DB
	Cache     *valkey.Cache
	Publisher *natsadapter.Publisher
	Registry  *usecases.Registry
	Geometry  *usecases.GeometryService
	Jobs      *usecases.JobService

	closers []func()
}

// Bootstrap connects the configured backends and builds the services. The
// database is required when enabled or when it backs the registry; cache and
// broker failures only disable those features.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{Config: cfg}

	engine, closeEngine, err := NewEngine(cfg.Transform)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeEngine)

	if cfg.Database.Enabled || cfg.Transform.RegistrySource == config.RegistryPostGIS {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		rt.DB = db
		rt.closers = append(rt.closers, db.Close)
		go reportPoolStats(ctx, db)
	}

	rt.Registry = usecases.BuiltinRegistry()
	if cfg.Transform.RegistrySource == config.RegistryPostGIS {
		reg, err := usecases.LoadRegistry(ctx, postgres.NewCRSRepo(rt.DB), engine.Validate, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Registry = reg
	}

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			logger.Warn("valkey unavailable", "error", err)
		} else {
			rt.Cache = c
			cache = c
			rt.closers = append(rt.closers, c.Close)
		}
	}

	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		p, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Warn("nats unavailable", "error", err)
		} else {
			rt.Publisher = p
			events = p
			rt.closers = append(rt.closers, p.Close)
		}
	}

	parser := wkt.New(cfg.Transform.WKTMaxDecimals)
	points := usecases.NewPointTransformer(rt.Registry, engine, logger)
	classifier := usecases.NewClassifier(parser, usecases.NewGeometryTransformer(points), cfg.Transform.DefaultTargetCRS)
	rt.Geometry = usecases.NewGeometryService(classifier, parser,
		geomengine.New(parser, usecases.Classify), cache, events, cfg.Valkey.TTLSeconds)
	rt.Jobs = usecases.NewJobService(rt.Geometry, events)

	logger.Info("runtime ready",
		"engine", cfg.Transform.Engine,
		"registry", cfg.Transform.RegistrySource,
		"crs", rt.Registry.Len(),
		"cache", rt.Cache != nil,
		"broker", rt.Publisher != nil,
	)
	return rt, nil
}

// Close releases backends in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
