//go:build libproj

package app

import (
	"github.com/samirrijal/reproj/internal/adapters/libproj"
	"github.com/samirrijal/reproj/internal/adapters/proj"
	"github.com/samirrijal/reproj/internal/pkg/config"
)

// NewEngine returns the engine named by cfg.Engine.
func NewEngine(cfg config.TransformConfig) (Engine, func(), error) {
	if cfg.Engine == config.EngineLibPROJ {
		e := libproj.New()
		return e, e.Close, nil
	}
	e, err := proj.New(cfg.SRCacheSize)
	if err != nil {
		return nil, nil, err
	}
	return e, func() {}, nil
}
