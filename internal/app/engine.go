//go:build !libproj

package app

import (
	"fmt"

	"github.com/samirrijal/reproj/internal/adapters/proj"
	"github.com/samirrijal/reproj/internal/pkg/config"
)

// NewEngine returns the pure-Go projection engine. Binaries built without the
// libproj tag reject the libproj setting.
func NewEngine(cfg config.TransformConfig) (Engine, func(), error) {
	if cfg.Engine == config.EngineLibPROJ {
		return nil, nil, fmt.Errorf("transform.engine=%s requires a build with -tags libproj", config.EngineLibPROJ)
	}
	e, err := proj.New(cfg.SRCacheSize)
	if err != nil {
		return nil, nil, err
	}
	return e, func() {}, nil
}
