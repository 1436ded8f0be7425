//go:build libproj

package libproj

import (
	"fmt"
	"math"
	"sync"

	"github.com/pebbe/proj/v5"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// Engine implements ports.ProjectionEngine with PROJ. A PROJ context is not
// safe for concurrent use, so every call holds mu.
type Engine struct {
	mu   sync.Mutex
	ctx  *proj.Context
	defs map[string]*proj.PJ
}

// New creates an Engine with its own PROJ context.
func New() *Engine {
	return &Engine{ctx: proj.NewContext(), defs: make(map[string]*proj.PJ)}
}

// Close releases every projection and the context.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for def, pj := range e.defs {
		pj.Close()
		delete(e.defs, def)
	}
	e.ctx.Close()
}

func (e *Engine) pj(def string) (*proj.PJ, error) {
	if pj, ok := e.defs[def]; ok {
		return pj, nil
	}
	pj, err := e.ctx.Create(def)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", def, err)
	}
	e.defs[def] = pj
	return pj, nil
}

// Validate reports whether PROJ accepts def.
func (e *Engine) Validate(def string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.pj(def)
	return err
}

// Transform moves (x, y) from srcDef to dstDef. Geographic definitions take
// and return degrees.
func (e *Engine) Transform(srcDef, dstDef string, x, y float64) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lon, lat := proj.DegToRad(x), proj.DegToRad(y)
	if domain.AxisOrderFromDefinition(srcDef) == domain.Projected {
		src, err := e.pj(srcDef)
		if err != nil {
			return 0, 0, err
		}
		if lon, lat, _, _, err = src.Trans(proj.Inv, x, y, 0, 0); err != nil {
			return 0, 0, fmt.Errorf("inverse %s: %w", srcDef, err)
		}
	}

	var ox, oy float64
	if domain.AxisOrderFromDefinition(dstDef) == domain.Geographic {
		ox, oy = proj.RadToDeg(lon), proj.RadToDeg(lat)
	} else {
		dst, err := e.pj(dstDef)
		if err != nil {
			return 0, 0, err
		}
		if ox, oy, _, _, err = dst.Trans(proj.Fwd, lon, lat, 0, 0); err != nil {
			return 0, 0, fmt.Errorf("forward %s: %w", dstDef, err)
		}
	}
	if math.IsNaN(ox) || math.IsNaN(oy) || math.IsInf(ox, 0) || math.IsInf(oy, 0) {
		return 0, 0, fmt.Errorf("projection of (%v, %v) is not finite", x, y)
	}
	return ox, oy, nil
}
