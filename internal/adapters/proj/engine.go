package proj

import (
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/geom/proj"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of parsed definition pairs kept in memory.
const DefaultCacheSize = 256

// Engine implements ports.ProjectionEngine in pure Go on top of
// github.com/ctessum/geom/proj. Parsed spatial references are cached per
// (source, target) definition pair.
type Engine struct {
	pairs *lru.Cache
}

// srPair guards one parsed pair. proj.SR values are mutated while deriving
// transformers, so a pair is only ever used by one goroutine at a time.
type srPair struct {
	mu       sync.Mutex
	src, dst *proj.SR
}

// New creates an Engine caching up to cacheSize definition pairs.
func New(cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("proj cache: %w", err)
	}
	return &Engine{pairs: c}, nil
}

// Validate reports whether def can be parsed by this engine.
func (e *Engine) Validate(def string) error {
	_, err := proj.Parse(def)
	return err
}

func (e *Engine) pair(srcDef, dstDef string) (*srPair, error) {
	key := srcDef + "\x00" + dstDef
	if v, ok := e.pairs.Get(key); ok {
		return v.(*srPair), nil
	}
	src, err := proj.Parse(srcDef)
	if err != nil {
		return nil, fmt.Errorf("parse source definition: %w", err)
	}
	dst, err := proj.Parse(dstDef)
	if err != nil {
		return nil, fmt.Errorf("parse target definition: %w", err)
	}
	p := &srPair{src: src, dst: dst}
	e.pairs.Add(key, p)
	return p, nil
}

// Transform moves (x, y) from srcDef to dstDef. Geographic definitions take
// and return degrees.
func (e *Engine) Transform(srcDef, dstDef string, x, y float64) (float64, float64, error) {
	p, err := e.pair(srcDef, dstDef)
	if err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The returned transformer rebinds its source during datum shifts, so a
	// fresh one is built for every call.
	t, err := p.src.NewTransform(p.dst)
	if err != nil {
		return 0, 0, err
	}
	ox, oy, err := t(x, y)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(ox) || math.IsNaN(oy) || math.IsInf(ox, 0) || math.IsInf(oy, 0) {
		return 0, 0, fmt.Errorf("projection of (%v, %v) is not finite", x, y)
	}
	return ox, oy, nil
}

// Len is the number of cached definition pairs.
func (e *Engine) Len() int { return e.pairs.Len() }
