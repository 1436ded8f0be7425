package usecases

import (
	"fmt"
	"log/slog"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
)

// PointTransformer converts coordinates between registered CRSs.
type PointTransformer struct {
	registry *Registry
	axes     *AxisResolver
	engine   ports.ProjectionEngine
}

// NewPointTransformer creates a PointTransformer.
func NewPointTransformer(reg *Registry, engine ports.ProjectionEngine, logger *slog.Logger) *PointTransformer {
	return &PointTransformer{
		registry: reg,
		axes:     NewAxisResolver(reg, logger),
		engine:   engine,
	}
}

func (t *PointTransformer) Registry() *Registry            { return t.registry }
func (t *PointTransformer) Axes() *AxisResolver            { return t.axes }
func (t *PointTransformer) Engine() ports.ProjectionEngine { return t.engine }

// pair holds the resolved definitions of one conversion.
type pair struct {
	src, dst       string
	srcDef, dstDef string
	identity       bool
}

func (t *PointTransformer) resolve(src, dst string) (pair, error) {
	if src == dst {
		return pair{src: src, dst: dst, identity: true}, nil
	}
	srcEntry, srcErr := t.registry.Lookup(src)
	dstEntry, dstErr := t.registry.Lookup(dst)
	switch {
	case srcErr != nil && dstErr != nil:
		return pair{}, domain.ErrUnknownCRS(src, dst)
	case srcErr != nil:
		return pair{}, srcErr
	case dstErr != nil:
		return pair{}, dstErr
	}
	return pair{src: src, dst: dst, srcDef: srcEntry.Definition, dstDef: dstEntry.Definition}, nil
}

func (t *PointTransformer) apply(p pair, c domain.Coordinate) (domain.Coordinate, error) {
	if p.identity {
		return c, nil
	}
	x, y, err := t.engine.Transform(p.srcDef, p.dstDef, c.X, c.Y)
	if err != nil {
		return domain.Coordinate{}, domain.ErrProjection(p.src, p.dst, err)
	}
	out := domain.Coordinate{X: x, Y: y}
	if !out.IsFinite() {
		return domain.Coordinate{}, domain.ErrProjection(p.src, p.dst,
			fmt.Errorf("non-finite result for (%v, %v)", c.X, c.Y))
	}
	return out, nil
}

// Convert moves one internal coordinate from src to dst. Identical
// identifiers return c unchanged without touching the registry.
func (t *PointTransformer) Convert(c domain.Coordinate, src, dst string) (domain.Coordinate, error) {
	p, err := t.resolve(src, dst)
	if err != nil {
		return domain.Coordinate{}, err
	}
	return t.apply(p, c)
}

// ConvertPosition converts an external lat/lon or x/y position. The source
// axis order decides which fields are read, the target's which are written.
func (t *PointTransformer) ConvertPosition(pos domain.Position, src, dst string) (domain.Position, error) {
	if src == dst {
		return pos, nil
	}
	p, err := t.resolve(src, dst)
	if err != nil {
		return domain.Position{}, err
	}
	in, err := t.axes.Classify(src).ToCoordinate(pos)
	if err != nil {
		return domain.Position{}, err
	}
	out, err := t.apply(p, in)
	if err != nil {
		return domain.Position{}, err
	}
	return t.axes.Classify(dst).ToPosition(out), nil
}

// ConvertAll converts coords in order. Any failure fails the whole batch and
// no partial result is returned. Identical identifiers return a copy.
func (t *PointTransformer) ConvertAll(coords []domain.Coordinate, src, dst string) ([]domain.Coordinate, error) {
	p, err := t.resolve(src, dst)
	if err != nil {
		return nil, err
	}
	return t.applyAll(p, coords)
}

func (t *PointTransformer) applyAll(p pair, coords []domain.Coordinate) ([]domain.Coordinate, error) {
	if coords == nil {
		return nil, nil
	}
	out := make([]domain.Coordinate, len(coords))
	if p.identity {
		copy(out, coords)
		return out, nil
	}
	for i, c := range coords {
		nc, err := t.apply(p, c)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = nc
	}
	return out, nil
}
