package usecases

import (
	"fmt"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// GeometryTransformer reprojects every coordinate of a geometry while
// keeping its tag, ring count, member count and per-ring point count.
type GeometryTransformer struct {
	points *PointTransformer
}

// NewGeometryTransformer creates a GeometryTransformer.
func NewGeometryTransformer(points *PointTransformer) *GeometryTransformer {
	return &GeometryTransformer{points: points}
}

// Points exposes the underlying point transformer.
func (t *GeometryTransformer) Points() *PointTransformer { return t.points }

// Transform returns a new geometry with every coordinate moved from src to
// dst. CRS identifiers are resolved once per call, not per coordinate.
func (t *GeometryTransformer) Transform(g domain.Geometry, src, dst string) (domain.Geometry, error) {
	p, err := t.points.resolve(src, dst)
	if err != nil {
		return nil, err
	}
	return domain.Visit[domain.Geometry](g, &transformPass{t: t.points, pair: p})
}

// transformPass is a domain.Visitor bound to one resolved CRS pair.
type transformPass struct {
	t    *PointTransformer
	pair pair
}

func (v *transformPass) ring(in []domain.Coordinate) ([]domain.Coordinate, error) {
	out, err := v.t.applyAll(v.pair, in)
	if err != nil {
		return nil, err
	}
	// Numeric drift must not open a ring that was closed on input.
	if domain.IsClosed(in) && len(out) > 1 {
		out[len(out)-1] = out[0]
	}
	return out, nil
}

func (v *transformPass) polygon(p domain.Polygon) (domain.Polygon, error) {
	ext, err := v.ring(p.Exterior)
	if err != nil {
		return domain.Polygon{}, fmt.Errorf("exterior ring: %w", err)
	}
	out := domain.Polygon{Exterior: ext}
	if p.Holes != nil {
		out.Holes = make([][]domain.Coordinate, len(p.Holes))
		for i, h := range p.Holes {
			if out.Holes[i], err = v.ring(h); err != nil {
				return domain.Polygon{}, fmt.Errorf("interior ring %d: %w", i, err)
			}
		}
	}
	return out, nil
}

func (v *transformPass) point(p domain.Point) (domain.Point, error) {
	c, err := v.t.apply(v.pair, p.Coord)
	if err != nil {
		return domain.Point{}, err
	}
	return domain.Point{Coord: c}, nil
}

func (v *transformPass) lineString(l domain.LineString) (domain.LineString, error) {
	coords, err := v.t.applyAll(v.pair, l.Coords)
	if err != nil {
		return domain.LineString{}, err
	}
	return domain.LineString{Coords: coords}, nil
}

func (v *transformPass) VisitPoint(p domain.Point) (domain.Geometry, error) {
	return v.point(p)
}

func (v *transformPass) VisitLineString(l domain.LineString) (domain.Geometry, error) {
	return v.lineString(l)
}

func (v *transformPass) VisitPolygon(p domain.Polygon) (domain.Geometry, error) {
	return v.polygon(p)
}

func (v *transformPass) VisitMultiPoint(mp domain.MultiPoint) (domain.Geometry, error) {
	out := domain.MultiPoint{Points: make([]domain.Point, len(mp.Points))}
	for i, p := range mp.Points {
		np, err := v.point(p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out.Points[i] = np
	}
	return out, nil
}

func (v *transformPass) VisitMultiLineString(ml domain.MultiLineString) (domain.Geometry, error) {
	out := domain.MultiLineString{Lines: make([]domain.LineString, len(ml.Lines))}
	for i, l := range ml.Lines {
		nl, err := v.lineString(l)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out.Lines[i] = nl
	}
	return out, nil
}

func (v *transformPass) VisitMultiPolygon(mp domain.MultiPolygon) (domain.Geometry, error) {
	out := domain.MultiPolygon{Polygons: make([]domain.Polygon, len(mp.Polygons))}
	for i, p := range mp.Polygons {
		np, err := v.polygon(p)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		out.Polygons[i] = np
	}
	return out, nil
}

func (v *transformPass) VisitGeometryCollection(gc domain.GeometryCollection) (domain.Geometry, error) {
	out := domain.GeometryCollection{Geometries: make([]domain.Geometry, len(gc.Geometries))}
	for i, g := range gc.Geometries {
		ng, err := domain.Visit[domain.Geometry](g, v)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		out.Geometries[i] = ng
	}
	return out, nil
}
