package usecases_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/reproj/internal/core/domain"
)

func mustPolygon(t *testing.T, rings ...[]domain.Coordinate) domain.Polygon {
	t.Helper()
	p, err := domain.NewPolygon(rings[0], rings[1:]...)
	if err != nil {
		t.Fatalf("polygon: %v", err)
	}
	return p
}

// shape summarises the structure of a geometry: tag plus point count of
// every leaf path, recursively.
func shape(g domain.Geometry) []any {
	switch v := g.(type) {
	case domain.Point:
		return []any{v.Kind()}
	case domain.LineString:
		return []any{v.Kind(), len(v.Coords)}
	case domain.Polygon:
		out := []any{v.Kind()}
		for _, r := range v.Rings() {
			out = append(out, len(r))
		}
		return out
	case domain.MultiPoint:
		return []any{v.Kind(), len(v.Points)}
	case domain.MultiLineString:
		out := []any{v.Kind()}
		for _, l := range v.Lines {
			out = append(out, shape(l))
		}
		return out
	case domain.MultiPolygon:
		out := []any{v.Kind()}
		for _, p := range v.Polygons {
			out = append(out, shape(p))
		}
		return out
	case domain.GeometryCollection:
		out := []any{v.Kind()}
		for _, m := range v.Geometries {
			out = append(out, shape(m))
		}
		return out
	}
	return nil
}

func sameShape(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		as, aok := a[i].([]any)
		bs, bok := b[i].([]any)
		if aok != bok {
			return false
		}
		if aok {
			if !sameShape(as, bs) {
				return false
			}
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleGeometries(t *testing.T) map[string]domain.Geometry {
	outer := coords(0, 0, 10, 0, 10, 10, 0, 10, 0, 0)
	hole := coords(2, 2, 4, 2, 4, 4, 2, 2)
	poly := mustPolygon(t, outer, hole)
	line := domain.LineString{Coords: coords(1, 1, 2, 2, 3, 5)}
	pt := domain.Point{Coord: domain.Coordinate{X: 28.9784, Y: 41.0082}}

	return map[string]domain.Geometry{
		"point":           pt,
		"linestring":      line,
		"polygon":         poly,
		"multipoint":      domain.MultiPoint{Points: []domain.Point{pt, pt}},
		"multilinestring": domain.MultiLineString{Lines: []domain.LineString{line, {Coords: coords(5, 5, 6, 6)}}},
		"multipolygon":    domain.MultiPolygon{Polygons: []domain.Polygon{poly, mustPolygon(t, outer)}},
		"nested collection": domain.GeometryCollection{Geometries: []domain.Geometry{
			pt,
			domain.GeometryCollection{Geometries: []domain.Geometry{
				line,
				domain.GeometryCollection{Geometries: []domain.Geometry{poly}},
			}},
			domain.GeometryCollection{},
		}},
		"empty collection": domain.GeometryCollection{},
	}
}

func TestGeometryTransformer_PreservesStructure(t *testing.T) {
	engine := &mockEngine{transformFn: func(_, _ string, x, y float64) (float64, float64, error) {
		return x*1000 + 1, y*1000 - 1, nil
	}}
	_, gt := newTransformers(engine)

	for name, g := range sampleGeometries(t) {
		t.Run(name, func(t *testing.T) {
			before := domain.NumPoints(g)
			out, err := gt.Transform(g, "EPSG:4326", "EPSG:3857")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Kind() != g.Kind() {
				t.Fatalf("tag changed from %s to %s", g.Kind(), out.Kind())
			}
			if !sameShape(shape(g), shape(out)) {
				t.Errorf("structure changed: %v -> %v", shape(g), shape(out))
			}
			if domain.NumPoints(out) != before {
				t.Errorf("point count changed")
			}
			if before > 0 && domain.Equal(g, out) {
				t.Error("coordinates were not transformed")
			}
		})
	}
}

func TestGeometryTransformer_DoesNotMutateInput(t *testing.T) {
	engine := &mockEngine{transformFn: func(_, _ string, x, y float64) (float64, float64, error) {
		return -x, -y, nil
	}}
	_, gt := newTransformers(engine)

	line := domain.LineString{Coords: coords(1, 1, 2, 2)}
	if _, err := gt.Transform(line, "EPSG:4326", "EPSG:3857"); err != nil {
		t.Fatal(err)
	}
	if line.Coords[0].X != 1 {
		t.Error("input geometry was modified")
	}
}

func TestGeometryTransformer_ReclosesRings(t *testing.T) {
	// Drift grows with every call, so the closing position would differ
	// from the first one without re-closing.
	drift := 0.0
	engine := &mockEngine{transformFn: func(_, _ string, x, y float64) (float64, float64, error) {
		drift += 1e-9
		return x + drift, y + drift, nil
	}}
	_, gt := newTransformers(engine)

	poly := mustPolygon(t, coords(0, 0, 10, 0, 10, 10, 0, 10, 0, 0), coords(2, 2, 4, 2, 4, 4, 2, 2))
	out, err := gt.Transform(domain.MultiPolygon{Polygons: []domain.Polygon{poly}}, "EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatal(err)
	}
	for i, ring := range out.(domain.MultiPolygon).Polygons[0].Rings() {
		if ring[0] != ring[len(ring)-1] {
			t.Errorf("ring %d is no longer closed: %v vs %v", i, ring[0], ring[len(ring)-1])
		}
	}
}

func TestGeometryTransformer_FailureInNestedMember(t *testing.T) {
	engine := &mockEngine{transformFn: func(_, _ string, x, y float64) (float64, float64, error) {
		if x == 6 {
			return 0, 0, errors.New("outside projection domain")
		}
		return x, y, nil
	}}
	_, gt := newTransformers(engine)

	gc := domain.GeometryCollection{Geometries: []domain.Geometry{
		domain.Point{Coord: domain.Coordinate{X: 1, Y: 1}},
		domain.GeometryCollection{Geometries: []domain.Geometry{
			domain.LineString{Coords: coords(5, 5, 6, 6)},
		}},
	}}
	out, err := gt.Transform(gc, "EPSG:4326", "EPSG:3857")
	if !domain.IsKind(err, domain.KindProjectionFailure) {
		t.Fatalf("expected projection failure, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no geometry on failure, got %v", out)
	}
}

func TestGeometryTransformer_UnknownCRS(t *testing.T) {
	engine := &mockEngine{}
	_, gt := newTransformers(engine)

	_, err := gt.Transform(domain.Point{}, "NOT:REAL", "EPSG:4326")
	if !domain.IsKind(err, domain.KindUnknownCRS) {
		t.Fatalf("expected unknown CRS, got %v", err)
	}
	if engine.Calls() != 0 {
		t.Error("engine must not run")
	}
}

func TestGeometryTransformer_IdentityCopies(t *testing.T) {
	engine := &mockEngine{}
	_, gt := newTransformers(engine)

	poly := mustPolygon(t, coords(0, 0, 1, 0, 1, 1, 0, 0))
	out, err := gt.Transform(poly, "EPSG:3857", "EPSG:3857")
	if err != nil {
		t.Fatal(err)
	}
	if !domain.Equal(out, poly) {
		t.Error("identity transform must return an equal geometry")
	}
	out.(domain.Polygon).Exterior[1].X = 42
	if poly.Exterior[1].X != 1 {
		t.Error("identity transform must not share storage")
	}
	if engine.Calls() != 0 {
		t.Error("identity transform must not call the engine")
	}
}
