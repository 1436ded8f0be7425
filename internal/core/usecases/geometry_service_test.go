package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

// --- Mock GeometryEngine ---

type mockGeometryEngine struct {
	applyFn func(op, text string, params map[string]string) (string, error)
}

func (m *mockGeometryEngine) Apply(op, text string, params map[string]string) (string, error) {
	if m.applyFn != nil {
		return m.applyFn(op, text, params)
	}
	return "", domain.ErrUnsupportedOperation(op)
}

func (m *mockGeometryEngine) Operations() []string { return []string{"area"} }

func newGeometryService(parser *mockParser, engine *mockEngine, cache ports.CacheService, pub ports.EventPublisher) *usecases.GeometryService {
	_, gt := newTransformers(engine)
	c := usecases.NewClassifier(parser, gt, "")
	geng := &mockGeometryEngine{applyFn: func(op, text string, _ map[string]string) (string, error) {
		if op == "area" {
			return "100", nil
		}
		return "", domain.ErrUnsupportedOperation(op)
	}}
	return usecases.NewGeometryService(c, parser, geng, cache, pub, 60)
}

func TestGeometryService_ParseCaches(t *testing.T) {
	calls := 0
	parser := &mockParser{parseFn: func(string) (domain.RawGeometry, error) {
		calls++
		return domain.RawGeometry{Kind: "LINESTRING", Paths: [][]domain.Coordinate{coords(28, 41, 29, 41)}}, nil
	}}
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := newGeometryService(parser, &mockEngine{transformFn: sphericalMercator}, cache, pub)

	ctx := context.Background()
	first, err := svc.TransformWKT(ctx, "LINESTRING(28 41, 29 41)", "EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Kind != domain.LineStringKind || first.Points != 2 || first.WKT != "LINESTRING(2)" {
		t.Errorf("unexpected output %+v", first)
	}
	second, err := svc.TransformWKT(ctx, "LINESTRING(28 41, 29 41)", "EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatal(err)
	}
	if *second != *first {
		t.Errorf("cached output differs: %+v vs %+v", second, first)
	}
	if calls != 1 {
		t.Errorf("second call should hit the cache, parser ran %d times", calls)
	}
	if len(pub.conversions) != 1 || pub.conversions[0].Points != 2 {
		t.Errorf("expected one conversion event, got %+v", pub.conversions)
	}
}

func TestGeometryService_TransformRequiresSource(t *testing.T) {
	svc := newGeometryService(&mockParser{}, &mockEngine{}, nil, nil)
	_, err := svc.TransformWKT(context.Background(), "POINT(1 1)", "", "EPSG:4326")
	if !domain.IsKind(err, domain.KindUnknownCRS) {
		t.Fatalf("expected unknown CRS, got %v", err)
	}
}

func TestGeometryService_ConvertPointsAtomic(t *testing.T) {
	engine := &mockEngine{transformFn: func(_, _ string, x, y float64) (float64, float64, error) {
		if y > 85 {
			return 0, 0, errors.New("latitude out of mercator range")
		}
		return sphericalMercator("longlat", "merc", x, y)
	}}
	svc := newGeometryService(&mockParser{}, engine, nil, nil)

	_, err := svc.ConvertPoints(context.Background(), []domain.Position{
		domain.LatLon(41, 29), domain.LatLon(89.9, 0), domain.LatLon(10, 10),
	}, "EPSG:4326", "EPSG:3857")
	if !domain.IsKind(err, domain.KindProjectionFailure) {
		t.Fatalf("expected projection failure, got %v", err)
	}

	out, err := svc.ConvertPoints(context.Background(), []domain.Position{domain.LatLon(41, 29), domain.LatLon(10, 10)}, "EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Y < out[1].Y {
		t.Errorf("order not preserved: %+v", out)
	}
}

func TestGeometryService_ConvertPointDefaultTarget(t *testing.T) {
	svc := newGeometryService(&mockParser{}, &mockEngine{transformFn: sphericalMercator}, nil, nil)
	out, err := svc.ConvertPoint(context.Background(), domain.EastNorth(3225860, 5012000), "EPSG:3857", "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Axis != domain.Geographic || out.Lat < 40 || out.Lat > 42 {
		t.Errorf("unexpected result %+v", out)
	}
}

func TestGeometryService_Apply(t *testing.T) {
	parser := rawReturning(domain.RawGeometry{Kind: "POLYGON", Paths: [][]domain.Coordinate{coords(0, 0, 10, 0, 10, 10, 0, 0)}})
	svc := newGeometryService(parser, &mockEngine{}, nil, nil)

	got, err := svc.Apply(context.Background(), "area", "POLYGON((0 0,10 0,10 10,0 0))", nil)
	if err != nil || got != "100" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := svc.Apply(context.Background(), "buffer", "POLYGON((0 0,10 0,10 10,0 0))", nil); !domain.IsKind(err, domain.KindUnsupportedOperation) {
		t.Errorf("expected unsupported operation, got %v", err)
	}

	bad := newGeometryService(rawReturning(domain.RawGeometry{Kind: "POLYGON", Paths: [][]domain.Coordinate{coords(0, 0, 1, 0, 0, 1)}}), &mockEngine{}, nil, nil)
	if _, err := bad.Apply(context.Background(), "area", "POLYGON((0 0,1 0,0 1))", nil); !domain.IsKind(err, domain.KindMalformedGeometry) {
		t.Errorf("malformed input must not reach the engine, got %v", err)
	}
}

func TestGeometryService_ParseWithoutSourceDropsTarget(t *testing.T) {
	engine := &mockEngine{transformFn: sphericalMercator}
	svc := newGeometryService(rawReturning(domain.RawGeometry{Kind: "POINT", Paths: [][]domain.Coordinate{coords(28.9784, 41.0082)}}), engine, nil, nil)

	out, err := svc.Parse(context.Background(), "POINT(28.9784 41.0082)", "", "EPSG:3857")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SourceCRS != "" || out.TargetCRS != "" {
		t.Errorf("expected no CRS labels on an untransformed geometry, got %+v", out)
	}
	if engine.Calls() != 0 {
		t.Errorf("expected no engine calls, got %d", engine.Calls())
	}
}
