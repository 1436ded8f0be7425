package proj_test

import (
	"math"
	"sync"
	"testing"

	projengine "github.com/samirrijal/reproj/internal/adapters/proj"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

func newTransformer(t *testing.T) *usecases.PointTransformer {
	t.Helper()
	engine, err := projengine.New(16)
	if err != nil {
		t.Fatal(err)
	}
	return usecases.NewPointTransformer(usecases.BuiltinRegistry(), engine, nil)
}

func TestEngine_IstanbulToWebMercator(t *testing.T) {
	pt := newTransformer(t)

	out, err := pt.ConvertPosition(domain.LatLon(41.0082, 28.9784), "EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(out.X) <= 1e6 || math.Abs(out.Y) <= 1e6 {
		t.Errorf("expected both axes above 1e6, got x=%f y=%f", out.X, out.Y)
	}
	if math.Abs(out.X-3225860) > 100 {
		t.Errorf("easting %f too far from 3225860", out.X)
	}
}

func TestEngine_RoundTrips(t *testing.T) {
	pt := newTransformer(t)

	tests := []struct {
		crs      string
		lat, lon float64
	}{
		{"EPSG:3857", 41.0082, 28.9784},
		{"EPSG:3395", 41.0082, 28.9784},
		{"EPSG:32635", 41.0082, 28.9784},
		{"EPSG:5254", 41.0082, 28.9784},
		{"EPSG:32735", -33.9249, 18.4241},
		{"EPSG:27700", 51.5007, -0.1246},
		{"EPSG:2154", 48.8584, 2.2945},
		{"EPSG:5070", 39.0997, -94.5786},
		{"EPSG:25832", 50.1109, 8.6821},
		{"EPSG:31467", 48.7758, 9.1829},
		{"EPSG:5179", 37.5665, 126.9780},
		{"EPSG:4258", 52.52, 13.405},
	}
	for _, tt := range tests {
		t.Run(tt.crs, func(t *testing.T) {
			fwd, err := pt.ConvertPosition(domain.LatLon(tt.lat, tt.lon), "EPSG:4326", tt.crs)
			if err != nil {
				t.Fatalf("forward: %v", err)
			}
			back, err := pt.ConvertPosition(fwd, tt.crs, "EPSG:4326")
			if err != nil {
				t.Fatalf("inverse: %v", err)
			}
			if math.Abs(back.Lat-tt.lat) > 1e-6 || math.Abs(back.Lon-tt.lon) > 1e-6 {
				t.Errorf("round trip drifted: (%f, %f) -> %+v -> (%f, %f)", tt.lat, tt.lon, fwd, back.Lat, back.Lon)
			}
		})
	}
}

func TestEngine_UTMZoneRanges(t *testing.T) {
	pt := newTransformer(t)

	out, err := pt.ConvertPosition(domain.LatLon(41.0082, 28.9784), "EPSG:4326", "EPSG:32635")
	if err != nil {
		t.Fatal(err)
	}
	if out.X < 600000 || out.X > 700000 || out.Y < 4500000 || out.Y > 4600000 {
		t.Errorf("unexpected UTM 35N coordinates %+v", out)
	}
}

func TestEngine_BadDefinition(t *testing.T) {
	engine, _ := projengine.New(4)
	if _, _, err := engine.Transform("+proj=longlat +datum=WGS84", "+proj=nonsense +bogus=1", 1, 1); err == nil {
		t.Fatal("expected error for unknown projection")
	}
	if err := engine.Validate("+proj=merc +wktext"); err == nil {
		t.Error("expected validation error for unsupported key")
	}
	if err := engine.Validate("+proj=longlat +datum=WGS84 +no_defs"); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	engine, err := projengine.New(4)
	if err != nil {
		t.Fatal(err)
	}
	reg := usecases.BuiltinRegistry()
	src, _ := reg.Definition("EPSG:4326")
	dst, _ := reg.Definition("EPSG:27700")

	want, _, err := engine.Transform(src, dst, -0.1246, 51.5007)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			x, _, err := engine.Transform(src, dst, -0.1246, 51.5007)
			if err != nil {
				errs <- err
				return
			}
			if math.Abs(x-want) > 1e-9 {
				t.Errorf("concurrent result %f differs from %f", x, want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if engine.Len() != 1 {
		t.Errorf("expected one cached pair, got %d", engine.Len())
	}
}
