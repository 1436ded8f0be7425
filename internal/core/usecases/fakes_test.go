package usecases_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

const earthRadius = 6378137.0

// --- Mock ProjectionEngine ---

type mockEngine struct {
	mu          sync.Mutex
	calls       int
	transformFn func(srcDef, dstDef string, x, y float64) (float64, float64, error)
}

func (m *mockEngine) Transform(srcDef, dstDef string, x, y float64) (float64, float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.transformFn != nil {
		return m.transformFn(srcDef, dstDef, x, y)
	}
	return x, y, nil
}

func (m *mockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// sphericalMercator implements the EPSG:4326 <-> EPSG:3857 pair well enough
// to exercise axis handling with realistic magnitudes.
func sphericalMercator(srcDef, dstDef string, x, y float64) (float64, float64, error) {
	switch {
	case strings.Contains(srcDef, "longlat") && strings.Contains(dstDef, "merc"):
		return earthRadius * x * math.Pi / 180,
			earthRadius * math.Log(math.Tan(math.Pi/4+y*math.Pi/360)), nil
	case strings.Contains(srcDef, "merc") && strings.Contains(dstDef, "longlat"):
		return x / earthRadius * 180 / math.Pi,
			(2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi, nil
	}
	return x, y, nil
}

// --- Mock NotationParser ---

type mockParser struct {
	parseFn func(text string) (domain.RawGeometry, error)
}

func (m *mockParser) Parse(text string) (domain.RawGeometry, error) {
	if m.parseFn != nil {
		return m.parseFn(text)
	}
	return domain.RawGeometry{}, fmt.Errorf("no parse function")
}

func (m *mockParser) Serialize(g domain.Geometry) (string, error) {
	return fmt.Sprintf("%s(%d)", strings.ToUpper(string(g.Kind())), domain.NumPoints(g)), nil
}

func rawReturning(raw domain.RawGeometry) *mockParser {
	return &mockParser{parseFn: func(string) (domain.RawGeometry, error) { return raw, nil }}
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu          sync.Mutex
	jobs        []*domain.ReprojectionJob
	results     []*domain.ReprojectionResult
	conversions []*domain.ConversionEvent
	resultErr   error
}

func (m *mockPublisher) PublishJob(ctx context.Context, job *domain.ReprojectionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockPublisher) PublishJobResult(ctx context.Context, res *domain.ReprojectionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return m.resultErr
}

func (m *mockPublisher) PublishConversion(ctx context.Context, ev *domain.ConversionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions = append(m.conversions, ev)
	return nil
}

// --- helpers ---

func newTransformers(engine *mockEngine) (*usecases.PointTransformer, *usecases.GeometryTransformer) {
	pt := usecases.NewPointTransformer(usecases.BuiltinRegistry(), engine, nil)
	return pt, usecases.NewGeometryTransformer(pt)
}

func coords(pairs ...float64) []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Coordinate{X: pairs[i], Y: pairs[i+1]})
	}
	return out
}
