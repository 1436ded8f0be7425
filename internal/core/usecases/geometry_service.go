package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
)

// GeometryOutput is a classified, possibly reprojected geometry rendered back
// to notation text.
type GeometryOutput struct {
	Kind      domain.GeometryKind `json:"kind"`
	WKT       string              `json:"wkt"`
	Points    int                 `json:"points"`
	SourceCRS string              `json:"source_crs,omitempty"`
	TargetCRS string              `json:"target_crs,omitempty"`
}

// GeometryService orchestrates parse, classify, transform and serialize for
// the outer surfaces (HTTP, GraphQL, WebSocket, jobs).
type GeometryService struct {
	classifier *Classifier
	parser     ports.NotationParser
	engine     ports.GeometryEngine
	cache      ports.CacheService
	events     ports.EventPublisher
	cacheTTL   int
	tracer     trace.Tracer
}

// NewGeometryService creates a GeometryService. cache and events may be nil.
func NewGeometryService(
	classifier *Classifier,
	parser ports.NotationParser,
	engine ports.GeometryEngine,
	cache ports.CacheService,
	events ports.EventPublisher,
	cacheTTL int,
) *GeometryService {
	if cacheTTL <= 0 {
		cacheTTL = 3600
	}
	return &GeometryService{
		classifier: classifier,
		parser:     parser,
		engine:     engine,
		cache:      cache,
		events:     events,
		cacheTTL:   cacheTTL,
		tracer:     otel.Tracer("github.com/samirrijal/reproj/usecases"),
	}
}

func (s *GeometryService) points() *PointTransformer { return s.classifier.geoms.points }

// Registry returns the registry conversions resolve against.
func (s *GeometryService) Registry() *Registry { return s.points().Registry() }

// DefaultTarget is the CRS used when a source is given without a target.
func (s *GeometryService) DefaultTarget() string { return s.classifier.DefaultTarget() }

// LookupCRS returns the registry entry for id.
func (s *GeometryService) LookupCRS(id string) (domain.CRSEntry, error) {
	return s.Registry().Lookup(id)
}

func (s *GeometryService) label(id string) string {
	if id == "" || !s.Registry().IsKnown(id) {
		return "unknown"
	}
	return id
}

func (s *GeometryService) finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Parse classifies text and, when src is set, reprojects it to dst (or the
// default target). Without src nothing is transformed and dst is dropped,
// so the output never names a CRS that was not applied. Results are cached
// by CRS pair and input text.
func (s *GeometryService) Parse(ctx context.Context, text, src, dst string) (out *GeometryOutput, err error) {
	switch {
	case src == "":
		dst = ""
	case dst == "":
		dst = s.classifier.DefaultTarget()
	}
	ctx, span := s.tracer.Start(ctx, "GeometryService.Parse", trace.WithAttributes(
		telemetry.AttrSourceCRS.String(src),
		telemetry.AttrTargetCRS.String(dst),
	))
	start := time.Now()
	defer func() {
		s.finishSpan(span, err)
		if src != "" {
			n := 0
			if out != nil {
				n = out.Points
			}
			metrics.ObserveConversion("geometry", s.label(src), s.label(dst), n, time.Since(start), err)
		}
	}()

	cacheKey := geometryCacheKey(text, src, dst)
	if s.cache != nil {
		if data, cerr := s.cache.Get(ctx, cacheKey); cerr == nil {
			var cached GeometryOutput
			if json.Unmarshal(data, &cached) == nil {
				metrics.CacheHits.WithLabelValues("geometry").Inc()
				return &cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geometry").Inc()
	}

	g, err := s.classifier.Parse(text, src, dst).Value()
	if err != nil {
		return nil, err
	}
	wkt, err := s.parser.Serialize(g)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", g.Kind(), err)
	}
	out = &GeometryOutput{
		Kind:      g.Kind(),
		WKT:       wkt,
		Points:    domain.NumPoints(g),
		SourceCRS: src,
		TargetCRS: dst,
	}
	span.SetAttributes(telemetry.AttrGeometryKind.String(string(out.Kind)), telemetry.AttrPoints.Int(out.Points))

	if s.cache != nil {
		if data, merr := json.Marshal(out); merr == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	if src != "" {
		s.publish(ctx, out, time.Since(start))
	}
	return out, nil
}

// TransformWKT is Parse with a mandatory source CRS.
func (s *GeometryService) TransformWKT(ctx context.Context, text, src, dst string) (*GeometryOutput, error) {
	if src == "" {
		return nil, &domain.Error{Kind: domain.KindUnknownCRS, Msg: "source CRS is required"}
	}
	return s.Parse(ctx, text, src, dst)
}

// ConvertPoint converts one external position.
func (s *GeometryService) ConvertPoint(ctx context.Context, pos domain.Position, src, dst string) (domain.Position, error) {
	out, err := s.ConvertPoints(ctx, []domain.Position{pos}, src, dst)
	if err != nil {
		return domain.Position{}, err
	}
	return out[0], nil
}

// ConvertPoints converts positions in order. One failure fails the batch.
func (s *GeometryService) ConvertPoints(ctx context.Context, positions []domain.Position, src, dst string) (out []domain.Position, err error) {
	if dst == "" {
		dst = s.classifier.DefaultTarget()
	}
	_, span := s.tracer.Start(ctx, "GeometryService.ConvertPoints", trace.WithAttributes(
		telemetry.AttrSourceCRS.String(src),
		telemetry.AttrTargetCRS.String(dst),
		telemetry.AttrPoints.Int(len(positions)),
	))
	start := time.Now()
	defer func() {
		s.finishSpan(span, err)
		metrics.ObserveConversion("points", s.label(src), s.label(dst), len(out), time.Since(start), err)
	}()

	pt := s.points()
	res := make([]domain.Position, len(positions))
	for i, p := range positions {
		np, cerr := pt.ConvertPosition(p, src, dst)
		if cerr != nil {
			return nil, fmt.Errorf("position %d: %w", i, cerr)
		}
		res[i] = np
	}
	return res, nil
}

// Apply runs a Geometry Engine operation on notation text. The input is
// classified first so malformed geometry never reaches the engine.
func (s *GeometryService) Apply(ctx context.Context, op, text string, params map[string]string) (result string, err error) {
	_, span := s.tracer.Start(ctx, "GeometryService.Apply", trace.WithAttributes(telemetry.AttrOperation.String(op)))
	defer func() { s.finishSpan(span, err) }()

	if s.engine == nil {
		return "", domain.ErrUnsupportedOperation(op)
	}
	if _, err := s.classifier.Parse(text, "", "").Value(); err != nil {
		return "", err
	}
	return s.engine.Apply(op, text, params)
}

// Operations lists the Geometry Engine operations available.
func (s *GeometryService) Operations() []string {
	if s.engine == nil {
		return nil
	}
	return s.engine.Operations()
}

func (s *GeometryService) publish(ctx context.Context, out *GeometryOutput, d time.Duration) {
	if s.events == nil {
		return
	}
	ev := &domain.ConversionEvent{
		SourceCRS: out.SourceCRS,
		TargetCRS: out.TargetCRS,
		Kind:      string(out.Kind),
		Points:    out.Points,
		Status:    "ok",
		Duration:  d,
		At:        time.Now().UTC(),
	}
	if err := s.events.PublishConversion(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish conversion event", "error", err)
	}
}

func geometryCacheKey(text, src, dst string) string {
	h := sha256.Sum256([]byte(src + "|" + dst + "|" + text))
	return "geom:" + hex.EncodeToString(h[:])
}
