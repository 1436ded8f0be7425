package usecases

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
)

// Classifier turns notation text into a typed geometry, optionally
// reprojecting it on the way.
type Classifier struct {
	parser        ports.NotationParser
	geoms         *GeometryTransformer
	defaultTarget string
}

// NewClassifier creates a Classifier. An empty defaultTarget means
// domain.DefaultTargetCRS (EPSG:4326).
func NewClassifier(parser ports.NotationParser, geoms *GeometryTransformer, defaultTarget string) *Classifier {
	if defaultTarget == "" {
		defaultTarget = domain.DefaultTargetCRS
	}
	return &Classifier{parser: parser, geoms: geoms, defaultTarget: defaultTarget}
}

// DefaultTarget is the CRS used when Parse gets a source but no target.
func (c *Classifier) DefaultTarget() string { return c.defaultTarget }

// Parse parses text and classifies it. When src is non-empty the geometry is
// transformed to dst, or to DefaultTarget when dst is empty. A dst without a
// src is ignored: there is nothing to transform from.
func (c *Classifier) Parse(text, src, dst string) domain.Result[domain.Geometry] {
	raw, err := c.parser.Parse(text)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.Fail[domain.Geometry](de)
		}
		return domain.Fail[domain.Geometry](domain.ErrNotationParse(err.Error()))
	}
	g, err := Classify(raw)
	if err != nil {
		return domain.Fail[domain.Geometry](err)
	}
	if src == "" {
		return domain.Ok(g)
	}
	if dst == "" {
		dst = c.defaultTarget
	}
	out, err := c.geoms.Transform(g, src, dst)
	if err != nil {
		return domain.Fail[domain.Geometry](err)
	}
	return domain.Ok(out)
}

// ParseAsPoint is Parse restricted to points.
func (c *Classifier) ParseAsPoint(text, src, dst string) domain.Result[domain.Point] {
	return narrow[domain.Point](c.Parse(text, src, dst), domain.PointKind)
}

// ParseAsLineString is Parse restricted to linestrings.
func (c *Classifier) ParseAsLineString(text, src, dst string) domain.Result[domain.LineString] {
	return narrow[domain.LineString](c.Parse(text, src, dst), domain.LineStringKind)
}

// ParseAsPolygon is Parse restricted to polygons.
func (c *Classifier) ParseAsPolygon(text, src, dst string) domain.Result[domain.Polygon] {
	return narrow[domain.Polygon](c.Parse(text, src, dst), domain.PolygonKind)
}

func narrow[T domain.Geometry](r domain.Result[domain.Geometry], want domain.GeometryKind) domain.Result[T] {
	return domain.Map(r, func(g domain.Geometry) (T, error) {
		v, ok := g.(T)
		if !ok {
			var zero T
			return zero, &domain.Error{
				Kind:    domain.KindUnsupportedGeometry,
				Subject: string(g.Kind()),
				Msg:     fmt.Sprintf("expected %s, got %s", want, g.Kind()),
			}
		}
		return v, nil
	})
}

// Classify maps a raw parser tree onto the closed set of geometry variants.
// Structural rules are enforced by the domain constructors; unclosed rings
// are rejected, never closed implicitly.
func Classify(raw domain.RawGeometry) (domain.Geometry, error) {
	switch strings.ToUpper(raw.Kind) {
	case "POINT":
		if raw.Empty || len(raw.Paths) == 0 || len(raw.Paths[0]) == 0 {
			return nil, domain.ErrMalformed("point requires a coordinate")
		}
		return domain.NewPoint(raw.Paths[0][0])
	case "LINESTRING":
		return domain.NewLineString(firstPath(raw))
	case "POLYGON":
		return polygonFromRings(raw.Paths, raw.Empty)
	case "MULTIPOINT":
		mp := domain.MultiPoint{}
		for _, c := range firstPath(raw) {
			p, err := domain.NewPoint(c)
			if err != nil {
				return nil, err
			}
			mp.Points = append(mp.Points, p)
		}
		return mp, nil
	case "MULTILINESTRING":
		ml := domain.MultiLineString{}
		for i, path := range raw.Paths {
			l, err := domain.NewLineString(path)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i, err)
			}
			ml.Lines = append(ml.Lines, l)
		}
		return ml, nil
	case "MULTIPOLYGON":
		mp := domain.MultiPolygon{}
		for i, rings := range raw.Polygons {
			p, err := polygonFromRings(rings, false)
			if err != nil {
				return nil, fmt.Errorf("polygon %d: %w", i, err)
			}
			mp.Polygons = append(mp.Polygons, p)
		}
		return mp, nil
	case "GEOMETRYCOLLECTION":
		gc := domain.GeometryCollection{}
		for i, m := range raw.Members {
			g, err := Classify(m)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			gc.Geometries = append(gc.Geometries, g)
		}
		return gc, nil
	}
	return nil, domain.ErrUnsupportedKind(raw.Kind)
}

func firstPath(raw domain.RawGeometry) []domain.Coordinate {
	if len(raw.Paths) == 0 {
		return nil
	}
	return raw.Paths[0]
}

func polygonFromRings(rings [][]domain.Coordinate, empty bool) (domain.Polygon, error) {
	if empty || len(rings) == 0 {
		return domain.Polygon{}, domain.ErrMalformed("polygon requires an exterior ring")
	}
	return domain.NewPolygon(rings[0], rings[1:]...)
}
