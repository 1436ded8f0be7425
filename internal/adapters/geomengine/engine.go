// Package geomengine implements ports.GeometryEngine on top of
// github.com/ctessum/geom. Inputs and outputs are text geometries in the
// notation understood by the injected parser.
package geomengine

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ctessum/geom"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/pkg/geospatial"
)

// ClassifyFunc turns a raw coordinate tree into a typed geometry.
type ClassifyFunc func(domain.RawGeometry) (domain.Geometry, error)

type operation func(e *Engine, g domain.Geometry, params map[string]string) (string, error)

var operations = map[string]operation{
	"area":            opArea,
	"length":          opLength,
	"geodesic_length": opGeodesicLength,
	"centroid":        opCentroid,
	"envelope":        opEnvelope,
	"simplify":        opSimplify,
	"union":           setOp(geom.Polygonal.Union),
	"intersection":    setOp(geom.Polygonal.Intersection),
	"difference":      setOp(geom.Polygonal.Difference),
	"xor":             setOp(geom.Polygonal.XOr),
	"within":          opWithin,
}

// Engine evaluates planar geometry operations.
type Engine struct {
	parser   ports.NotationParser
	classify ClassifyFunc
}

// New creates an Engine. parser is used for both decoding the operands and
// encoding geometric results.
func New(parser ports.NotationParser, classify ClassifyFunc) *Engine {
	return &Engine{parser: parser, classify: classify}
}

// Operations lists the supported operation names in sorted order.
func (e *Engine) Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs op against the geometry in text.
func (e *Engine) Apply(op, text string, params map[string]string) (string, error) {
	fn, ok := operations[op]
	if !ok {
		return "", domain.ErrUnsupportedOperation(op)
	}
	g, err := e.decode(text)
	if err != nil {
		return "", err
	}
	return fn(e, g, params)
}

func (e *Engine) decode(text string) (domain.Geometry, error) {
	raw, err := e.parser.Parse(text)
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.ErrNotationParse(err.Error())
	}
	return e.classify(raw)
}

func (e *Engine) encode(g domain.Geometry) (string, error) {
	return e.parser.Serialize(g)
}

func (e *Engine) other(params map[string]string) (geom.Polygonal, error) {
	text, ok := params["other"]
	if !ok || text == "" {
		return nil, domain.ErrMalformed("parameter \"other\" is required")
	}
	g, err := e.decode(text)
	if err != nil {
		return nil, fmt.Errorf("other: %w", err)
	}
	p, ok := toGeom(g).(geom.Polygonal)
	if !ok {
		return nil, domain.ErrUnsupportedKind(string(g.Kind()))
	}
	return p, nil
}

func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func opArea(_ *Engine, g domain.Geometry, _ map[string]string) (string, error) {
	var a float64
	if p, ok := toGeom(g).(geom.Polygonal); ok {
		a = p.Area()
	}
	return formatScalar(a), nil
}

func opLength(_ *Engine, g domain.Geometry, _ map[string]string) (string, error) {
	var l float64
	if lin, ok := toGeom(g).(geom.Linear); ok {
		l = lin.Length()
	}
	return formatScalar(l), nil
}

// opGeodesicLength sums great-circle segment lengths in meters. Coordinates
// are read as longitude/latitude degrees.
func opGeodesicLength(_ *Engine, g domain.Geometry, _ map[string]string) (string, error) {
	var total float64
	switch v := g.(type) {
	case domain.LineString:
		total = geospatial.PathLength(v.Coords)
	case domain.MultiLineString:
		for _, l := range v.Lines {
			total += geospatial.PathLength(l.Coords)
		}
	}
	return formatScalar(total), nil
}

func opCentroid(e *Engine, g domain.Geometry, _ map[string]string) (string, error) {
	var c geom.Point
	switch v := toGeom(g).(type) {
	case geom.Polygonal:
		c = v.Centroid()
	case geom.Point:
		c = v
	case geom.MultiPoint:
		if len(v) == 0 {
			return "", domain.ErrMalformed("empty geometry has no centroid")
		}
		for _, p := range v {
			c.X += p.X
			c.Y += p.Y
		}
		c.X /= float64(len(v))
		c.Y /= float64(len(v))
	case geom.LineString:
		c = lineCentroid([][]geom.Point{v})
	case geom.MultiLineString:
		if len(v) == 0 {
			return "", domain.ErrMalformed("empty geometry has no centroid")
		}
		paths := make([][]geom.Point, len(v))
		for i, l := range v {
			paths[i] = l
		}
		c = lineCentroid(paths)
	default:
		return "", domain.ErrUnsupportedOperation("centroid of " + string(g.Kind()))
	}
	if math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return "", domain.ErrMalformed("centroid is undefined")
	}
	return e.encode(domain.Point{Coord: fromPoint(c)})
}

// lineCentroid weights segment midpoints by segment length. Zero-length input
// falls back to the vertex mean.
func lineCentroid(paths [][]geom.Point) geom.Point {
	var c geom.Point
	var total float64
	var n int
	var mean geom.Point
	for _, path := range paths {
		for i, p := range path {
			mean.X += p.X
			mean.Y += p.Y
			n++
			if i == 0 {
				continue
			}
			a := path[i-1]
			l := math.Hypot(p.X-a.X, p.Y-a.Y)
			c.X += (a.X + p.X) / 2 * l
			c.Y += (a.Y + p.Y) / 2 * l
			total += l
		}
	}
	if total == 0 {
		return geom.Point{X: mean.X / float64(n), Y: mean.Y / float64(n)}
	}
	return geom.Point{X: c.X / total, Y: c.Y / total}
}

func opEnvelope(e *Engine, g domain.Geometry, _ map[string]string) (string, error) {
	if domain.NumPoints(g) == 0 {
		return "", domain.ErrMalformed("empty geometry has no envelope")
	}
	b := toGeom(g).Bounds()
	lo := domain.Coordinate{X: b.Min.X, Y: b.Min.Y}
	hi := domain.Coordinate{X: b.Max.X, Y: b.Max.Y}
	switch {
	case lo == hi:
		return e.encode(domain.Point{Coord: lo})
	case lo.X == hi.X || lo.Y == hi.Y:
		return e.encode(domain.LineString{Coords: []domain.Coordinate{lo, hi}})
	}
	ring := []domain.Coordinate{
		lo,
		{X: hi.X, Y: lo.Y},
		hi,
		{X: lo.X, Y: hi.Y},
		lo,
	}
	return e.encode(domain.Polygon{Exterior: ring})
}

func opSimplify(e *Engine, g domain.Geometry, params map[string]string) (string, error) {
	tol, err := strconv.ParseFloat(params["tolerance"], 64)
	if err != nil || tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return "", domain.ErrMalformed(fmt.Sprintf("invalid tolerance %q", params["tolerance"]))
	}
	var out domain.Geometry
	switch v := toGeom(g).(type) {
	case geom.LineString:
		out, err = fromLineString(simplifyLine(v, tol))
	case geom.MultiLineString:
		lines := make(geom.MultiLineString, len(v))
		for i, l := range v {
			lines[i] = simplifyLine(l, tol)
		}
		out, err = fromMultiLineString(lines)
	case geom.Polygon:
		out, err = fromOrderedPolygon(v.Simplify(tol).(geom.Polygon))
	case geom.MultiPolygon:
		out, err = fromMultiPolygon(v.Simplify(tol).(geom.MultiPolygon))
	default:
		out = g
	}
	if err != nil {
		return "", fmt.Errorf("simplify: %w", err)
	}
	return e.encode(out)
}

// simplifyLine leaves two-point lines alone; the upstream curve simplifier
// never terminates on them.
func simplifyLine(l geom.LineString, tol float64) geom.LineString {
	if len(l) < 3 {
		return l
	}
	return l.Simplify(tol).(geom.LineString)
}

func setOp(fn func(geom.Polygonal, geom.Polygonal) geom.Polygon) operation {
	return func(e *Engine, g domain.Geometry, params map[string]string) (string, error) {
		p, ok := toGeom(g).(geom.Polygonal)
		if !ok {
			return "", domain.ErrUnsupportedKind(string(g.Kind()))
		}
		other, err := e.other(params)
		if err != nil {
			return "", err
		}
		out, err := assemble(fn(p, other))
		if err != nil {
			return "", err
		}
		return e.encode(out)
	}
}

type withiner interface {
	Within(geom.Polygonal) geom.WithinStatus
}

func opWithin(e *Engine, g domain.Geometry, params map[string]string) (string, error) {
	other, err := e.other(params)
	if err != nil {
		return "", err
	}
	var in bool
	switch v := toGeom(g).(type) {
	case withiner:
		in = v.Within(other) != geom.Outside
	case geom.Polygonal:
		in = true
		for _, poly := range v.Polygons() {
			for _, r := range poly {
				for _, pt := range r {
					if pt.Within(other) == geom.Outside {
						in = false
					}
				}
			}
		}
	default:
		return "", domain.ErrUnsupportedOperation("within for " + string(g.Kind()))
	}
	return strconv.FormatBool(in), nil
}
