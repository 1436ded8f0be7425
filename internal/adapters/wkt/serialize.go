package wkt

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// Serialize implements ports.NotationParser. Numbers are written with a
// decimal point and no grouping, independent of locale.
func (p *Parser) Serialize(g domain.Geometry) (string, error) {
	t, err := ToGeom(g)
	if err != nil {
		return "", err
	}
	var opts []wkt.EncodeOption
	if p.maxDecimals >= 0 {
		opts = append(opts, wkt.EncodeOptionWithMaxDecimalDigits(p.maxDecimals))
	}
	return wkt.Marshal(t, opts...)
}

// ToGeom converts a domain geometry into its go-geom form.
func ToGeom(g domain.Geometry) (geom.T, error) {
	return domain.Visit[geom.T](g, geomBuilder{})
}

type geomBuilder struct{}

func appendPath(flat []float64, coords []domain.Coordinate) []float64 {
	for _, c := range coords {
		flat = append(flat, c.X, c.Y)
	}
	return flat
}

func appendPolygon(flat []float64, p domain.Polygon) ([]float64, []int) {
	ends := make([]int, 0, 1+len(p.Holes))
	for _, ring := range p.Rings() {
		flat = appendPath(flat, ring)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

func (geomBuilder) VisitPoint(p domain.Point) (geom.T, error) {
	return geom.NewPointFlat(geom.XY, []float64{p.Coord.X, p.Coord.Y}), nil
}

func (geomBuilder) VisitLineString(l domain.LineString) (geom.T, error) {
	return geom.NewLineStringFlat(geom.XY, appendPath(nil, l.Coords)), nil
}

func (geomBuilder) VisitPolygon(p domain.Polygon) (geom.T, error) {
	flat, ends := appendPolygon(nil, p)
	return geom.NewPolygonFlat(geom.XY, flat, ends), nil
}

func (geomBuilder) VisitMultiPoint(mp domain.MultiPoint) (geom.T, error) {
	var flat []float64
	for _, p := range mp.Points {
		flat = append(flat, p.Coord.X, p.Coord.Y)
	}
	return geom.NewMultiPointFlat(geom.XY, flat), nil
}

func (geomBuilder) VisitMultiLineString(ml domain.MultiLineString) (geom.T, error) {
	var flat []float64
	var ends []int
	for _, l := range ml.Lines {
		flat = appendPath(flat, l.Coords)
		ends = append(ends, len(flat))
	}
	return geom.NewMultiLineStringFlat(geom.XY, flat, ends), nil
}

func (geomBuilder) VisitMultiPolygon(mp domain.MultiPolygon) (geom.T, error) {
	var flat []float64
	var endss [][]int
	for _, p := range mp.Polygons {
		var ends []int
		flat, ends = appendPolygon(flat, p)
		endss = append(endss, ends)
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, endss), nil
}

func (b geomBuilder) VisitGeometryCollection(gc domain.GeometryCollection) (geom.T, error) {
	out := geom.NewGeometryCollection()
	for _, m := range gc.Geometries {
		t, err := domain.Visit[geom.T](m, b)
		if err != nil {
			return nil, err
		}
		if err := out.Push(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}
