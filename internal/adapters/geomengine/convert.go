package geomengine

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/samirrijal/reproj/internal/core/domain"
)

func toPoints(coords []domain.Coordinate) []geom.Point {
	out := make([]geom.Point, len(coords))
	for i, c := range coords {
		out[i] = geom.Point{X: c.X, Y: c.Y}
	}
	return out
}

func toPolygon(p domain.Polygon) geom.Polygon {
	rings := p.Rings()
	out := make(geom.Polygon, len(rings))
	for i, r := range rings {
		out[i] = toPoints(r)
	}
	return out
}

type geomBuilder struct{}

func (geomBuilder) VisitPoint(p domain.Point) (geom.Geom, error) {
	return geom.Point{X: p.Coord.X, Y: p.Coord.Y}, nil
}

func (geomBuilder) VisitLineString(l domain.LineString) (geom.Geom, error) {
	return geom.LineString(toPoints(l.Coords)), nil
}

func (geomBuilder) VisitPolygon(p domain.Polygon) (geom.Geom, error) {
	return toPolygon(p), nil
}

func (geomBuilder) VisitMultiPoint(mp domain.MultiPoint) (geom.Geom, error) {
	out := make(geom.MultiPoint, len(mp.Points))
	for i, p := range mp.Points {
		out[i] = geom.Point{X: p.Coord.X, Y: p.Coord.Y}
	}
	return out, nil
}

func (geomBuilder) VisitMultiLineString(ml domain.MultiLineString) (geom.Geom, error) {
	out := make(geom.MultiLineString, len(ml.Lines))
	for i, l := range ml.Lines {
		out[i] = toPoints(l.Coords)
	}
	return out, nil
}

func (geomBuilder) VisitMultiPolygon(mp domain.MultiPolygon) (geom.Geom, error) {
	out := make(geom.MultiPolygon, len(mp.Polygons))
	for i, p := range mp.Polygons {
		out[i] = toPolygon(p)
	}
	return out, nil
}

func (b geomBuilder) VisitGeometryCollection(gc domain.GeometryCollection) (geom.Geom, error) {
	out := make(geom.GeometryCollection, len(gc.Geometries))
	for i, member := range gc.Geometries {
		g, err := domain.Visit[geom.Geom](member, b)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// toGeom converts an already validated geometry; the visitor cannot fail for
// well-formed input.
func toGeom(g domain.Geometry) geom.Geom {
	out, err := domain.Visit[geom.Geom](g, geomBuilder{})
	if err != nil {
		return geom.GeometryCollection{}
	}
	return out
}

func fromPoint(p geom.Point) domain.Coordinate {
	return domain.Coordinate{X: p.X, Y: p.Y}
}

func fromPath(pts []geom.Point) []domain.Coordinate {
	out := make([]domain.Coordinate, len(pts))
	for i, p := range pts {
		out[i] = fromPoint(p)
	}
	return out
}

func fromLineString(l geom.LineString) (domain.LineString, error) {
	return domain.NewLineString(fromPath(l))
}

func fromMultiLineString(ml geom.MultiLineString) (domain.MultiLineString, error) {
	lines := make([]domain.LineString, len(ml))
	for i, l := range ml {
		line, err := fromLineString(l)
		if err != nil {
			return domain.MultiLineString{}, fmt.Errorf("line %d: %w", i, err)
		}
		lines[i] = line
	}
	return domain.NewMultiLineString(lines...)
}

// fromOrderedPolygon keeps ring order: the first ring is the exterior.
func fromOrderedPolygon(p geom.Polygon) (domain.Polygon, error) {
	if len(p) == 0 {
		return domain.Polygon{}, domain.ErrMalformed("polygon has no rings")
	}
	holes := make([][]domain.Coordinate, 0, len(p)-1)
	for _, r := range p[1:] {
		holes = append(holes, fromPath(r))
	}
	return domain.NewPolygon(fromPath(p[0]), holes...)
}

func fromMultiPolygon(mp geom.MultiPolygon) (domain.MultiPolygon, error) {
	polys := make([]domain.Polygon, len(mp))
	for i, p := range mp {
		poly, err := fromOrderedPolygon(p)
		if err != nil {
			return domain.MultiPolygon{}, fmt.Errorf("polygon %d: %w", i, err)
		}
		polys[i] = poly
	}
	return domain.NewMultiPolygon(polys...)
}

// assemble splits the unordered ring soup produced by polygon clipping into
// polygons. A ring nested inside an even number of other rings is an
// exterior; an odd count makes it a hole of its innermost enclosing exterior.
// One polygon serializes as a Polygon, anything else as a MultiPolygon.
func assemble(p geom.Polygon) (domain.Geometry, error) {
	rings := make([][]geom.Point, 0, len(p))
	for _, r := range p {
		if len(r) >= 4 {
			rings = append(rings, r)
		}
	}

	area := make([]float64, len(rings))
	for i, r := range rings {
		area[i] = geom.Polygon{r}.Area()
	}
	depth := make([]int, len(rings))
	parent := make([]int, len(rings))
	for i, r := range rings {
		parent[i] = -1
		for j, other := range rings {
			if i == j || r[0].Within(geom.Polygon{other}) != geom.Inside {
				continue
			}
			depth[i]++
			if parent[i] < 0 || area[j] < area[parent[i]] {
				parent[i] = j
			}
		}
	}

	var order []int
	index := make(map[int]int)
	for i := range rings {
		if depth[i]%2 == 0 {
			index[i] = len(order)
			order = append(order, i)
		}
	}
	holes := make([][][]domain.Coordinate, len(order))
	for i := range rings {
		if depth[i]%2 == 1 {
			k, ok := index[parent[i]]
			if !ok {
				continue
			}
			holes[k] = append(holes[k], fromPath(rings[i]))
		}
	}

	polys := make([]domain.Polygon, len(order))
	for k, i := range order {
		poly, err := domain.NewPolygon(fromPath(rings[i]), holes[k]...)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", k, err)
		}
		polys[k] = poly
	}
	if len(polys) == 1 {
		return polys[0], nil
	}
	return domain.NewMultiPolygon(polys...)
}
