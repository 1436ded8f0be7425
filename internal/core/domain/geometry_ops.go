package domain

import "fmt"

// Validate checks the structural rules of g and all of its members.
func Validate(g Geometry) error {
	_, err := Visit[struct{}](g, validator{})
	return err
}

type validator struct{}

func (validator) VisitPoint(p Point) (struct{}, error) {
	_, err := NewPoint(p.Coord)
	return struct{}{}, err
}

func (validator) VisitLineString(l LineString) (struct{}, error) {
	return struct{}{}, validatePath(l.Coords, 2, "linestring")
}

func (validator) VisitPolygon(p Polygon) (struct{}, error) {
	for i, ring := range p.Rings() {
		if err := ValidateRing(ring); err != nil {
			return struct{}{}, fmt.Errorf("polygon ring %d: %w", i, err)
		}
	}
	return struct{}{}, nil
}

func (v validator) VisitMultiPoint(mp MultiPoint) (struct{}, error) {
	for i, p := range mp.Points {
		if _, err := v.VisitPoint(p); err != nil {
			return struct{}{}, fmt.Errorf("multipoint member %d: %w", i, err)
		}
	}
	return struct{}{}, nil
}

func (v validator) VisitMultiLineString(ml MultiLineString) (struct{}, error) {
	for i, l := range ml.Lines {
		if _, err := v.VisitLineString(l); err != nil {
			return struct{}{}, fmt.Errorf("multilinestring member %d: %w", i, err)
		}
	}
	return struct{}{}, nil
}

func (v validator) VisitMultiPolygon(mp MultiPolygon) (struct{}, error) {
	for i, p := range mp.Polygons {
		if _, err := v.VisitPolygon(p); err != nil {
			return struct{}{}, fmt.Errorf("multipolygon member %d: %w", i, err)
		}
	}
	return struct{}{}, nil
}

func (v validator) VisitGeometryCollection(gc GeometryCollection) (struct{}, error) {
	for i, g := range gc.Geometries {
		if _, err := Visit[struct{}](g, v); err != nil {
			return struct{}{}, fmt.Errorf("collection member %d: %w", i, err)
		}
	}
	return struct{}{}, nil
}

// Walk calls fn for every coordinate in g in document order.
func Walk(g Geometry, fn func(Coordinate)) error {
	_, err := Visit[struct{}](g, walker{fn: fn})
	return err
}

// NumPoints counts every coordinate in g, closing positions included.
func NumPoints(g Geometry) int {
	n := 0
	if err := Walk(g, func(Coordinate) { n++ }); err != nil {
		return 0
	}
	return n
}

type walker struct {
	fn func(Coordinate)
}

func (w walker) path(coords []Coordinate) {
	for _, c := range coords {
		w.fn(c)
	}
}

func (w walker) VisitPoint(p Point) (struct{}, error) {
	w.fn(p.Coord)
	return struct{}{}, nil
}

func (w walker) VisitLineString(l LineString) (struct{}, error) {
	w.path(l.Coords)
	return struct{}{}, nil
}

func (w walker) VisitPolygon(p Polygon) (struct{}, error) {
	for _, ring := range p.Rings() {
		w.path(ring)
	}
	return struct{}{}, nil
}

func (w walker) VisitMultiPoint(mp MultiPoint) (struct{}, error) {
	for _, p := range mp.Points {
		w.fn(p.Coord)
	}
	return struct{}{}, nil
}

func (w walker) VisitMultiLineString(ml MultiLineString) (struct{}, error) {
	for _, l := range ml.Lines {
		w.path(l.Coords)
	}
	return struct{}{}, nil
}

func (w walker) VisitMultiPolygon(mp MultiPolygon) (struct{}, error) {
	for _, p := range mp.Polygons {
		w.VisitPolygon(p)
	}
	return struct{}{}, nil
}

func (w walker) VisitGeometryCollection(gc GeometryCollection) (struct{}, error) {
	for _, g := range gc.Geometries {
		if _, err := Visit[struct{}](g, w); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

// Equal reports whether a and b have the same tag, the same structure and
// exactly equal coordinates.
func Equal(a, b Geometry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ok, err := Visit[bool](a, equalizer{other: b})
	return err == nil && ok
}

type equalizer struct {
	other Geometry
}

func pathEqual(a, b []Coordinate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func polygonEqual(a, b Polygon) bool {
	if !pathEqual(a.Exterior, b.Exterior) || len(a.Holes) != len(b.Holes) {
		return false
	}
	for i := range a.Holes {
		if !pathEqual(a.Holes[i], b.Holes[i]) {
			return false
		}
	}
	return true
}

// deref strips a pointer variant so comparisons see values only.
func deref(g Geometry) Geometry {
	switch p := g.(type) {
	case *Point:
		if p != nil {
			return *p
		}
	case *LineString:
		if p != nil {
			return *p
		}
	case *Polygon:
		if p != nil {
			return *p
		}
	case *MultiPoint:
		if p != nil {
			return *p
		}
	case *MultiLineString:
		if p != nil {
			return *p
		}
	case *MultiPolygon:
		if p != nil {
			return *p
		}
	case *GeometryCollection:
		if p != nil {
			return *p
		}
	default:
		return g
	}
	return nil
}

func (e equalizer) VisitPoint(p Point) (bool, error) {
	o, ok := deref(e.other).(Point)
	return ok && o.Coord == p.Coord, nil
}

func (e equalizer) VisitLineString(l LineString) (bool, error) {
	o, ok := deref(e.other).(LineString)
	return ok && pathEqual(l.Coords, o.Coords), nil
}

func (e equalizer) VisitPolygon(p Polygon) (bool, error) {
	o, ok := deref(e.other).(Polygon)
	return ok && polygonEqual(p, o), nil
}

func (e equalizer) VisitMultiPoint(mp MultiPoint) (bool, error) {
	o, ok := deref(e.other).(MultiPoint)
	if !ok || len(o.Points) != len(mp.Points) {
		return false, nil
	}
	for i := range mp.Points {
		if mp.Points[i] != o.Points[i] {
			return false, nil
		}
	}
	return true, nil
}

func (e equalizer) VisitMultiLineString(ml MultiLineString) (bool, error) {
	o, ok := deref(e.other).(MultiLineString)
	if !ok || len(o.Lines) != len(ml.Lines) {
		return false, nil
	}
	for i := range ml.Lines {
		if !pathEqual(ml.Lines[i].Coords, o.Lines[i].Coords) {
			return false, nil
		}
	}
	return true, nil
}

func (e equalizer) VisitMultiPolygon(mp MultiPolygon) (bool, error) {
	o, ok := deref(e.other).(MultiPolygon)
	if !ok || len(o.Polygons) != len(mp.Polygons) {
		return false, nil
	}
	for i := range mp.Polygons {
		if !polygonEqual(mp.Polygons[i], o.Polygons[i]) {
			return false, nil
		}
	}
	return true, nil
}

func (e equalizer) VisitGeometryCollection(gc GeometryCollection) (bool, error) {
	o, ok := deref(e.other).(GeometryCollection)
	if !ok || len(o.Geometries) != len(gc.Geometries) {
		return false, nil
	}
	for i := range gc.Geometries {
		if !Equal(gc.Geometries[i], o.Geometries[i]) {
			return false, nil
		}
	}
	return true, nil
}
