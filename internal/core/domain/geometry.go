package domain

import "fmt"

// GeometryKind is the tag of a Geometry variant.
type GeometryKind string

const (
	PointKind              GeometryKind = "Point"
	LineStringKind         GeometryKind = "LineString"
	PolygonKind            GeometryKind = "Polygon"
	MultiPointKind         GeometryKind = "MultiPoint"
	MultiLineStringKind    GeometryKind = "MultiLineString"
	MultiPolygonKind       GeometryKind = "MultiPolygon"
	GeometryCollectionKind GeometryKind = "GeometryCollection"
)

// Geometry is the closed set of supported shapes. The unexported method
// seals the interface: only the seven variants below implement it.
type Geometry interface {
	Kind() GeometryKind
	isGeometry()
}

// Point is a single coordinate.
type Point struct {
	Coord Coordinate
}

// LineString is an ordered path of at least two coordinates.
type LineString struct {
	Coords []Coordinate
}

// Polygon is an exterior ring plus zero or more holes. Every ring is closed.
type Polygon struct {
	Exterior []Coordinate
	Holes    [][]Coordinate
}

// MultiPoint is an ordered set of points.
type MultiPoint struct {
	Points []Point
}

// MultiLineString is an ordered set of linestrings.
type MultiLineString struct {
	Lines []LineString
}

// MultiPolygon is an ordered set of polygons.
type MultiPolygon struct {
	Polygons []Polygon
}

// GeometryCollection holds any variants, including nested collections.
type GeometryCollection struct {
	Geometries []Geometry
}

func (Point) Kind() GeometryKind              { return PointKind }
func (LineString) Kind() GeometryKind         { return LineStringKind }
func (Polygon) Kind() GeometryKind            { return PolygonKind }
func (MultiPoint) Kind() GeometryKind         { return MultiPointKind }
func (MultiLineString) Kind() GeometryKind    { return MultiLineStringKind }
func (MultiPolygon) Kind() GeometryKind       { return MultiPolygonKind }
func (GeometryCollection) Kind() GeometryKind { return GeometryCollectionKind }

func (Point) isGeometry()              {}
func (LineString) isGeometry()         {}
func (Polygon) isGeometry()            {}
func (MultiPoint) isGeometry()         {}
func (MultiLineString) isGeometry()    {}
func (MultiPolygon) isGeometry()       {}
func (GeometryCollection) isGeometry() {}

// Rings returns the exterior followed by the holes.
func (p Polygon) Rings() [][]Coordinate {
	rings := make([][]Coordinate, 0, 1+len(p.Holes))
	rings = append(rings, p.Exterior)
	return append(rings, p.Holes...)
}

// Visitor has one method per variant. Adding a variant adds a method here,
// so every implementation stops compiling until it handles the new case.
type Visitor[T any] interface {
	VisitPoint(Point) (T, error)
	VisitLineString(LineString) (T, error)
	VisitPolygon(Polygon) (T, error)
	VisitMultiPoint(MultiPoint) (T, error)
	VisitMultiLineString(MultiLineString) (T, error)
	VisitMultiPolygon(MultiPolygon) (T, error)
	VisitGeometryCollection(GeometryCollection) (T, error)
}

// Visit dispatches g to the matching Visitor method. It is the only type
// switch over the variant set.
func Visit[T any](g Geometry, v Visitor[T]) (T, error) {
	switch g := g.(type) {
	case Point:
		return v.VisitPoint(g)
	case *Point:
		if g != nil {
			return v.VisitPoint(*g)
		}
	case LineString:
		return v.VisitLineString(g)
	case *LineString:
		if g != nil {
			return v.VisitLineString(*g)
		}
	case Polygon:
		return v.VisitPolygon(g)
	case *Polygon:
		if g != nil {
			return v.VisitPolygon(*g)
		}
	case MultiPoint:
		return v.VisitMultiPoint(g)
	case *MultiPoint:
		if g != nil {
			return v.VisitMultiPoint(*g)
		}
	case MultiLineString:
		return v.VisitMultiLineString(g)
	case *MultiLineString:
		if g != nil {
			return v.VisitMultiLineString(*g)
		}
	case MultiPolygon:
		return v.VisitMultiPolygon(g)
	case *MultiPolygon:
		if g != nil {
			return v.VisitMultiPolygon(*g)
		}
	case GeometryCollection:
		return v.VisitGeometryCollection(g)
	case *GeometryCollection:
		if g != nil {
			return v.VisitGeometryCollection(*g)
		}
	}
	var zero T
	return zero, ErrMalformed("nil geometry")
}

// --- constructors ---

// NewPoint validates c and returns a Point.
func NewPoint(c Coordinate) (Point, error) {
	if !c.IsFinite() {
		return Point{}, ErrMalformed(fmt.Sprintf("point has non-finite coordinate (%v, %v)", c.X, c.Y))
	}
	return Point{Coord: c}, nil
}

// NewLineString copies coords and validates them.
func NewLineString(coords []Coordinate) (LineString, error) {
	if err := validatePath(coords, 2, "linestring"); err != nil {
		return LineString{}, err
	}
	return LineString{Coords: cloneCoords(coords)}, nil
}

// NewPolygon copies the rings and validates them. Unclosed rings are
// rejected; use ClosePolygonRing first to opt into closing them.
func NewPolygon(exterior []Coordinate, holes ...[]Coordinate) (Polygon, error) {
	if err := ValidateRing(exterior); err != nil {
		return Polygon{}, fmt.Errorf("exterior ring: %w", err)
	}
	p := Polygon{Exterior: cloneCoords(exterior)}
	if len(holes) > 0 {
		p.Holes = make([][]Coordinate, len(holes))
	}
	for i, h := range holes {
		if err := ValidateRing(h); err != nil {
			return Polygon{}, fmt.Errorf("interior ring %d: %w", i, err)
		}
		p.Holes[i] = cloneCoords(h)
	}
	return p, nil
}

// NewMultiPoint copies points and validates every member.
func NewMultiPoint(points ...Point) (MultiPoint, error) {
	mp := MultiPoint{Points: append([]Point(nil), points...)}
	if err := Validate(mp); err != nil {
		return MultiPoint{}, err
	}
	return mp, nil
}

// NewMultiLineString copies lines and validates every member.
func NewMultiLineString(lines ...LineString) (MultiLineString, error) {
	ml := MultiLineString{Lines: append([]LineString(nil), lines...)}
	if err := Validate(ml); err != nil {
		return MultiLineString{}, err
	}
	return ml, nil
}

// NewMultiPolygon copies polygons and validates every member.
func NewMultiPolygon(polygons ...Polygon) (MultiPolygon, error) {
	mp := MultiPolygon{Polygons: append([]Polygon(nil), polygons...)}
	if err := Validate(mp); err != nil {
		return MultiPolygon{}, err
	}
	return mp, nil
}

// NewGeometryCollection copies geoms and validates them recursively.
func NewGeometryCollection(geoms ...Geometry) (GeometryCollection, error) {
	gc := GeometryCollection{Geometries: append([]Geometry(nil), geoms...)}
	if err := Validate(gc); err != nil {
		return GeometryCollection{}, err
	}
	return gc, nil
}

// IsClosed reports whether ring starts and ends on the same coordinate.
func IsClosed(ring []Coordinate) bool {
	return len(ring) > 0 && ring[0] == ring[len(ring)-1]
}

// ValidateRing checks that ring has at least three distinct positions plus
// the closing one, and that first equals last.
func ValidateRing(ring []Coordinate) error {
	if err := validatePath(ring, 4, "ring"); err != nil {
		return err
	}
	if !IsClosed(ring) {
		return ErrMalformed("ring is not closed: first and last coordinates differ")
	}
	return nil
}

// ClosePolygonRing returns a copy of ring with the first coordinate appended
// when the ring is open. Closed rings are copied unchanged.
func ClosePolygonRing(ring []Coordinate) []Coordinate {
	out := cloneCoords(ring)
	if len(out) > 0 && !IsClosed(out) {
		out = append(out, out[0])
	}
	return out
}

func validatePath(coords []Coordinate, minLen int, what string) error {
	if len(coords) < minLen {
		return ErrMalformed(fmt.Sprintf("%s needs at least %d coordinates, got %d", what, minLen, len(coords)))
	}
	for i, c := range coords {
		if !c.IsFinite() {
			return ErrMalformed(fmt.Sprintf("%s coordinate %d is not finite", what, i))
		}
	}
	return nil
}

func cloneCoords(in []Coordinate) []Coordinate {
	if in == nil {
		return nil
	}
	out := make([]Coordinate, len(in))
	copy(out, in)
	return out
}
