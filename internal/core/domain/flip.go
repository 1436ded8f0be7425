package domain

// FlipAxes returns a copy of g with the two axes of every coordinate
// swapped. Structure, ring closure and member order are unchanged.
func FlipAxes(g Geometry) (Geometry, error) {
	return MapCoordinates(g, func(c Coordinate) Coordinate {
		return Coordinate{X: c.Y, Y: c.X}
	})
}

// MapCoordinates rebuilds g with f applied to every coordinate. The input is
// never modified.
func MapCoordinates(g Geometry, f func(Coordinate) Coordinate) (Geometry, error) {
	return Visit[Geometry](g, mapper{f: f})
}

type mapper struct {
	f func(Coordinate) Coordinate
}

func (m mapper) path(in []Coordinate) []Coordinate {
	if in == nil {
		return nil
	}
	out := make([]Coordinate, len(in))
	for i, c := range in {
		out[i] = m.f(c)
	}
	return out
}

func (m mapper) polygon(p Polygon) Polygon {
	out := Polygon{Exterior: m.path(p.Exterior)}
	if p.Holes != nil {
		out.Holes = make([][]Coordinate, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = m.path(h)
		}
	}
	return out
}

func (m mapper) VisitPoint(p Point) (Geometry, error) {
	return Point{Coord: m.f(p.Coord)}, nil
}

func (m mapper) VisitLineString(l LineString) (Geometry, error) {
	return LineString{Coords: m.path(l.Coords)}, nil
}

func (m mapper) VisitPolygon(p Polygon) (Geometry, error) {
	return m.polygon(p), nil
}

func (m mapper) VisitMultiPoint(mp MultiPoint) (Geometry, error) {
	out := MultiPoint{Points: make([]Point, len(mp.Points))}
	for i, p := range mp.Points {
		out.Points[i] = Point{Coord: m.f(p.Coord)}
	}
	return out, nil
}

func (m mapper) VisitMultiLineString(ml MultiLineString) (Geometry, error) {
	out := MultiLineString{Lines: make([]LineString, len(ml.Lines))}
	for i, l := range ml.Lines {
		out.Lines[i] = LineString{Coords: m.path(l.Coords)}
	}
	return out, nil
}

func (m mapper) VisitMultiPolygon(mp MultiPolygon) (Geometry, error) {
	out := MultiPolygon{Polygons: make([]Polygon, len(mp.Polygons))}
	for i, p := range mp.Polygons {
		out.Polygons[i] = m.polygon(p)
	}
	return out, nil
}

func (m mapper) VisitGeometryCollection(gc GeometryCollection) (Geometry, error) {
	out := GeometryCollection{Geometries: make([]Geometry, len(gc.Geometries))}
	for i, g := range gc.Geometries {
		ng, err := Visit[Geometry](g, m)
		if err != nil {
			return nil, err
		}
		out.Geometries[i] = ng
	}
	return out, nil
}
