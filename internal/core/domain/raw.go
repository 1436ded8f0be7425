package domain

// RawGeometry is the untyped tree produced by a notation parser. Kind is the
// upper-case keyword as written (POINT, TRIANGLE, CIRCULARSTRING, ...).
type RawGeometry struct {
	Kind     string
	Paths    [][]Coordinate   // POINT/LINESTRING/MULTIPOINT: one path; MULTILINESTRING: one per line; POLYGON: one per ring
	Polygons [][][]Coordinate // MULTIPOLYGON
	Members  []RawGeometry    // GEOMETRYCOLLECTION
	Empty    bool
}
