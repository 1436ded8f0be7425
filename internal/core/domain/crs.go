package domain

import (
	"fmt"
	"strings"
)

// DefaultTargetCRS is the target used when a caller supplies a source CRS but
// no target: WGS 84 longitude/latitude.
const DefaultTargetCRS = "EPSG:4326"

// AxisOrder is the axis-order class of a CRS.
type AxisOrder int

const (
	// Projected CRSs use linear units; external order is (easting, northing).
	Projected AxisOrder = iota
	// Geographic CRSs use angular units; external order is (longitude, latitude).
	Geographic
)

func (a AxisOrder) String() string {
	if a == Geographic {
		return "geographic"
	}
	return "projected"
}

// MarshalText implements encoding.TextMarshaler.
func (a AxisOrder) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AxisOrder) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "geographic":
		*a = Geographic
	case "projected":
		*a = Projected
	default:
		return fmt.Errorf("unknown axis order %q", string(b))
	}
	return nil
}

// Axes names the external fields for the first and second internal axis.
func (a AxisOrder) Axes() (first, second string) {
	if a == Geographic {
		return "lon", "lat"
	}
	return "x", "y"
}

// ToCoordinate reads the fields that belong to this axis order out of p.
func (a AxisOrder) ToCoordinate(p Position) (Coordinate, error) {
	if p.Axis != a {
		first, second := a.Axes()
		return Coordinate{}, ErrMalformed(fmt.Sprintf("%s position must carry %s/%s", a, first, second))
	}
	if a == Geographic {
		return Coordinate{X: p.Lon, Y: p.Lat}, nil
	}
	return Coordinate{X: p.X, Y: p.Y}, nil
}

// ToPosition writes c into the fields that belong to this axis order.
func (a AxisOrder) ToPosition(c Coordinate) Position {
	if a == Geographic {
		return LatLon(c.Y, c.X)
	}
	return EastNorth(c.X, c.Y)
}

// CRSEntry is one row of the CRS registry.
type CRSEntry struct {
	ID         string    `json:"id"`
	AuthName   string    `json:"auth_name,omitempty"`
	AuthCode   int       `json:"auth_code,omitempty"`
	Title      string    `json:"title,omitempty"`
	Definition string    `json:"definition"`
	Axis       AxisOrder `json:"axis_order"`
}

// AxisOrderFromDefinition classifies a PROJ string or WKT definition by its
// units: longlat PROJ strings and GEOGCS/GEOGCRS WKT are geographic,
// everything else is projected.
func AxisOrderFromDefinition(def string) AxisOrder {
	d := strings.TrimSpace(def)
	upper := strings.ToUpper(d)
	if strings.HasPrefix(upper, "GEOGCS[") || strings.HasPrefix(upper, "GEOGCRS[") ||
		strings.HasPrefix(upper, "GEOGRAPHICCRS[") {
		return Geographic
	}
	for _, field := range strings.Fields(d) {
		switch strings.ToLower(field) {
		case "+proj=longlat", "+proj=latlong", "+proj=lonlat", "+proj=latlon":
			return Geographic
		}
	}
	return Projected
}
