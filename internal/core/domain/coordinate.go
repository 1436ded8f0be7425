package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coordinate is the internal (first-axis, second-axis) pair every transform
// works on: longitude/latitude for geographic CRSs, easting/northing for
// projected ones.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both values are finite real numbers.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) &&
		!math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// Position is a coordinate in its external two-field form. Geographic CRSs
// populate Lat/Lon, projected CRSs populate X/Y; Axis records which pair is set.
type Position struct {
	Lat, Lon float64
	X, Y     float64
	Axis     AxisOrder
}

// LatLon builds a geographic Position.
func LatLon(lat, lon float64) Position {
	return Position{Lat: lat, Lon: lon, Axis: Geographic}
}

// EastNorth builds a projected Position.
func EastNorth(x, y float64) Position {
	return Position{X: x, Y: y, Axis: Projected}
}

type positionJSON struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
}

// MarshalJSON emits lat/lon or x/y depending on Axis.
func (p Position) MarshalJSON() ([]byte, error) {
	if p.Axis == Geographic {
		return json.Marshal(positionJSON{Lat: &p.Lat, Lon: &p.Lon})
	}
	return json.Marshal(positionJSON{X: &p.X, Y: &p.Y})
}

// UnmarshalJSON accepts exactly one of the {lat, lon} or {x, y} field pairs.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	geo := raw.Lat != nil || raw.Lon != nil
	proj := raw.X != nil || raw.Y != nil
	switch {
	case geo && proj:
		return fmt.Errorf("position must carry either lat/lon or x/y, not both")
	case geo:
		if raw.Lat == nil || raw.Lon == nil {
			return fmt.Errorf("position requires both lat and lon")
		}
		*p = LatLon(*raw.Lat, *raw.Lon)
	case proj:
		if raw.X == nil || raw.Y == nil {
			return fmt.Errorf("position requires both x and y")
		}
		*p = EastNorth(*raw.X, *raw.Y)
	default:
		return fmt.Errorf("position requires lat/lon or x/y")
	}
	return nil
}
