// Package wkt adapts github.com/twpayne/go-geom/encoding/wkt to the
// NotationParser port.
package wkt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/samirrijal/reproj/internal/core/domain"
)

var supportedKeywords = map[string]bool{
	"POINT":              true,
	"LINESTRING":         true,
	"POLYGON":            true,
	"MULTIPOINT":         true,
	"MULTILINESTRING":    true,
	"MULTIPOLYGON":       true,
	"GEOMETRYCOLLECTION": true,
}

// Parser reads and writes Well Known Text. Z and M ordinates are dropped on
// input; output is always 2D.
type Parser struct {
	maxDecimals int
}

// New creates a Parser. maxDecimals < 0 keeps full float precision.
func New(maxDecimals int) *Parser {
	return &Parser{maxDecimals: maxDecimals}
}

// Parse implements ports.NotationParser. A well-formed geometry keyword this
// package does not model (TRIANGLE, CIRCULARSTRING, ...) is returned as a
// bare RawGeometry so the classifier can report it as unsupported.
func (p *Parser) Parse(text string) (domain.RawGeometry, error) {
	text = strings.TrimSpace(text)
	if kw := leadingKeyword(text); kw != "" && !supportedKeywords[baseKeyword(kw)] {
		return domain.RawGeometry{Kind: kw}, nil
	}
	t, err := wkt.Unmarshal(text)
	if err != nil {
		// go-geom enforces minimum point counts while decoding. Text that is
		// lexically sound but still rejected breaks a structural rule.
		if wellFormed(text) {
			return domain.RawGeometry{}, domain.ErrMalformed(err.Error())
		}
		return domain.RawGeometry{}, err
	}
	return fromGeom(t)
}

// wellFormed reports whether text consists only of geometry keywords,
// dimension tags, EMPTY, numbers, commas and balanced parentheses.
func wellFormed(text string) bool {
	depth := 0
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	for _, f := range fields {
		for f != "" {
			switch f[0] {
			case '(':
				depth++
				f = f[1:]
				continue
			case ')':
				depth--
				if depth < 0 {
					return false
				}
				f = f[1:]
				continue
			}
			end := strings.IndexAny(f, "()")
			if end < 0 {
				end = len(f)
			}
			tok := f[:end]
			f = f[end:]
			if _, err := strconv.ParseFloat(tok, 64); err == nil {
				continue
			}
			switch up := strings.ToUpper(tok); {
			case supportedKeywords[baseKeyword(up)], up == "EMPTY", up == "Z", up == "M", up == "ZM":
			default:
				return false
			}
		}
	}
	return depth == 0
}

// baseKeyword strips a fused dimension suffix: POINTZ and LINESTRINGZM name
// the same kinds as POINT and LINESTRING.
func baseKeyword(kw string) string {
	for _, suffix := range []string{"ZM", "Z", "M"} {
		if base := strings.TrimSuffix(kw, suffix); base != kw && supportedKeywords[base] {
			return base
		}
	}
	return kw
}

func leadingKeyword(text string) string {
	end := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(text)
	}
	return strings.ToUpper(text[:end])
}

func fromGeom(t geom.T) (domain.RawGeometry, error) {
	switch t := t.(type) {
	case *geom.Point:
		raw := domain.RawGeometry{Kind: "POINT", Empty: t.Empty()}
		if !t.Empty() {
			raw.Paths = [][]domain.Coordinate{{coordinate(t.Coords())}}
		}
		return raw, nil
	case *geom.LineString:
		return domain.RawGeometry{Kind: "LINESTRING", Empty: t.Empty(), Paths: [][]domain.Coordinate{path(t.Coords())}}, nil
	case *geom.Polygon:
		return domain.RawGeometry{Kind: "POLYGON", Empty: t.Empty(), Paths: paths(t.Coords())}, nil
	case *geom.MultiPoint:
		raw := domain.RawGeometry{Kind: "MULTIPOINT", Empty: t.Empty()}
		var pts []domain.Coordinate
		for i := 0; i < t.NumPoints(); i++ {
			pt := t.Point(i)
			if pt.Empty() {
				return domain.RawGeometry{}, domain.ErrMalformed(fmt.Sprintf("multipoint member %d is empty", i))
			}
			pts = append(pts, coordinate(pt.Coords()))
		}
		if len(pts) > 0 {
			raw.Paths = [][]domain.Coordinate{pts}
		}
		return raw, nil
	case *geom.MultiLineString:
		return domain.RawGeometry{Kind: "MULTILINESTRING", Empty: t.Empty(), Paths: paths(t.Coords())}, nil
	case *geom.MultiPolygon:
		raw := domain.RawGeometry{Kind: "MULTIPOLYGON", Empty: t.Empty()}
		for _, rings := range t.Coords() {
			raw.Polygons = append(raw.Polygons, paths(rings))
		}
		return raw, nil
	case *geom.GeometryCollection:
		raw := domain.RawGeometry{Kind: "GEOMETRYCOLLECTION", Empty: t.Empty()}
		for i, sub := range t.Geoms() {
			m, err := fromGeom(sub)
			if err != nil {
				return domain.RawGeometry{}, fmt.Errorf("member %d: %w", i, err)
			}
			raw.Members = append(raw.Members, m)
		}
		return raw, nil
	}
	return domain.RawGeometry{Kind: fmt.Sprintf("%T", t)}, nil
}

func coordinate(c geom.Coord) domain.Coordinate {
	return domain.Coordinate{X: c.X(), Y: c.Y()}
}

func path(cs []geom.Coord) []domain.Coordinate {
	if len(cs) == 0 {
		return nil
	}
	out := make([]domain.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = coordinate(c)
	}
	return out
}

func paths(css [][]geom.Coord) [][]domain.Coordinate {
	if len(css) == 0 {
		return nil
	}
	out := make([][]domain.Coordinate, len(css))
	for i, cs := range css {
		out[i] = path(cs)
	}
	return out
}
