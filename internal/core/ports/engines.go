package ports

import (
	"github.com/samirrijal/reproj/internal/core/domain"
)

// ProjectionEngine moves one internal (x, y) pair between two projection
// definitions. Implementations must be safe for concurrent use.
type ProjectionEngine interface {
	Transform(srcDef, dstDef string, x, y float64) (float64, float64, error)
}

// NotationParser turns geometry text into an untyped tree and back.
type NotationParser interface {
	Parse(text string) (domain.RawGeometry, error)
	Serialize(g domain.Geometry) (string, error)
}

// GeometryEngine runs geometric algorithms over notation text. The result is
// either new notation text or a formatted scalar.
type GeometryEngine interface {
	Apply(op, text string, params map[string]string) (string, error)
	Operations() []string
}
