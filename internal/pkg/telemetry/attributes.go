package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the services.
const (
	AttrSourceCRS    = attribute.Key("reproj.crs.source")
	AttrTargetCRS    = attribute.Key("reproj.crs.target")
	AttrGeometryKind = attribute.Key("reproj.geometry.kind")
	AttrPoints       = attribute.Key("reproj.geometry.points")
	AttrOperation    = attribute.Key("reproj.geometry.op")
	AttrJobID        = attribute.Key("reproj.job.id")
)
