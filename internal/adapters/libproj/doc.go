// Package libproj implements ports.ProjectionEngine on the PROJ C library
// through github.com/pebbe/proj/v5. It needs cgo and libproj, so it is only
// compiled with the libproj build tag:
//
//	go build -tags libproj ./cmd/api
//
// Each definition is instantiated once per engine. Transformations go
// through geographic radians: the source is inverted, the target applied
// forward. Datum shifts declared with +towgs84 are not applied.
package libproj
