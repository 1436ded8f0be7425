package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure at the conversion boundary.
type ErrorKind string

const (
	KindUnknownCRS           ErrorKind = "unknown_crs"
	KindProjectionFailure    ErrorKind = "projection_failed"
	KindMalformedGeometry    ErrorKind = "malformed_geometry"
	KindUnsupportedGeometry  ErrorKind = "unsupported_geometry"
	KindNotationParse        ErrorKind = "parse_failed"
	KindUnsupportedOperation ErrorKind = "unsupported_operation"
)

// Error is the typed failure returned by every conversion operation.
type Error struct {
	Kind    ErrorKind
	Subject string // offending identifier, kind or operation
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUnknownCRS reports identifiers missing from the registry.
func ErrUnknownCRS(ids ...string) *Error {
	subject := ""
	for i, id := range ids {
		if i > 0 {
			subject += ", "
		}
		subject += id
	}
	return &Error{Kind: KindUnknownCRS, Subject: subject, Msg: fmt.Sprintf("unknown CRS identifier(s): %s", subject)}
}

// ErrProjection wraps a projection engine failure.
func ErrProjection(src, dst string, cause error) *Error {
	return &Error{
		Kind:    KindProjectionFailure,
		Subject: src + " -> " + dst,
		Msg:     fmt.Sprintf("transform %s -> %s", src, dst),
		Err:     cause,
	}
}

func ErrMalformed(msg string) *Error {
	return &Error{Kind: KindMalformedGeometry, Msg: msg}
}

func ErrUnsupportedKind(kind string) *Error {
	return &Error{Kind: KindUnsupportedGeometry, Subject: kind, Msg: fmt.Sprintf("unsupported geometry kind %q", kind)}
}

// ErrNotationParse carries the parser message verbatim.
func ErrNotationParse(msg string) *Error {
	return &Error{Kind: KindNotationParse, Msg: msg}
}

func ErrUnsupportedOperation(op string) *Error {
	return &Error{Kind: KindUnsupportedOperation, Subject: op, Msg: fmt.Sprintf("unsupported geometry operation %q", op)}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
