package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, unknown_crs, malformed_geometry, ...
	Message   string `json:"message"` // Human-readable message
	Subject   string `json:"subject,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// statusForKind maps the domain error taxonomy onto HTTP statuses.
func statusForKind(k domain.ErrorKind) int {
	switch k {
	case domain.KindUnknownCRS:
		return fiber.StatusBadRequest
	case domain.KindMalformedGeometry, domain.KindNotationParse, domain.KindUnsupportedGeometry,
		domain.KindUnsupportedOperation, domain.KindProjectionFailure:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// errFromDomain renders err using its domain kind. Errors outside the
// taxonomy are logged and hidden behind a 500.
func errFromDomain(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
	status := statusForKind(de.Kind)
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      string(de.Kind),
		Message:   err.Error(),
		Subject:   de.Subject,
		RequestID: reqID,
	})
}

// errorCode is the wire code for err outside an HTTP response.
func errorCode(err error) string {
	if k := domain.KindOf(err); k != "" {
		return string(k)
	}
	return "internal_error"
}
