package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cachePolicy maps a path prefix to the Cache-Control value for GET responses.
// The first matching prefix wins.
var cachePolicy = []struct {
	prefix string
	value  string
}{
	{"/v1/health", "public, max-age=10"},
	{"/v1/ready", "no-cache"},
	{"/metrics", "no-cache"},
	{"/v1/crs", "public, max-age=3600"}, // registry is immutable for the process lifetime
	{"/v1/geometry", "public, max-age=3600"},
	{"/docs", "public, max-age=600"},
	{"/v1/", "public, max-age=300"},
}

// CachingMiddleware sets Cache-Control headers on GET responses that the
// handler left without one. Other methods get no-store.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		if c.Method() != fiber.MethodGet {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}

		path := c.Path()
		for _, p := range cachePolicy {
			if strings.HasPrefix(path, p.prefix) {
				c.Set(fiber.HeaderCacheControl, p.value)
				break
			}
		}
		return err
	}
}

// ETagMiddleware computes a weak ETag from successful GET bodies and answers
// 304 Not Modified when If-None-Match already lists it.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		for _, candidate := range strings.Split(c.Get(fiber.HeaderIfNoneMatch), ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == etag || candidate == "*" {
				c.Status(fiber.StatusNotModified)
				c.Response().ResetBody()
				return nil
			}
		}
		return nil
	}
}
