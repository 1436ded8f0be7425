package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// reprojectSunset is when the /v1/reproject alias goes away.
var reprojectSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many requests, please try again later",
			})
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/reproject", SunsetDate: reprojectSunset, Alternative: "/v1/transform"},
	}))

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// CRS registry
	v1.Get("/crs", timeout.NewWithContext(ListCRSHandler(deps), requestTimeout))
	v1.Get("/crs/:id", timeout.NewWithContext(GetCRSHandler(deps), requestTimeout))

	// Conversion
	v1.Post("/convert/point", timeout.NewWithContext(ConvertPointHandler(deps), requestTimeout))
	v1.Post("/convert/points", timeout.NewWithContext(ConvertPointsHandler(deps), requestTimeout))
	v1.Post("/transform", timeout.NewWithContext(TransformHandler(deps), requestTimeout))
	v1.Post("/reproject", timeout.NewWithContext(TransformHandler(deps), requestTimeout))
	v1.Post("/parse", timeout.NewWithContext(ParseHandler(deps), requestTimeout))

	// Geometry engine
	v1.Get("/geometry", timeout.NewWithContext(ListOperationsHandler(deps), requestTimeout))
	v1.Post("/geometry/:op", timeout.NewWithContext(GeometryOperationHandler(deps), requestTimeout))

	// Bulk jobs
	v1.Post("/jobs", timeout.NewWithContext(SubmitJobHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
