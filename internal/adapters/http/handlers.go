package http

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

const maxBatchPositions = 10000

type convertPointRequest struct {
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Position domain.Position `json:"position"`
}

type convertPointResponse struct {
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Position domain.Position `json:"position"`
}

type convertPointsRequest struct {
	Source    string            `json:"source"`
	Target    string            `json:"target"`
	Positions []domain.Position `json:"positions"`
}

type convertPointsResponse struct {
	Source    string            `json:"source"`
	Target    string            `json:"target"`
	Positions []domain.Position `json:"positions"`
}

type geometryRequest struct {
	WKT    string `json:"wkt"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

type operationRequest struct {
	WKT    string            `json:"wkt"`
	Params map[string]string `json:"params,omitempty"`
}

type operationResponse struct {
	Operation string `json:"operation"`
	Result    string `json:"result"`
}

type jobRequest struct {
	Source     string   `json:"source"`
	Target     string   `json:"target,omitempty"`
	Geometries []string `json:"geometries"`
}

// ListCRSHandler returns the registry, optionally filtered by axis order
// (?axis=geographic|projected) or a case-insensitive substring (?q=).
func ListCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var axis *domain.AxisOrder
		if a := c.Query("axis"); a != "" {
			var v domain.AxisOrder
			if err := v.UnmarshalText([]byte(a)); err != nil {
				return errBadRequest(c, err.Error())
			}
			axis = &v
		}
		q := strings.ToLower(c.Query("q"))
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		all := deps.Geometry.Registry().Entries()
		entries := make([]domain.CRSEntry, 0, len(all))
		for _, e := range all {
			if axis != nil && e.Axis != *axis {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(e.ID), q) && !strings.Contains(strings.ToLower(e.Title), q) {
				continue
			}
			entries = append(entries, e)
		}

		offset, limit := pageParams(c)
		page, pg := paginate(entries, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetCRSHandler returns one registry entry.
func GetCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := url.PathUnescape(c.Params("id"))
		if err != nil {
			return errBadRequest(c, "invalid CRS identifier")
		}
		e, err := deps.Geometry.LookupCRS(id)
		if err != nil {
			return errNotFound(c, err.Error())
		}
		return c.JSON(e)
	}
}

// ConvertPointHandler converts a single position.
func ConvertPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req convertPointRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.Source == "" {
			return errBadRequest(c, "source is required")
		}
		target := req.Target
		if target == "" {
			target = deps.Geometry.DefaultTarget()
		}

		pos, err := deps.Geometry.ConvertPoint(c.UserContext(), req.Position, req.Source, target)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(convertPointResponse{Source: req.Source, Target: target, Position: pos})
	}
}

// ConvertPointsHandler converts a batch of positions atomically.
func ConvertPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req convertPointsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.Source == "" {
			return errBadRequest(c, "source is required")
		}
		if len(req.Positions) > maxBatchPositions {
			return errBadRequest(c, "too many positions (max 10000)")
		}
		target := req.Target
		if target == "" {
			target = deps.Geometry.DefaultTarget()
		}

		out, err := deps.Geometry.ConvertPoints(c.UserContext(), req.Positions, req.Source, target)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(convertPointsResponse{Source: req.Source, Target: target, Positions: out})
	}
}

// TransformHandler reprojects a WKT geometry. The source CRS is mandatory.
func TransformHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req geometryRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.WKT == "" {
			return errBadRequest(c, "wkt is required")
		}

		out, err := deps.Geometry.TransformWKT(c.UserContext(), req.WKT, req.Source, req.Target)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

// ParseHandler classifies a WKT geometry, reprojecting it when a source CRS
// is supplied.
func ParseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req geometryRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.WKT == "" {
			return errBadRequest(c, "wkt is required")
		}

		out, err := deps.Geometry.Parse(c.UserContext(), req.WKT, req.Source, req.Target)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

// ListOperationsHandler lists the Geometry Engine operations.
func ListOperationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"operations": deps.Geometry.Operations()})
	}
}

// GeometryOperationHandler runs a Geometry Engine operation.
func GeometryOperationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op := c.Params("op")
		var req operationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.WKT == "" {
			return errBadRequest(c, "wkt is required")
		}

		res, err := deps.Geometry.Apply(c.UserContext(), op, req.WKT, req.Params)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(operationResponse{Operation: op, Result: res})
	}
}

// SubmitJobHandler queues a bulk reprojection job on the broker.
func SubmitJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Jobs == nil {
			return errUnavailable(c, "job queue not configured")
		}
		var req jobRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.Source == "" {
			return errBadRequest(c, "source is required")
		}
		if len(req.Geometries) == 0 {
			return errBadRequest(c, "geometries must not be empty")
		}

		job := &domain.ReprojectionJob{SourceCRS: req.Source, TargetCRS: req.Target, Geometries: req.Geometries}
		if err := deps.Jobs.Submit(c.UserContext(), job); err != nil {
			if errors.Is(err, usecases.ErrBrokerUnavailable) {
				return errUnavailable(c, err.Error())
			}
			return errInternal(c, "submit job: "+err.Error())
		}
		c.Set(fiber.HeaderLocation, "/ws?job="+job.ID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":         job.ID,
			"created_at": job.CreatedAt,
			"count":      len(job.Geometries),
		})
	}
}
