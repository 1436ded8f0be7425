package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// positionMap renders a Position with only the fields of its axis order set.
func positionMap(p domain.Position) map[string]interface{} {
	if p.Axis == domain.Geographic {
		return map[string]interface{}{"lat": p.Lat, "lon": p.Lon, "axis_order": p.Axis.String()}
	}
	return map[string]interface{}{"x": p.X, "y": p.Y, "axis_order": p.Axis.String()}
}

func crsMap(e domain.CRSEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":         e.ID,
		"title":      e.Title,
		"definition": e.Definition,
		"axis_order": e.Axis.String(),
	}
}

// positionArg reads {lat, lon} or {x, y} from resolver arguments.
func positionArg(args map[string]interface{}) (domain.Position, error) {
	lat, hasLat := args["lat"].(float64)
	lon, hasLon := args["lon"].(float64)
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	switch {
	case (hasLat || hasLon) && (hasX || hasY):
		return domain.Position{}, domain.ErrMalformed("position must carry either lat/lon or x/y, not both")
	case hasLat && hasLon:
		return domain.LatLon(lat, lon), nil
	case hasX && hasY:
		return domain.EastNorth(x, y), nil
	}
	return domain.Position{}, domain.ErrMalformed("position requires lat/lon or x/y")
}

// buildSchema creates the GraphQL schema wired to the geometry service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	crsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CRS",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"title":      &graphql.Field{Type: graphql.String},
			"definition": &graphql.Field{Type: graphql.String},
			"axis_order": &graphql.Field{Type: graphql.String},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lat":        &graphql.Field{Type: graphql.Float},
			"lon":        &graphql.Field{Type: graphql.Float},
			"x":          &graphql.Field{Type: graphql.Float},
			"y":          &graphql.Field{Type: graphql.Float},
			"axis_order": &graphql.Field{Type: graphql.String},
		},
	})

	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geometry",
		Fields: graphql.Fields{
			"kind":       &graphql.Field{Type: graphql.String},
			"wkt":        &graphql.Field{Type: graphql.String},
			"points":     &graphql.Field{Type: graphql.Int},
			"source_crs": &graphql.Field{Type: graphql.String},
			"target_crs": &graphql.Field{Type: graphql.String},
		},
	})

	optionalString := func(p graphql.ResolveParams, name string) string {
		s, _ := p.Args[name].(string)
		return s
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"crs": &graphql.Field{
				Type:        crsType,
				Description: "Look up a CRS by identifier",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					e, err := deps.Geometry.LookupCRS(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return crsMap(e), nil
				},
			},
			"crsList": &graphql.Field{
				Type:        graphql.NewList(crsType),
				Description: "List registered CRSs",
				Args: graphql.FieldConfigArgument{
					"axis_order": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var filter *domain.AxisOrder
					if a := optionalString(p, "axis_order"); a != "" {
						var v domain.AxisOrder
						if err := v.UnmarshalText([]byte(a)); err != nil {
							return nil, err
						}
						filter = &v
					}
					var out []map[string]interface{}
					for _, e := range deps.Geometry.Registry().Entries() {
						if filter != nil && e.Axis != *filter {
							continue
						}
						out = append(out, crsMap(e))
					}
					return out, nil
				},
			},
			"convertPoint": &graphql.Field{
				Type:        positionType,
				Description: "Convert one position between CRSs",
				Args: graphql.FieldConfigArgument{
					"source": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"target": &graphql.ArgumentConfig{Type: graphql.String},
					"lat":    &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":    &graphql.ArgumentConfig{Type: graphql.Float},
					"x":      &graphql.ArgumentConfig{Type: graphql.Float},
					"y":      &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos, err := positionArg(p.Args)
					if err != nil {
						return nil, err
					}
					target := optionalString(p, "target")
					if target == "" {
						target = deps.Geometry.DefaultTarget()
					}
					out, err := deps.Geometry.ConvertPoint(p.Context, pos, p.Args["source"].(string), target)
					if err != nil {
						return nil, err
					}
					return positionMap(out), nil
				},
			},
			"transformGeometry": &graphql.Field{
				Type:        geometryType,
				Description: "Parse a WKT geometry and reproject it",
				Args: graphql.FieldConfigArgument{
					"wkt":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"source": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"target": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					out, err := deps.Geometry.TransformWKT(p.Context,
						p.Args["wkt"].(string), p.Args["source"].(string), optionalString(p, "target"))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"kind":       string(out.Kind),
						"wkt":        out.WKT,
						"points":     out.Points,
						"source_crs": out.SourceCRS,
						"target_crs": out.TargetCRS,
					}, nil
				},
			},
			"operations": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Geometry engine operations",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Geometry.Operations(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
