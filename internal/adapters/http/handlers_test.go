package http_test

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/reproj/internal/adapters/geomengine"
	handler "github.com/samirrijal/reproj/internal/adapters/http"
	"github.com/samirrijal/reproj/internal/adapters/proj"
	"github.com/samirrijal/reproj/internal/adapters/wkt"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
)

// ---- Mock publisher ----

type mockPublisher struct {
	mu     sync.Mutex
	jobs   []*domain.ReprojectionJob
	jobErr error
}

func (m *mockPublisher) PublishJob(ctx context.Context, job *domain.ReprojectionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return m.jobErr
}
func (m *mockPublisher) PublishJobResult(ctx context.Context, res *domain.ReprojectionResult) error {
	return nil
}
func (m *mockPublisher) PublishConversion(ctx context.Context, ev *domain.ConversionEvent) error {
	return nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func newGeometryService(t *testing.T) *usecases.GeometryService {
	t.Helper()
	engine, err := proj.New(16)
	if err != nil {
		t.Fatalf("proj engine: %v", err)
	}
	parser := wkt.New(-1)
	pt := usecases.NewPointTransformer(usecases.BuiltinRegistry(), engine, nil)
	classifier := usecases.NewClassifier(parser, usecases.NewGeometryTransformer(pt), domain.DefaultTargetCRS)
	return usecases.NewGeometryService(classifier, parser, geomengine.New(parser, usecases.Classify), nil, nil, 60)
}

func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{Geometry: newGeometryService(t)}
	for _, o := range opts {
		o(d)
	}
	return d
}

func post(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Subject string `json:"subject"`
}

func decodeError(t *testing.T, body []byte) apiError {
	t.Helper()
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return e
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-API-Version") == "" {
		t.Error("expected X-API-Version header")
	}
}

func TestReady_NoBackendsConfigured(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Checks["registry"] != "ok" || body.Checks["database"] != "not configured" {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

// ---- CRS registry ----

func TestListCRS_FilterAndPaginate(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/crs?axis=geographic&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data       []domain.CRSEntry `json:"data"`
		Pagination struct {
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 2 || result.Pagination.Limit != 2 {
		t.Fatalf("expected a page of 2, got %d (limit %d)", len(result.Data), result.Pagination.Limit)
	}
	for _, e := range result.Data {
		if e.Axis != domain.Geographic {
			t.Errorf("%s: expected geographic entry", e.ID)
		}
	}
	if result.Pagination.Total > 2 && resp.Header.Get("Link") == "" {
		t.Error("expected Link header for further pages")
	}
}

func TestListCRS_Query(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/crs?q=pseudo-mercator", nil), -1)
	var result struct {
		Data []domain.CRSEntry `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 || result.Data[0].ID != "EPSG:3857" {
		t.Errorf("expected only EPSG:3857, got %+v", result.Data)
	}
}

func TestListCRS_BadAxis(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/crs?axis=sideways", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetCRS(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/crs/EPSG:4326", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var e domain.CRSEntry
	json.NewDecoder(resp.Body).Decode(&e)
	if e.Axis != domain.Geographic || e.Title != "WGS 84" {
		t.Errorf("unexpected entry %+v", e)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/crs/EPSG:99999", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestGetCRS_ETag(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/crs/EPSG:3857", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/crs/EPSG:3857", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Conversion ----

func TestConvertPoint_GeographicToProjected(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/convert/point",
		`{"source":"EPSG:4326","target":"EPSG:3857","position":{"lat":0,"lon":10}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out struct {
		Position domain.Position `json:"position"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Position.Axis != domain.Projected {
		t.Fatalf("expected x/y output, got %s", body)
	}
	if math.Abs(out.Position.X-1113194.9079) > 0.01 || math.Abs(out.Position.Y) > 0.01 {
		t.Errorf("unexpected position %+v", out.Position)
	}
}

func TestConvertPoint_DefaultTarget(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/convert/point",
		`{"source":"EPSG:3857","position":{"x":0,"y":0}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out struct {
		Target   string          `json:"target"`
		Position domain.Position `json:"position"`
	}
	json.Unmarshal(body, &out)
	if out.Target != domain.DefaultTargetCRS || out.Position.Axis != domain.Geographic {
		t.Errorf("expected lat/lon in %s, got %s", domain.DefaultTargetCRS, body)
	}
}

func TestConvertPoint_Errors(t *testing.T) {
	app := setupApp(makeDeps(t))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing source", `{"position":{"lat":0,"lon":0}}`, 400, "bad_request"},
		{"unknown source", `{"source":"EPSG:99999","position":{"x":0,"y":0}}`, 400, "unknown_crs"},
		{"axis mismatch", `{"source":"EPSG:4326","target":"EPSG:3857","position":{"x":0,"y":0}}`, 422, "malformed_geometry"},
		{"mixed fields", `{"source":"EPSG:4326","position":{"lat":0,"x":0}}`, 400, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/v1/convert/point", tt.body)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, status, body)
			}
			if e := decodeError(t, body); e.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, e.Code)
			}
		})
	}
}

func TestConvertPoints_Batch(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/convert/points",
		`{"source":"EPSG:4326","target":"EPSG:3857","positions":[{"lat":0,"lon":0},{"lat":0,"lon":10}]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out struct {
		Positions []domain.Position `json:"positions"`
	}
	json.Unmarshal(body, &out)
	if len(out.Positions) != 2 || out.Positions[1].X <= out.Positions[0].X {
		t.Errorf("expected two ordered positions, got %s", body)
	}
}

func TestConvertPoints_AtomicFailure(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/convert/points",
		`{"source":"EPSG:4326","target":"EPSG:3857","positions":[{"lat":0,"lon":0},{"x":1,"y":1}]}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
}

func TestTransform(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/transform",
		`{"wkt":"LINESTRING (0 0, 10 0)","source":"EPSG:4326","target":"EPSG:3857"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out usecases.GeometryOutput
	json.Unmarshal(body, &out)
	if out.Kind != domain.LineStringKind || out.Points != 2 || out.TargetCRS != "EPSG:3857" {
		t.Errorf("unexpected output %+v", out)
	}
	if !strings.HasPrefix(out.WKT, "LINESTRING") {
		t.Errorf("expected LINESTRING output, got %s", out.WKT)
	}
}

func TestTransform_Errors(t *testing.T) {
	app := setupApp(makeDeps(t))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing wkt", `{"source":"EPSG:4326"}`, 400, "bad_request"},
		{"missing source", `{"wkt":"POINT (1 1)"}`, 400, "unknown_crs"},
		{"parse failure", `{"wkt":"POINT (1","source":"EPSG:4326"}`, 422, "parse_failed"},
		{"unclosed ring", `{"wkt":"POLYGON ((0 0, 1 0, 1 1, 0 1))","source":"EPSG:4326"}`, 422, "malformed_geometry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/v1/transform", tt.body)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, status, body)
			}
			if e := decodeError(t, body); e.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, e.Code)
			}
		})
	}
}

func TestReproject_Deprecated(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/reproject",
		strings.NewReader(`{"wkt":"POINT (10 0)","source":"EPSG:4326","target":"EPSG:3857"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" || resp.Header.Get("Sunset") == "" {
		t.Error("expected Deprecation and Sunset headers")
	}
	if !strings.Contains(resp.Header.Get("Link"), "/v1/transform") {
		t.Errorf("expected successor link, got %q", resp.Header.Get("Link"))
	}
}

func TestParse_WithoutSource(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/parse", `{"wkt":"MULTIPOINT ((1 2), (3 4))"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out usecases.GeometryOutput
	json.Unmarshal(body, &out)
	if out.Kind != domain.MultiPointKind || out.Points != 2 || out.TargetCRS != "" {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestParse_TargetWithoutSourceNotReported(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/parse", `{"wkt":"POINT (28.9784 41.0082)","target":"EPSG:3857"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out usecases.GeometryOutput
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.TargetCRS != "" || out.WKT != "POINT (28.9784 41.0082)" {
		t.Errorf("expected untouched geometry without a target label, got %+v", out)
	}
}

// ---- Geometry engine ----

func TestGeometryOperations(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geometry", nil), -1)
	var list struct {
		Operations []string `json:"operations"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Operations) == 0 {
		t.Fatal("expected operations")
	}

	status, body := post(t, app, "/v1/geometry/area", `{"wkt":"POLYGON ((0 0, 2 0, 2 2, 0 2, 0 0))"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out struct {
		Operation string `json:"operation"`
		Result    string `json:"result"`
	}
	json.Unmarshal(body, &out)
	if out.Operation != "area" || out.Result != "4" {
		t.Errorf("unexpected result %s", body)
	}
}

func TestGeometryOperation_Unsupported(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/v1/geometry/buffer", `{"wkt":"POINT (0 0)"}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	if e := decodeError(t, body); e.Code != "unsupported_operation" || e.Subject != "buffer" {
		t.Errorf("unexpected error %+v", e)
	}
}

// ---- Jobs ----

func TestSubmitJob_NoBroker(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, _ := post(t, app, "/v1/jobs", `{"source":"EPSG:4326","geometries":["POINT (1 1)"]}`)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestSubmitJob_Accepted(t *testing.T) {
	pub := &mockPublisher{}
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Jobs = usecases.NewJobService(d.Geometry, pub)
	})
	app := setupApp(deps)

	status, body := post(t, app, "/v1/jobs",
		`{"source":"EPSG:4326","target":"EPSG:3857","geometries":["POINT (1 1)","POINT (2 2)"]}`)
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, body)
	}
	var out struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	json.Unmarshal(body, &out)
	if out.ID == "" || out.Count != 2 {
		t.Errorf("unexpected response %s", body)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].ID != out.ID {
		t.Errorf("expected the job to be published, got %+v", pub.jobs)
	}
}

func TestSubmitJob_Validation(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Jobs = usecases.NewJobService(d.Geometry, &mockPublisher{})
	})
	app := setupApp(deps)

	for _, body := range []string{
		`{"geometries":["POINT (1 1)"]}`,
		`{"source":"EPSG:4326","geometries":[]}`,
		`not json`,
	} {
		if status, _ := post(t, app, "/v1/jobs", body); status != 400 {
			t.Errorf("%s: expected 400, got %d", body, status)
		}
	}
}

// ---- GraphQL ----

func TestGraphQL_CRSAndConvert(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, body := post(t, app, "/graphql",
		`{"query":"{ crs(id: \"EPSG:4326\") { id axis_order } convertPoint(source: \"EPSG:4326\", target: \"EPSG:3857\", lat: 0, lon: 0) { x y } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var out struct {
		Data struct {
			CRS struct {
				ID        string `json:"id"`
				AxisOrder string `json:"axis_order"`
			} `json:"crs"`
			ConvertPoint struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"convertPoint"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors %v", out.Errors)
	}
	if out.Data.CRS.AxisOrder != "geographic" {
		t.Errorf("unexpected crs %+v", out.Data.CRS)
	}
	if math.Abs(out.Data.ConvertPoint.X) > 1e-6 || math.Abs(out.Data.ConvertPoint.Y) > 1e-6 {
		t.Errorf("expected origin, got %+v", out.Data.ConvertPoint)
	}
}

func TestGraphQL_TransformError(t *testing.T) {
	app := setupApp(makeDeps(t))

	_, body := post(t, app, "/graphql",
		`{"query":"{ transformGeometry(wkt: \"POINT (1 1)\", source: \"EPSG:99999\") { wkt } }"}`)
	var out struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.Unmarshal(body, &out)
	if len(out.Errors) == 0 || !strings.Contains(out.Errors[0].Message, "EPSG:99999") {
		t.Errorf("expected unknown CRS error, got %s", body)
	}
}

// ---- Docs ----

func TestDocs_OpenAPIJSON(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Info.Title != "Reproj API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/v1/transform"]; !ok {
		t.Error("expected /v1/transform in paths")
	}
}

func TestDocs_OpenAPIYAML(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(string(readBody(t, resp.Body)), "openapi:") {
		t.Error("expected raw yaml document")
	}
}
