package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"i4e-backend/internal/delivery/http/middleware"
	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type stubCareers struct {
	usecase.CareerUsecase
	created   career.Details
	createErr error
	listed    *bool
	view      string
}

func (s *stubCareers) CreateCareer(_ context.Context, d career.Details, _ int64) (int64, error) {
	s.created = d
	return 42, s.createErr
}

func (s *stubCareers) ListCareers(_ context.Context, onlyActive bool) ([]career.Career, error) {
	s.listed = &onlyActive
	return []career.Career{{ID: 1, Name: "Pilot"}}, nil
}

func (s *stubCareers) GetCareerDetails(_ context.Context, slug, view string) (career.CareerDetails, error) {
	s.view = view
	if slug == "missing" {
		return career.CareerDetails{}, usecase.ErrNotFound
	}
	return career.CareerDetails{Career: career.Career{ID: 1, Slug: slug}}, nil
}

type stubBulk struct {
	usecase.BulkUploadUsecase
	gotData []byte
	gotUser int64
	res     usecase.BulkUploadResult
	err     error
}

func (s *stubBulk) Upload(_ context.Context, userID int64, data []byte) (usecase.BulkUploadResult, error) {
	s.gotUser, s.gotData = userID, data
	return s.res, s.err
}

type stubSearch struct {
	usecase.SearchUsecase
	limit int
	err   error
}

func (s *stubSearch) Search(_ context.Context, q string, limit int) ([]usecase.CareerSearchItem, error) {
	s.limit = limit
	return []usecase.CareerSearchItem{{CareerID: 3, Name: q}}, s.err
}

type envelope struct {
	ResponseCode int             `json:"responseCode"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
}

func newTestApp(h *CareerLibraryHandler, userID int64) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(logger.Nop()).Middleware())
	app.Use(func(c fiber.Ctx) error {
		if userID > 0 {
			c.Locals(middleware.CtxUserIDKey, userID)
		}
		return c.Next()
	})
	h.RegisterRoutes(app.Group("/career-library"))
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if env.ResponseCode != resp.StatusCode {
		t.Fatalf("envelope code %d != status %d", env.ResponseCode, resp.StatusCode)
	}
	return resp.StatusCode, env
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestCreateCareer(t *testing.T) {
	careers := &stubCareers{}
	app := newTestApp(NewCareerLibraryHandler(careers, nil, nil, nil), 9)

	req := httptest.NewRequest(http.MethodPost, "/career-library/career", bytes.NewBufferString(`{"careerName":"Pilot","otherNames":["Aviator"]}`))
	req.Header.Set("Content-Type", "application/json")
	status, env := do(t, app, req)

	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, env.Message)
	}
	if careers.created.CareerName != "Pilot" || len(careers.created.OtherNames) != 1 {
		t.Fatalf("payload not bound: %+v", careers.created)
	}
	if string(env.Data) != `{"careerId":42}` {
		t.Fatalf("unexpected data %s", env.Data)
	}
}

func TestCreateCareer_RequiresUser(t *testing.T) {
	app := newTestApp(NewCareerLibraryHandler(&stubCareers{}, nil, nil, nil), 0)
	req := httptest.NewRequest(http.MethodPost, "/career-library/career", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if status, _ := do(t, app, req); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestGetCareer(t *testing.T) {
	careers := &stubCareers{}
	app := newTestApp(NewCareerLibraryHandler(careers, nil, nil, nil), 1)

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career?onlyActive=false", nil))
	if status != fiber.StatusOK || careers.listed == nil || *careers.listed {
		t.Fatalf("expected list of all careers, status %d", status)
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career?slug=pilot", nil))
	if status != fiber.StatusOK || careers.view != usecase.ViewClient {
		t.Fatalf("expected client view, got %d %q", status, careers.view)
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career?slug=pilot&queryFrom=admin", nil))
	if status != fiber.StatusOK || careers.view != usecase.ViewAdmin {
		t.Fatalf("expected admin view, got %d %q", status, careers.view)
	}

	if status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career?slug=missing", nil)); status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career?slug=x&queryFrom=robot", nil)); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestBulkUpload(t *testing.T) {
	bulk := &stubBulk{res: usecase.BulkUploadResult{UploadID: "u", Rows: []pipeline.RowResult{{Row: 2, CareerName: "Pilot"}}}}
	app := newTestApp(NewCareerLibraryHandler(nil, nil, bulk, nil), 5)

	body, ct := multipartBody(t, "csv", "careers.csv", []byte("Jobs\nPilot\n"))
	req := httptest.NewRequest(http.MethodPost, "/career-library/bulk-upload", body)
	req.Header.Set("Content-Type", ct)
	status, env := do(t, app, req)

	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, env.Message)
	}
	if bulk.gotUser != 5 || string(bulk.gotData) != "Jobs\nPilot\n" {
		t.Fatalf("upload got user %d data %q", bulk.gotUser, bulk.gotData)
	}
	var rows []map[string]any
	if err := json.Unmarshal(env.Data, &rows); err != nil || len(rows) != 1 || rows[0]["jobs"] != "Pilot" {
		t.Fatalf("unexpected rows %s", env.Data)
	}
}

func TestBulkUpload_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"malformed", &pipeline.MalformedInputError{Reason: "no header row"}, fiber.StatusBadRequest, "malformed input: no header row"},
		{"row failure", &pipeline.RowError{Row: 7, CareerName: "Pilot", Err: errors.New("db down")}, fiber.StatusInternalServerError, "Failed to save row 7"},
		{"in progress", usecase.ErrUploadInProgress, fiber.StatusConflict, "A bulk upload is already running for this user"},
		{"lock down", usecase.ErrServiceUnavailable, fiber.StatusServiceUnavailable, "Service Unavailable"},
		{"other", fmt.Errorf("%w: boom", usecase.ErrInternal), fiber.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(NewCareerLibraryHandler(nil, nil, &stubBulk{err: tc.err}, nil), 5)
			body, ct := multipartBody(t, "file", "careers.csv", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/career-library/bulk-upload", body)
			req.Header.Set("Content-Type", ct)

			status, env := do(t, app, req)
			if status != tc.status || env.Message != tc.message {
				t.Fatalf("got %d %q, want %d %q", status, env.Message, tc.status, tc.message)
			}
		})
	}
}

func TestBulkUpload_MissingFile(t *testing.T) {
	bulk := &stubBulk{}
	app := newTestApp(NewCareerLibraryHandler(nil, nil, bulk, nil), 5)
	body, ct := multipartBody(t, "other", "x.csv", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/career-library/bulk-upload", body)
	req.Header.Set("Content-Type", ct)

	if status, _ := do(t, app, req); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if bulk.gotUser != 0 {
		t.Fatalf("usecase must not run")
	}
}

func TestSearch(t *testing.T) {
	s := &stubSearch{}
	app := newTestApp(NewCareerLibraryHandler(nil, nil, nil, s), 1)

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career/search?q=pilot&limit=7", nil))
	if status != fiber.StatusOK || s.limit != 7 {
		t.Fatalf("got %d limit %d", status, s.limit)
	}
	var items []usecase.CareerSearchItem
	if err := json.Unmarshal(env.Data, &items); err != nil || len(items) != 1 || items[0].Name != "pilot" {
		t.Fatalf("unexpected data %s", env.Data)
	}

	if status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/career-library/career/search?q=pilot&limit=abc", nil)); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}
