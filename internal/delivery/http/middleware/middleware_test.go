package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"i4e-backend/internal/pkg/jwt"
	"i4e-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

func readEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

func TestErrorMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.Nop()).Middleware())
	app.Get("/app", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Taken", map[string]int{"id": 1}, errors.New("dup"))
	})
	app.Get("/unavailable", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusServiceUnavailable, "", nil, nil)
	})
	app.Get("/plain", func(c fiber.Ctx) error {
		return errors.New("secret detail")
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("boom")
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/app", fiber.StatusConflict, "Taken"},
		{"/unavailable", fiber.StatusServiceUnavailable, "Service Unavailable"},
		{"/plain", fiber.StatusInternalServerError, "Internal Server Error"},
		{"/panic", fiber.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		if err != nil {
			t.Fatalf("%s: %v", tc.path, err)
		}
		body := readEnvelope(t, resp)
		if resp.StatusCode != tc.status || body["message"] != tc.message || body["responseCode"] != float64(tc.status) {
			t.Fatalf("%s: got %d %v", tc.path, resp.StatusCode, body)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewHMACService("a", "r", time.Minute, time.Hour)
	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.Nop()).Middleware())
	app.Use(NewAuthMiddleware(tokens).Middleware())
	app.Get("/me", func(c fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.JSON(fiber.Map{"id": id})
	})

	access, _ := tokens.GenerateAccessToken(12, "a@b.c", jwt.SourceEmail)
	refresh, _ := tokens.GenerateRefreshToken(12)

	cases := []struct {
		header string
		status int
	}{
		{"", fiber.StatusUnauthorized},
		{"Bearer garbage", fiber.StatusUnauthorized},
		{"Bearer " + refresh, fiber.StatusUnauthorized},
		{"Basic " + access, fiber.StatusUnauthorized},
		{"Bearer " + access, fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		body := readEnvelope(t, resp)
		if resp.StatusCode != tc.status {
			t.Fatalf("%q: expected %d, got %d %v", tc.header, tc.status, resp.StatusCode, body)
		}
		if tc.status == fiber.StatusOK && body["id"] != float64(12) {
			t.Fatalf("unexpected body %v", body)
		}
	}
}

func TestAccessLogSetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logger.Nop()).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Fatalf("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	resp, _ = app.Test(req)
	if got := resp.Header.Get(HeaderRequestID); got != "abc" {
		t.Fatalf("request id not propagated: %q", got)
	}
}
