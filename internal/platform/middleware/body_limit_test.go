package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1M", 1 << 20},
		{"10MB", 10 << 20},
		{"512K", 512 << 10},
		{"64kb", 64 << 10},
		{"1G", 1 << 30},
		{"1024", 1024},
		{"", 1 << 20},
		{"invalid", 1 << 20},
		{"-5", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.input); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func readAll(c echo.Context) error {
	if _, err := io.ReadAll(c.Request().Body); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d, got %v", code, err)
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", strings.NewReader(`{"patient_name":"A"}`))
	rec := httptest.NewRecorder()

	if err := BodyLimit("1K", "1M")(readAll)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestBodyLimit_RejectsByContentLength(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", strings.NewReader(strings.Repeat("a", 2048)))
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := BodyLimit("1K", "1M")(func(echo.Context) error { called = true; return nil })(c)
	expectStatus(t, err, http.StatusRequestEntityTooLarge)
	if called {
		t.Error("handler should not run")
	}
}

func TestBodyLimit_RejectsWhileReading(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", strings.NewReader(strings.Repeat("a", 2048)))
	req.ContentLength = -1

	err := BodyLimit("1K", "1M")(readAll)(e.NewContext(req, httptest.NewRecorder()))
	expectStatus(t, err, http.StatusRequestEntityTooLarge)
}

func TestBodyLimit_LargePath(t *testing.T) {
	e := echo.New()
	body := strings.Repeat("a", 4096)
	mw := BodyLimit("1K", "1M", "/smartphrase/render")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/smartphrase/render", strings.NewReader(body))
	if err := mw(readAll)(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("render path should accept 4K, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/sheets", strings.NewReader(body))
	expectStatus(t, mw(readAll)(e.NewContext(req, httptest.NewRecorder())), http.StatusRequestEntityTooLarge)
}

func TestBodyLimit_NoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sheets", nil)
	if err := BodyLimit("1", "1")(readAll)(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
