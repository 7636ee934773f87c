package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func runHealth(t *testing.T, p Pinger) (int, healthResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/db", nil), rec)

	stats := func() *PoolStats { return &PoolStats{TotalConns: 2, MaxConns: 10} }
	if err := healthHandler(p, stats)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestHealthHandler_Healthy(t *testing.T) {
	code, resp := runHealth(t, fakePinger{})
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Errorf("expected 200 healthy, got %d %s", code, resp.Status)
	}
	if resp.Pool == nil || resp.Pool.MaxConns != 10 {
		t.Errorf("expected pool stats, got %+v", resp.Pool)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	code, resp := runHealth(t, fakePinger{err: errors.New("connection refused")})
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if resp.Status != "unhealthy" || resp.Error != "connection refused" {
		t.Errorf("unexpected body %+v", resp)
	}
}
