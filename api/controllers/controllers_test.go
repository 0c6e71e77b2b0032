package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adoptly/adoptly-backend/api/middleware"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["status"] != "ok" {
		t.Fatalf("status field = %q", body.Data["status"])
	}
}

func TestHealthReadyReportsStoreFailure(t *testing.T) {
	handler := HealthReady(stubPinger{err: errors.New("db down")}, nil, quietLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHealthReadySkipsNilPingers(t *testing.T) {
	handler := HealthReady(stubPinger{}, nil, quietLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCallerIDRequiresSeededContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := callerID(req); err == nil {
		t.Fatal("expected error without seeded context")
	}

	id := uuid.New()
	req = req.WithContext(middleware.WithUserID(req.Context(), id.String()))
	got, err := callerID(req)
	if err != nil {
		t.Fatalf("callerID: %v", err)
	}
	if got != id {
		t.Fatalf("caller id = %s, want %s", got, id)
	}
}

func TestPageParamsParsesQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil)
	params := pageParams(req)
	if params.Limit != 10 || params.Cursor != "abc" {
		t.Fatalf("params = %+v", params)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=bogus", nil)
	if params := pageParams(req); params.Limit != 0 {
		t.Fatalf("bogus limit parsed to %d", params.Limit)
	}
}
