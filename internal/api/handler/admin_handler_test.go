package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
)

type stubAdminService struct {
	clearFn  func(ctx context.Context) (*ports.ClearResult, error)
	removeFn func(ctx context.Context, vehicleNumber string) error
	countFn  func(ctx context.Context) (*ports.SessionCount, error)
	vehicles []domain.VehicleState
}

func (s *stubAdminService) ClearAll(ctx context.Context) (*ports.ClearResult, error) {
	return s.clearFn(ctx)
}

func (s *stubAdminService) RemoveVehicle(ctx context.Context, vehicleNumber string) error {
	return s.removeFn(ctx, vehicleNumber)
}

func (s *stubAdminService) SessionCount(ctx context.Context) (*ports.SessionCount, error) {
	return s.countFn(ctx)
}

func (s *stubAdminService) Vehicles() []domain.VehicleState {
	return s.vehicles
}

func newRequest(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminHandler_ClearSessions(t *testing.T) {
	stub := &stubAdminService{
		clearFn: func(ctx context.Context) (*ports.ClearResult, error) {
			return &ports.ClearResult{ClearedFromMemory: 2, ClearedFromStore: 5}, nil
		},
	}
	c, rec := newRequest(http.MethodDelete, "/api/admin/clear-sessions")

	if err := NewAdminHandler(stub).ClearSessions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["clearedFromMemory"] != float64(2) || resp["clearedFromDatabase"] != float64(5) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAdminHandler_ClearSessions_StoreError(t *testing.T) {
	storeErr := errors.New("mongo unavailable")
	stub := &stubAdminService{
		clearFn: func(ctx context.Context) (*ports.ClearResult, error) {
			return &ports.ClearResult{ClearedFromMemory: 1}, storeErr
		},
	}
	c, _ := newRequest(http.MethodGet, "/api/admin/clear")

	if err := NewAdminHandler(stub).ClearSessions(c); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestAdminHandler_SessionCount(t *testing.T) {
	stub := &stubAdminService{
		countFn: func(ctx context.Context) (*ports.SessionCount, error) {
			return &ports.SessionCount{MemoryCount: 0, DatabaseCount: 3}, nil
		},
	}
	c, rec := newRequest(http.MethodGet, "/api/admin/session-count")

	if err := NewAdminHandler(stub).SessionCount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["databaseCount"] != float64(3) {
		t.Errorf("unexpected databaseCount: %v", resp["databaseCount"])
	}
	if buses, ok := resp["activeBuses"].([]any); !ok || len(buses) != 0 {
		t.Errorf("expected empty activeBuses array, got %v", resp["activeBuses"])
	}
}

func TestAdminHandler_RemoveVehicle(t *testing.T) {
	var got string
	stub := &stubAdminService{
		removeFn: func(ctx context.Context, vehicleNumber string) error {
			got = vehicleNumber
			if vehicleNumber == "NOPE" {
				return domain.ErrVehicleNotFound
			}
			return nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newRequest(http.MethodDelete, "/api/admin/vehicles/V1")
	c.SetParamNames("vehicleNumber")
	c.SetParamValues("V1")
	if err := h.RemoveVehicle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || got != "V1" {
		t.Fatalf("expected 204 for V1, got %d for %q", rec.Code, got)
	}

	c, _ = newRequest(http.MethodDelete, "/api/admin/vehicles/NOPE")
	c.SetParamNames("vehicleNumber")
	c.SetParamValues("NOPE")
	if err := h.RemoveVehicle(c); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestAdminHandler_VehiclesIncludesUnfixed(t *testing.T) {
	stub := &stubAdminService{vehicles: []domain.VehicleState{
		{VehicleNumber: "V1", Latitude: 13.05, Longitude: 80.25, Status: domain.StatusRunning},
		{VehicleNumber: "V2", Status: domain.StatusRunning},
	}}
	c, rec := newRequest(http.MethodGet, "/api/bus/all")

	if err := NewAdminHandler(stub).Vehicles(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []domain.VehicleState
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected both vehicles, got %d", len(resp))
	}
}
