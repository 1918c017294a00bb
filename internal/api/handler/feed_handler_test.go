package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/labstack/echo/v4"
	"google.golang.org/protobuf/proto"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

type staticFleet []domain.VehicleState

func (f staticFleet) Vehicles() []domain.VehicleState { return f }

func newFeedHandler() *FeedHandler {
	h := NewFeedHandler(staticFleet{
		{VehicleNumber: "V1", Latitude: 13.05, Longitude: 80.25, Status: domain.StatusRunning},
		{VehicleNumber: "V2", Status: domain.StatusRunning},
	})
	h.now = func() time.Time { return time.Unix(1700000000, 0) }
	return h
}

func TestFeedHandler_Protobuf(t *testing.T) {
	c, rec := newRequest(http.MethodGet, "/api/feed/vehicle-positions")

	if err := newFeedHandler().VehiclePositions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/x-protobuf" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var msg gtfs.FeedMessage
	if err := proto.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("invalid protobuf: %v", err)
	}
	if len(msg.GetEntity()) != 1 || msg.GetEntity()[0].GetVehicle().GetVehicle().GetId() != "V1" {
		t.Fatalf("expected only V1 in the feed, got %v", msg.GetEntity())
	}
}

func TestFeedHandler_JSON(t *testing.T) {
	c, rec := newRequest(http.MethodGet, "/api/feed/vehicle-positions?format=json")

	if err := newFeedHandler().VehiclePositions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestFeedHandler_UnknownFormat(t *testing.T) {
	c, _ := newRequest(http.MethodGet, "/api/feed/vehicle-positions?format=xml")

	err := newFeedHandler().VehiclePositions(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
