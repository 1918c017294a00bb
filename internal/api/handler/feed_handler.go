package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/infrastructure/feed"
)

// FleetSource returns the current unfiltered fleet.
type FleetSource interface {
	Vehicles() []domain.VehicleState
}

// FeedHandler serves the live fleet as GTFS-realtime.
type FeedHandler struct {
	fleet FleetSource
	now   func() time.Time
}

func NewFeedHandler(fleet FleetSource) *FeedHandler {
	return &FeedHandler{fleet: fleet, now: time.Now}
}

// VehiclePositions handles GET /api/feed/vehicle-positions.
//
// @Summary      GTFS-realtime vehicle positions
// @Description  Protobuf FeedMessage by default; format=json returns the protojson rendering.
// @Tags         fleet
// @Produce      application/x-protobuf
// @Produce      json
// @Param        format  query  string  false  "protobuf (default) or json"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Router       /api/feed/vehicle-positions [get]
func (h *FeedHandler) VehiclePositions(c echo.Context) error {
	format := feed.Format(c.QueryParam("format"))
	switch format {
	case "":
		format = feed.FormatProtobuf
	case feed.FormatProtobuf, feed.FormatJSON:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be protobuf or json")
	}

	msg := feed.BuildVehiclePositions(h.fleet.Vehicles(), h.now())
	data, contentType, err := feed.Encode(msg, format)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, data)
}
