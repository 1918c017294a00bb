package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dygon/bus-tracking/internal/core/ports"
)

// AdminHandler exposes the administrative session operations.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ClearSessions handles DELETE /api/admin/clear-sessions and GET /api/admin/clear.
//
// @Summary      Clear every live session
// @Description  Empties the session registry and the durable store.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  clearSessionsResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/clear-sessions [delete]
// @Router       /api/admin/clear [get]
func (h *AdminHandler) ClearSessions(c echo.Context) error {
	res, err := h.service.ClearAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clearSessionsResponse{
		Message:             "all sessions cleared",
		ClearedFromMemory:   res.ClearedFromMemory,
		ClearedFromDatabase: res.ClearedFromStore,
	})
}

// SessionCount handles GET /api/admin/session-count.
//
// @Summary      Count live and persisted sessions
// @Tags         admin
// @Produce      json
// @Success      200  {object}  sessionCountResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/session-count [get]
func (h *AdminHandler) SessionCount(c echo.Context) error {
	count, err := h.service.SessionCount(c.Request().Context())
	if err != nil {
		return err
	}
	active := count.ActiveBuses
	if active == nil {
		active = []string{}
	}
	return c.JSON(http.StatusOK, sessionCountResponse{
		MemoryCount:   count.MemoryCount,
		DatabaseCount: count.DatabaseCount,
		ActiveBuses:   active,
	})
}

// RemoveVehicle handles DELETE /api/admin/vehicles/:vehicleNumber.
// It is called when the owning producer account is deleted.
//
// @Summary      Remove one vehicle
// @Tags         admin
// @Produce      json
// @Param        vehicleNumber  path  string  true  "Vehicle number"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/vehicles/{vehicleNumber} [delete]
func (h *AdminHandler) RemoveVehicle(c echo.Context) error {
	if err := h.service.RemoveVehicle(c.Request().Context(), c.Param("vehicleNumber")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Vehicles handles GET /api/bus/all. Vehicles without a fix are included.
//
// @Summary      List every live vehicle
// @Tags         fleet
// @Produce      json
// @Success      200  {array}  domain.VehicleState
// @Router       /api/bus/all [get]
func (h *AdminHandler) Vehicles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Vehicles())
}
