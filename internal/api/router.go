package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/dygon/bus-tracking/docs"
	"github.com/dygon/bus-tracking/internal/api/handler"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/core/service"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Ingestion ports.IngestionService
	Admin     ports.AdminService
	Broadcast *service.BroadcastService
	Viewers   handler.ConnectionSet
	Operators handler.ConnectionSet
	Pingers   []handler.Pinger
	Socket    handler.SocketOptions
	Log       zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(d.Registry)))

	// --- Realtime channels ---
	producer := handler.NewProducerHandler(d.Ingestion, d.Socket, d.Log)
	viewer := handler.NewViewerHandler(d.Viewers, d.Broadcast, d.Socket, d.Log)
	operator := handler.NewOperatorHandler(d.Operators, d.Broadcast, d.Socket, d.Log)

	e.GET("/ws/driver", producer.Serve)
	e.GET("/ws/user", viewer.Serve)
	e.GET("/ws/admin", operator.Serve)

	// --- Admin and fleet REST ---
	admin := handler.NewAdminHandler(d.Admin)
	feed := handler.NewFeedHandler(d.Admin)

	e.DELETE("/api/admin/clear-sessions", admin.ClearSessions)
	e.GET("/api/admin/clear", admin.ClearSessions)
	e.GET("/api/admin/session-count", admin.SessionCount)
	e.DELETE("/api/admin/vehicles/:vehicleNumber", admin.RemoveVehicle)
	e.GET("/api/bus/all", admin.Vehicles)
	e.GET("/api/feed/vehicle-positions", feed.VehiclePositions)

	// --- Health probes ---
	health := handler.NewHealthHandler()
	ready := handler.NewReadinessHandler(d.Pingers...)

	e.GET("/health", health.Liveness)       // liveness
	e.GET("/health/ready", ready.Readiness) // readiness

	// --- Ops ---
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "bustracking",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
