package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/infrastructure/realtime"
)

// ProducerHandler serves the producer channel (/ws/driver). Each connection
// folds its events into the registry through the ingestion service.
type ProducerHandler struct {
	ingest ports.IngestionService
	opts   SocketOptions
	log    zerolog.Logger
}

func NewProducerHandler(ingest ports.IngestionService, opts SocketOptions, log zerolog.Logger) *ProducerHandler {
	return &ProducerHandler{
		ingest: ingest,
		opts:   opts,
		log:    log.With().Str("component", "producer_ws").Logger(),
	}
}

// Serve handles GET /ws/driver.
//
// @Summary      Producer position channel
// @Description  Websocket. Frames: {"vehicleId","action"?,"latitude"?,"longitude"?,"stopLabel"?,"vehicleName"?,"operatorName"?,"operatorPhone"?} or {"type":"PING"}.
// @Tags         realtime
// @Success      101  {string}  string  "switching protocols"
// @Router       /ws/driver [get]
func (h *ProducerHandler) Serve(c echo.Context) error {
	conn, client, err := upgrade(c, h.opts)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	session := &ports.ProducerSession{ConnID: client.ID}
	log := h.log.With().Str("conn_id", client.ID).Logger()
	ctx := c.Request().Context()

	metrics.ObserverConnections.WithLabelValues("producer").Inc()
	log.Info().Msg("producer connected")

	err = readFrames(conn, h.opts, func(data []byte) {
		h.handleFrame(ctx, c, client, session, data, log)
	})
	if isUnexpectedClose(err) {
		log.Warn().Err(err).Msg("producer connection lost")
	}

	client.Close()
	metrics.ObserverConnections.WithLabelValues("producer").Dec()
	if _, err := h.ingest.Disconnect(context.WithoutCancel(ctx), session); err != nil {
		log.Error().Err(err).Msg("implicit stop failed")
	}
	log.Info().Str("vehicle_number", session.VehicleNumber()).Msg("producer disconnected")
	return nil
}

func (h *ProducerHandler) handleFrame(
	ctx context.Context,
	c echo.Context,
	client *realtime.Client,
	session *ports.ProducerSession,
	data []byte,
	log zerolog.Logger,
) {
	var msg producerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.EventsDroppedTotal.WithLabelValues("malformed").Inc()
		log.Warn().Err(err).Msg("dropping malformed producer frame")
		return
	}
	if msg.isKeepalive() {
		pong, _ := json.Marshal(pongMessage{Type: "PONG", Timestamp: time.Now().UnixMilli()})
		client.Enqueue(pong)
		return
	}
	if err := c.Validate(&msg); err != nil {
		metrics.EventsDroppedTotal.WithLabelValues("invalid").Inc()
		log.Warn().Err(err).Str("vehicle_number", msg.VehicleID).Msg("dropping invalid producer frame")
		return
	}

	change, err := h.ingest.Handle(ctx, session, msg.toEvent())
	switch {
	case err == nil:
		log.Debug().
			Str("vehicle_number", change.Vehicle.VehicleNumber).
			Str("kind", string(change.Kind)).
			Msg("producer event applied")
	case errors.Is(err, domain.ErrVehicleNotFound):
		log.Warn().Err(err).Str("vehicle_number", msg.VehicleID).Msg("update for vehicle that is not live")
	default:
		log.Warn().Err(err).Str("vehicle_number", msg.VehicleID).Msg("dropping producer event")
	}
}
