package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/infrastructure/realtime"
)

// ViewerQuerier answers viewer filter requests.
type ViewerQuerier interface {
	ViewerSnapshot(q domain.VehicleQuery) ([]domain.VehicleState, error)
}

// ViewerHandler serves the viewer channel (/ws/user). Nothing is pushed on
// connect; the connection then receives every fleet broadcast and answers
// its own filter requests.
type ViewerHandler struct {
	viewers ConnectionSet
	query   ViewerQuerier
	opts    SocketOptions
	log     zerolog.Logger
}

func NewViewerHandler(viewers ConnectionSet, query ViewerQuerier, opts SocketOptions, log zerolog.Logger) *ViewerHandler {
	return &ViewerHandler{
		viewers: viewers,
		query:   query,
		opts:    opts,
		log:     log.With().Str("component", "viewer_ws").Logger(),
	}
}

// Serve handles GET /ws/user.
//
// @Summary      Viewer fleet channel
// @Description  Websocket. Request frames: {"queryType":"ALL|BY_ID|BY_STOP","value"?}. Responses and broadcasts are JSON arrays of vehicles with a fix.
// @Tags         realtime
// @Success      101  {string}  string  "switching protocols"
// @Router       /ws/user [get]
func (h *ViewerHandler) Serve(c echo.Context) error {
	conn, client, err := upgrade(c, h.opts)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	h.viewers.Register(client)
	defer h.viewers.Unregister(client)

	err = readFrames(conn, h.opts, func(data []byte) {
		h.handleRequest(c, client, data)
	})
	if isUnexpectedClose(err) {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("viewer connection lost")
	}
	return nil
}

func (h *ViewerHandler) handleRequest(c echo.Context, client *realtime.Client, data []byte) {
	var req viewerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("dropping malformed viewer request")
		return
	}
	if err := c.Validate(&req); err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("dropping invalid viewer request")
		return
	}

	vehicles, err := h.query.ViewerSnapshot(req.toQuery())
	if err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("viewer query rejected")
		return
	}
	out, err := json.Marshal(vehicles)
	if err != nil {
		h.log.Error().Err(err).Msg("encode viewer response")
		return
	}
	client.Enqueue(out)
}
