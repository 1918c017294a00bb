package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/core/service"
	"github.com/dygon/bus-tracking/internal/infrastructure/realtime"
)

// OperatorFeed builds the messages an operator connection receives directly.
type OperatorFeed interface {
	OperatorWelcome() service.OperatorMessage
	OperatorSnapshot() service.OperatorMessage
	Approve(requestID int64) service.OperatorMessage
}

// OperatorHandler serves the operator channel (/ws/admin).
type OperatorHandler struct {
	operators ConnectionSet
	feed      OperatorFeed
	opts      SocketOptions
	log       zerolog.Logger
}

func NewOperatorHandler(operators ConnectionSet, feed OperatorFeed, opts SocketOptions, log zerolog.Logger) *OperatorHandler {
	return &OperatorHandler{
		operators: operators,
		feed:      feed,
		opts:      opts,
		log:       log.With().Str("component", "operator_ws").Logger(),
	}
}

// Serve handles GET /ws/admin. The connection gets a CONNECTION_SUCCESS
// greeting, then the full fleet, then every change envelope.
//
// @Summary      Operator fleet channel
// @Description  Websocket. Pushes {"type","payload","source","timestamp"} envelopes. Accepts {"type":"APPROVE_REQUEST","requestId":int}.
// @Tags         realtime
// @Success      101  {string}  string  "switching protocols"
// @Router       /ws/admin [get]
func (h *OperatorHandler) Serve(c echo.Context) error {
	conn, client, err := upgrade(c, h.opts)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	h.send(client, h.feed.OperatorWelcome())
	h.operators.Register(client)
	defer h.operators.Unregister(client)
	h.send(client, h.feed.OperatorSnapshot())

	err = readFrames(conn, h.opts, func(data []byte) {
		h.handleControl(c, client, data)
	})
	if isUnexpectedClose(err) {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("operator connection lost")
	}
	return nil
}

func (h *OperatorHandler) handleControl(c echo.Context, client *realtime.Client, data []byte) {
	var msg operatorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("dropping malformed operator frame")
		return
	}
	if err := c.Validate(&msg); err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("dropping invalid operator frame")
		return
	}

	switch msg.Type {
	case service.MsgApproveRequest:
		h.send(client, h.feed.Approve(*msg.RequestID))
		h.log.Info().Str("conn_id", client.ID).Int64("request_id", *msg.RequestID).Msg("request approved")
	default:
		h.log.Debug().Str("conn_id", client.ID).Str("type", msg.Type).Msg("ignoring operator frame")
	}
}

func (h *OperatorHandler) send(client *realtime.Client, msg service.OperatorMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("encode operator message")
		return
	}
	client.Enqueue(data)
}
