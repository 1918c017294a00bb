package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/dygon/bus-tracking/internal/infrastructure/realtime"
)

const maxFrameBytes = 8 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketOptions tunes every websocket channel.
type SocketOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	// PingInterval is the ping cadence. A connection that shows no traffic
	// for two intervals is considered dead. Zero disables both.
	PingInterval time.Duration
}

// ConnectionSet is the registration side of an observer audience.
type ConnectionSet interface {
	Register(c *realtime.Client)
	Unregister(c *realtime.Client)
}

// upgrade switches the request to a websocket and starts the client's write
// pump. The caller owns the returned connection's read side.
func upgrade(c echo.Context, opts SocketOptions) (*websocket.Conn, *realtime.Client, error) {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil, nil, err
	}
	conn.SetReadLimit(maxFrameBytes)
	if opts.PingInterval > 0 {
		deadline := 2 * opts.PingInterval
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(deadline))
		})
	}

	client := realtime.NewClient(realtime.NewWebSocket(conn, opts.WriteTimeout), opts.SendBuffer)
	go client.Run(opts.PingInterval)
	return conn, client, nil
}

// readFrames calls fn for every text frame until the peer goes away.
func readFrames(conn *websocket.Conn, opts SocketOptions, fn func([]byte)) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if opts.PingInterval > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(2 * opts.PingInterval))
		}
		fn(data)
	}
}

func isUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
