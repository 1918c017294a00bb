package realtime

import (
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 5 * time.Second

// WebSocket adapts a gorilla connection to Socket. Every write carries a
// deadline so a stalled peer cannot hold the pump forever.
type WebSocket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func NewWebSocket(conn *websocket.Conn, writeTimeout time.Duration) *WebSocket {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &WebSocket{conn: conn, writeTimeout: writeTimeout}
}

func (w *WebSocket) WriteText(data []byte) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebSocket) Ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeTimeout))
}

// Close sends a normal close frame, best effort, then drops the connection.
func (w *WebSocket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return w.conn.Close()
}
