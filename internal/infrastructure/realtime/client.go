package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Socket is the write side of one observer connection.
// Implementations need not be safe for concurrent WriteText calls; Client
// only writes from its pump goroutine.
type Socket interface {
	WriteText(data []byte) error
	Ping() error
	Close() error
}

// Client is one connected observer. Messages are queued on a bounded buffer
// and written by Run, so a slow socket never stalls the broadcaster.
type Client struct {
	ID string

	socket Socket
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewClient wraps socket with an outbound queue of size buffer.
func NewClient(socket Socket, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	return &Client{
		ID:     uuid.NewString(),
		socket: socket,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Enqueue queues msg without blocking. A full queue closes the client and
// reports false, as does a client that is already closed.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.Close()
		return false
	}
}

// Run writes queued messages until the client is closed or a write fails.
// A positive pingInterval sends a ping each interval.
func (c *Client) Run(pingInterval time.Duration) {
	var tick <-chan time.Time
	if pingInterval > 0 {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		tick = t.C
	}
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.socket.WriteText(msg); err != nil {
				return
			}
		case <-tick:
			if err := c.socket.Ping(); err != nil {
				return
			}
		}
	}
}

// Close shuts the socket. It is safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.socket.Close()
	})
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
