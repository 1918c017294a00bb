// Package realtime holds the observer connection sets and the per-connection
// write pumps that back the viewer and operator channels.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/ports"
)

// Audience is a set of clients receiving the same broadcast stream.
type Audience struct {
	name string
	log  zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

var _ ports.Audience = (*Audience)(nil)

// NewAudience creates an empty connection set. name labels logs and metrics.
func NewAudience(name string, log zerolog.Logger) *Audience {
	return &Audience{
		name:    name,
		log:     log.With().Str("component", "realtime").Str("audience", name).Logger(),
		clients: make(map[string]*Client),
	}
}

// Name returns the audience label.
func (a *Audience) Name() string { return a.name }

// Register adds c to the audience.
func (a *Audience) Register(c *Client) {
	a.mu.Lock()
	a.clients[c.ID] = c
	n := len(a.clients)
	a.mu.Unlock()

	metrics.ObserverConnections.WithLabelValues(a.name).Set(float64(n))
	a.log.Info().Str("conn_id", c.ID).Int("connections", n).Msg("observer connected")
}

// Unregister removes c and closes it. Unknown clients are ignored.
func (a *Audience) Unregister(c *Client) {
	a.mu.Lock()
	_, ok := a.clients[c.ID]
	delete(a.clients, c.ID)
	n := len(a.clients)
	a.mu.Unlock()

	c.Close()
	if !ok {
		return
	}
	metrics.ObserverConnections.WithLabelValues(a.name).Set(float64(n))
	a.log.Info().Str("conn_id", c.ID).Int("connections", n).Msg("observer disconnected")
}

// Broadcast queues msg to every client and returns how many accepted it.
// Clients that are closed or whose queue is full are removed.
func (a *Audience) Broadcast(msg []byte) int {
	a.mu.RLock()
	targets := make([]*Client, 0, len(a.clients))
	for _, c := range a.clients {
		targets = append(targets, c)
	}
	a.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.Enqueue(msg) {
			delivered++
			continue
		}
		metrics.SendFailuresTotal.WithLabelValues(a.name).Inc()
		a.log.Warn().Str("conn_id", c.ID).Msg("dropping observer after failed send")
		a.Unregister(c)
	}
	return delivered
}

// Len returns the number of connected clients.
func (a *Audience) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// CloseAll disconnects every client. Used on shutdown.
func (a *Audience) CloseAll() {
	a.mu.Lock()
	clients := a.clients
	a.clients = make(map[string]*Client)
	a.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	metrics.ObserverConnections.WithLabelValues(a.name).Set(0)
}
