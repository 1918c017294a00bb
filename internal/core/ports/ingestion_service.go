package ports

import (
	"context"
	"sync"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// ProducerSession tracks which vehicle a producer connection last claimed.
// One session exists per producer connection.
type ProducerSession struct {
	ConnID string

	mu            sync.Mutex
	vehicleNumber string
}

// Claim records vehicleNumber as the identifier owned by this connection.
func (s *ProducerSession) Claim(vehicleNumber string) {
	s.mu.Lock()
	s.vehicleNumber = vehicleNumber
	s.mu.Unlock()
}

// VehicleNumber returns the claimed identifier, or "" if none.
func (s *ProducerSession) VehicleNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicleNumber
}

// IngestionService folds producer events into the live registry.
type IngestionService interface {
	// Handle applies ev. A nil Change with a nil error means the event was a no-op.
	Handle(ctx context.Context, session *ProducerSession, ev domain.VehicleEvent) (*domain.Change, error)
	// Disconnect treats the close of session's connection as an implicit STOP.
	Disconnect(ctx context.Context, session *ProducerSession) (*domain.Change, error)
}
