package ports

import (
	"context"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// ClearResult reports how many vehicles an administrative clear removed.
type ClearResult struct {
	ClearedFromMemory int
	ClearedFromStore  int64
}

// SessionCount summarises registry and store population.
type SessionCount struct {
	MemoryCount   int
	DatabaseCount int64
	ActiveBuses   []string
}

// AdminService covers the administrative operations on live sessions.
type AdminService interface {
	ClearAll(ctx context.Context) (*ClearResult, error)
	RemoveVehicle(ctx context.Context, vehicleNumber string) error
	SessionCount(ctx context.Context) (*SessionCount, error)
	Vehicles() []domain.VehicleState
}
