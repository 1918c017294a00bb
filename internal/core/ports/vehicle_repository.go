package ports

import (
	"context"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// VehicleRepository is the durable store for vehicle state, keyed by vehicle number.
// The live registry, not the repository, is the source of truth for observers.
type VehicleRepository interface {
	// Upsert creates or replaces the persisted state for state.VehicleNumber.
	Upsert(ctx context.Context, state domain.VehicleState) error
	// FindByStatus returns every persisted vehicle whose last status equals status.
	FindByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.VehicleState, error)
	// Delete removes one vehicle. It reports whether a document was removed.
	Delete(ctx context.Context, vehicleNumber string) (bool, error)
	// DeleteAll removes every vehicle and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// WriteQueue accepts vehicle snapshots for asynchronous persistence.
type WriteQueue interface {
	Enqueue(state domain.VehicleState)
}
