package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/core/registry"
)

type adminService struct {
	registry    *registry.Registry
	repo        ports.VehicleRepository
	broadcaster ports.Broadcaster
	log         zerolog.Logger
	now         func() time.Time
}

// NewAdminService returns the AdminService used by the administrative endpoints.
func NewAdminService(
	reg *registry.Registry,
	repo ports.VehicleRepository,
	broadcaster ports.Broadcaster,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{
		registry:    reg,
		repo:        repo,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "admin").Logger(),
		now:         time.Now,
	}
}

// ClearAll empties the registry and the durable store. The memory count is
// reported even when the store call fails.
func (s *adminService) ClearAll(ctx context.Context) (*ports.ClearResult, error) {
	result := &ports.ClearResult{ClearedFromMemory: s.registry.Clear()}
	metrics.LiveVehicles.Set(0)

	n, err := s.repo.DeleteAll(ctx)
	s.broadcaster.Publish(ctx, domain.Change{Kind: domain.ChangeCleared, Source: SourceAdmin, At: s.now()})
	if err != nil {
		return result, fmt.Errorf("clear sessions: %w", err)
	}
	result.ClearedFromStore = n

	s.log.Info().
		Int("cleared_from_memory", result.ClearedFromMemory).
		Int64("cleared_from_store", result.ClearedFromStore).
		Msg("all sessions cleared")
	return result, nil
}

// RemoveVehicle drops one vehicle from the registry and the store, as happens
// when the owning producer account is deleted.
func (s *adminService) RemoveVehicle(ctx context.Context, vehicleNumber string) error {
	id := strings.TrimSpace(vehicleNumber)
	if id == "" {
		return domain.ErrMissingVehicleID
	}

	state, live := s.registry.Get(id)
	removed := s.registry.Remove(id)
	metrics.LiveVehicles.Set(float64(s.registry.Len()))

	stored, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("vehicle_number", id).Msg("failed to delete persisted vehicle")
	}
	if !removed && !stored {
		if err != nil {
			return fmt.Errorf("remove vehicle: %w", err)
		}
		return domain.ErrVehicleNotFound
	}

	if !live {
		state = domain.VehicleState{VehicleNumber: id}
	}
	s.broadcaster.Publish(ctx, domain.Change{Kind: domain.ChangeRemoved, Vehicle: state, Source: SourceAdmin, At: s.now()})

	s.log.Info().
		Str("vehicle_number", id).
		Bool("removed_from_memory", removed).
		Bool("removed_from_store", stored).
		Msg("vehicle removed")
	return nil
}

// SessionCount reports registry and store population. A store failure is returned.
func (s *adminService) SessionCount(ctx context.Context) (*ports.SessionCount, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count persisted vehicles: %w", err)
	}
	ids := s.registry.IDs()
	return &ports.SessionCount{
		MemoryCount:   len(ids),
		DatabaseCount: n,
		ActiveBuses:   ids,
	}, nil
}

// Vehicles returns the unfiltered registry snapshot.
func (s *adminService) Vehicles() []domain.VehicleState {
	return s.registry.Snapshot()
}
