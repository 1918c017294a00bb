package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/core/registry"
)

// RecoveryReport summarises one Restore run.
type RecoveryReport struct {
	Found    int
	Restored int
	Skipped  int
}

// RecoveryService re-seeds the registry from the durable store at startup so
// running vehicles stay visible before their producers reconnect.
type RecoveryService struct {
	registry *registry.Registry
	repo     ports.VehicleRepository
	log      zerolog.Logger
}

func NewRecoveryService(reg *registry.Registry, repo ports.VehicleRepository, log zerolog.Logger) *RecoveryService {
	return &RecoveryService{
		registry: reg,
		repo:     repo,
		log:      log.With().Str("component", "recovery").Logger(),
	}
}

// Restore clears the registry and inserts every persisted RUNNING vehicle
// verbatim, stale coordinates included. Bad entries are skipped; a store
// failure leaves the registry empty and is returned.
func (s *RecoveryService) Restore(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport

	if n := s.registry.Clear(); n > 0 {
		s.log.Warn().Int("cleared", n).Msg("registry was not empty before recovery")
	}

	running, err := s.repo.FindByStatus(ctx, domain.StatusRunning)
	if err != nil {
		metrics.LiveVehicles.Set(0)
		return report, fmt.Errorf("recovery: load running vehicles: %w", err)
	}
	report.Found = len(running)

	for _, v := range running {
		if err := s.restoreOne(v); err != nil {
			report.Skipped++
			metrics.VehiclesRecoveredTotal.WithLabelValues("skipped").Inc()
			s.log.Warn().Err(err).Str("vehicle_number", v.VehicleNumber).Msg("skipping persisted vehicle")
			continue
		}
		report.Restored++
		metrics.VehiclesRecoveredTotal.WithLabelValues("restored").Inc()
		s.log.Debug().
			Str("vehicle_number", v.VehicleNumber).
			Str("operator", v.OperatorName).
			Msg("vehicle restored")
	}

	metrics.LiveVehicles.Set(float64(s.registry.Len()))
	s.log.Info().
		Int("found", report.Found).
		Int("restored", report.Restored).
		Int("skipped", report.Skipped).
		Int("registry_size", s.registry.Len()).
		Msg("recovery completed")

	return report, nil
}

func (s *RecoveryService) restoreOne(v domain.VehicleState) error {
	id := strings.TrimSpace(v.VehicleNumber)
	if id == "" {
		return domain.ErrMissingVehicleID
	}
	if !domain.ValidCoordinates(v.Latitude, v.Longitude) {
		return fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinates, v.Latitude, v.Longitude)
	}
	v.VehicleNumber = id
	s.registry.Upsert(id, v)
	return nil
}
