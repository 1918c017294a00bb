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

type ingestionService struct {
	registry    *registry.Registry
	writes      ports.WriteQueue
	broadcaster ports.Broadcaster
	log         zerolog.Logger
	now         func() time.Time
}

// NewIngestionService returns an IngestionService that mutates reg, queues
// every new state on writes and publishes the change through broadcaster.
func NewIngestionService(
	reg *registry.Registry,
	writes ports.WriteQueue,
	broadcaster ports.Broadcaster,
	log zerolog.Logger,
) ports.IngestionService {
	return &ingestionService{
		registry:    reg,
		writes:      writes,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "ingestion").Logger(),
		now:         time.Now,
	}
}

// Handle validates ev and applies it to the registry.
//
//	START             → entry created or merged, status RUNNING
//	STOP, GPS_ERROR   → status STOPPED (entry kept)
//	GPS_ACTIVE        → status RUNNING, position unchanged
//	<no action>       → position update; never creates an entry
func (s *ingestionService) Handle(ctx context.Context, session *ports.ProducerSession, ev domain.VehicleEvent) (*domain.Change, error) {
	id := strings.TrimSpace(ev.VehicleNumber)
	if id == "" {
		metrics.EventsDroppedTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrMissingVehicleID
	}
	if !ev.Action.Valid() {
		metrics.EventsDroppedTotal.WithLabelValues("unknown_action").Inc()
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, ev.Action)
	}

	var (
		state domain.VehicleState
		kind  domain.ChangeKind
		ok    bool
	)
	now := s.now().UTC()

	switch ev.Action {
	case domain.ActionStart:
		state = s.start(id, ev, now)
		kind = domain.ChangeStarted
		ok = true

	case domain.ActionStop, domain.ActionGPSError:
		// A lost fix is treated as a full stop.
		state, ok = s.setStatus(id, domain.StatusStopped, now)
		kind = domain.ChangeStatus

	case domain.ActionGPSActive:
		state, ok = s.setStatus(id, domain.StatusRunning, now)
		kind = domain.ChangeStatus

	case domain.ActionNone:
		if ev.Latitude == nil || ev.Longitude == nil {
			metrics.EventsDroppedTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrMissingCoordinates
		}
		lat, lng := *ev.Latitude, *ev.Longitude
		if !domain.ValidCoordinates(lat, lng) {
			metrics.EventsDroppedTotal.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinates, lat, lng)
		}
		state, ok = s.registry.Update(id, func(v *domain.VehicleState) {
			v.Latitude = lat
			v.Longitude = lng
			v.UpdatedAt = now
		})
		kind = domain.ChangeLocation
	}

	if !ok {
		metrics.EventsDroppedTotal.WithLabelValues("unknown_vehicle").Inc()
		return nil, fmt.Errorf("%s for %s: %w", actionLabel(ev.Action), id, domain.ErrVehicleNotFound)
	}

	session.Claim(id)
	change := s.commit(ctx, kind, state, now)
	metrics.EventsIngestedTotal.WithLabelValues(actionLabel(ev.Action)).Inc()

	s.log.Debug().
		Str("vehicle_number", id).
		Str("action", actionLabel(ev.Action)).
		Str("status", string(state.Status)).
		Str("conn_id", session.ConnID).
		Msg("event applied")

	return change, nil
}

// Disconnect stops the vehicle claimed by session, if any.
func (s *ingestionService) Disconnect(ctx context.Context, session *ports.ProducerSession) (*domain.Change, error) {
	id := session.VehicleNumber()
	if id == "" {
		return nil, nil
	}

	now := s.now().UTC()
	state, ok := s.setStatus(id, domain.StatusStopped, now)
	if !ok {
		// Removed (account deletion or clear-all) while the producer was connected.
		return nil, nil
	}

	change := s.commit(ctx, domain.ChangeStatus, state, now)
	metrics.EventsIngestedTotal.WithLabelValues("DISCONNECT").Inc()

	s.log.Info().
		Str("vehicle_number", id).
		Str("conn_id", session.ConnID).
		Msg("producer disconnected, vehicle stopped")

	return change, nil
}

// start builds the replacement entry for a START. Optional fields absent from
// the event keep the values of the entry being replaced, as does the last
// known position.
func (s *ingestionService) start(id string, ev domain.VehicleEvent, now time.Time) domain.VehicleState {
	return s.registry.Compute(id, func(state domain.VehicleState, _ bool) domain.VehicleState {
		state.VehicleNumber = id
		state.Status = domain.StatusRunning
		state.UpdatedAt = now
		if ev.StopLabel != nil {
			state.StopLabel = *ev.StopLabel
		}
		if ev.VehicleName != nil {
			state.VehicleName = *ev.VehicleName
		}
		if ev.OperatorName != nil {
			state.OperatorName = *ev.OperatorName
		}
		if ev.OperatorPhone != nil {
			state.OperatorPhone = *ev.OperatorPhone
		}
		return state
	})
}

func (s *ingestionService) setStatus(id string, status domain.VehicleStatus, now time.Time) (domain.VehicleState, bool) {
	return s.registry.Update(id, func(v *domain.VehicleState) {
		v.Status = status
		v.UpdatedAt = now
	})
}

// commit queues the write-through and fans the change out. The write is not
// awaited; observers may see the change before it is durable.
func (s *ingestionService) commit(ctx context.Context, kind domain.ChangeKind, state domain.VehicleState, now time.Time) *domain.Change {
	s.writes.Enqueue(state)
	metrics.LiveVehicles.Set(float64(s.registry.Len()))

	change := domain.Change{Kind: kind, Vehicle: state, Source: SourceDriver, At: now}
	s.broadcaster.Publish(ctx, change)
	return &change
}

func actionLabel(a domain.Action) string {
	if a == domain.ActionNone {
		return "POSITION"
	}
	return string(a)
}
