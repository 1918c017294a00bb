package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/core/registry"
)

// BroadcastService fans registry changes out to the viewer and operator
// audiences. The two audiences get deliberately different shapes: viewers
// always receive the full filtered snapshot, operators a typed envelope for
// the specific change.
type BroadcastService struct {
	registry  *registry.Registry
	viewers   ports.Audience
	operators ports.Audience
	log       zerolog.Logger
	now       func() time.Time

	// mu serializes Publish so the last snapshot an observer gets is the newest.
	mu sync.Mutex
}

// NewBroadcastService wires the two audiences to the registry.
func NewBroadcastService(reg *registry.Registry, viewers, operators ports.Audience, log zerolog.Logger) *BroadcastService {
	return &BroadcastService{
		registry:  reg,
		viewers:   viewers,
		operators: operators,
		log:       log.With().Str("component", "broadcast").Logger(),
		now:       time.Now,
	}
}

// Publish pushes change to both audiences. It never blocks on a slow observer.
func (b *BroadcastService) Publish(_ context.Context, change domain.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := b.registry.Snapshot()
	b.publishViewers(snapshot)
	b.publishOperators(change, snapshot)
}

// ViewerSnapshot answers a viewer request against the current registry.
func (b *BroadcastService) ViewerSnapshot(q domain.VehicleQuery) ([]domain.VehicleState, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return domain.FilterVehicles(b.registry.Snapshot(), q), nil
}

// OperatorWelcome returns the CONNECTION_SUCCESS greeting sent on connect.
func (b *BroadcastService) OperatorWelcome() OperatorMessage {
	return OperatorMessage{
		Type:      MsgConnectionSuccess,
		Message:   "Connected to Admin WebSocket",
		Timestamp: b.now().UnixMilli(),
	}
}

// OperatorSnapshot returns the unfiltered fleet, vehicles without a fix
// included. It is built even when the registry is empty.
func (b *BroadcastService) OperatorSnapshot() OperatorMessage {
	return OperatorMessage{
		Type:      MsgBusUpdate,
		Payload:   FleetPayload{Buses: b.registry.Snapshot()},
		Source:    SourceInitialLoad,
		Timestamp: b.now().UnixMilli(),
	}
}

// Approve builds the acknowledgement for an operator APPROVE_REQUEST.
func (b *BroadcastService) Approve(requestID int64) OperatorMessage {
	return OperatorMessage{
		Type:      MsgRequestApproved,
		RequestID: &requestID,
		Timestamp: b.now().UnixMilli(),
	}
}

func (b *BroadcastService) publishViewers(snapshot []domain.VehicleState) {
	visible := domain.WithFix(snapshot)
	if len(visible) == 0 {
		metrics.BroadcastsSuppressedTotal.Inc()
		b.log.Debug().Int("live", len(snapshot)).Msg("viewer broadcast suppressed, no vehicle has a fix")
		return
	}

	data, err := json.Marshal(visible)
	if err != nil {
		b.log.Error().Err(err).Msg("encode viewer snapshot")
		return
	}
	delivered := b.viewers.Broadcast(data)
	metrics.BroadcastsTotal.WithLabelValues("viewer", "SNAPSHOT").Inc()
	b.log.Debug().Int("vehicles", len(visible)).Int("viewers", delivered).Msg("viewer snapshot broadcast")
}

func (b *BroadcastService) publishOperators(change domain.Change, snapshot []domain.VehicleState) {
	msg := b.envelope(change, snapshot)
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error().Err(err).Str("type", msg.Type).Msg("encode operator envelope")
		return
	}
	delivered := b.operators.Broadcast(data)
	metrics.BroadcastsTotal.WithLabelValues("operator", msg.Type).Inc()
	b.log.Debug().Str("type", msg.Type).Int("operators", delivered).Msg("operator envelope broadcast")
}

// envelope maps a change to its operator message.
func (b *BroadcastService) envelope(change domain.Change, snapshot []domain.VehicleState) OperatorMessage {
	at := change.At
	if at.IsZero() {
		at = b.now()
	}
	msg := OperatorMessage{Source: change.Source, Timestamp: at.UnixMilli()}

	switch change.Kind {
	case domain.ChangeLocation:
		msg.Type = MsgBusLocationUpdate
		msg.Payload = change.Vehicle
	case domain.ChangeStarted, domain.ChangeStatus:
		msg.Type = MsgBusStatusUpdate
		msg.Payload = change.Vehicle
	case domain.ChangeRemoved:
		msg.Type = MsgBusUpdate
		msg.Payload = FleetPayload{Buses: snapshot, Removed: change.Vehicle.VehicleNumber}
	case domain.ChangeCleared:
		msg.Type = MsgBusUpdate
		msg.Payload = FleetPayload{Buses: snapshot}
	default:
		b.log.Warn().Str("kind", fmt.Sprint(change.Kind)).Msg("unknown change kind, sending aggregate")
		msg.Type = MsgBusUpdate
		msg.Payload = FleetPayload{Buses: snapshot}
	}
	return msg
}
