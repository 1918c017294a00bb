package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubWriteQueue struct {
	mu     sync.Mutex
	states []domain.VehicleState
}

func (q *stubWriteQueue) Enqueue(s domain.VehicleState) {
	q.mu.Lock()
	q.states = append(q.states, s)
	q.mu.Unlock()
}

func (q *stubWriteQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.states)
}

type stubBroadcaster struct {
	mu      sync.Mutex
	changes []domain.Change
}

func (b *stubBroadcaster) Publish(_ context.Context, c domain.Change) {
	b.mu.Lock()
	b.changes = append(b.changes, c)
	b.mu.Unlock()
}

func (b *stubBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

type stubAudience struct {
	mu       sync.Mutex
	messages [][]byte
}

func (a *stubAudience) Broadcast(msg []byte) int {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
	return 1
}

func (a *stubAudience) Len() int { return 1 }

func (a *stubAudience) last() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return nil
	}
	return a.messages[len(a.messages)-1]
}

func (a *stubAudience) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

type stubVehicleRepo struct {
	vehicles  map[string]domain.VehicleState
	findErr   error
	deleteErr error
	countErr  error
}

func newStubVehicleRepo(states ...domain.VehicleState) *stubVehicleRepo {
	r := &stubVehicleRepo{vehicles: make(map[string]domain.VehicleState)}
	for _, s := range states {
		r.vehicles[s.VehicleNumber] = s
	}
	return r
}

func (r *stubVehicleRepo) Upsert(_ context.Context, s domain.VehicleState) error {
	r.vehicles[s.VehicleNumber] = s
	return nil
}

func (r *stubVehicleRepo) FindByStatus(_ context.Context, status domain.VehicleStatus) ([]domain.VehicleState, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []domain.VehicleState
	for _, s := range r.vehicles {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubVehicleRepo) Delete(_ context.Context, id string) (bool, error) {
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	_, ok := r.vehicles[id]
	delete(r.vehicles, id)
	return ok, nil
}

func (r *stubVehicleRepo) DeleteAll(_ context.Context) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := int64(len(r.vehicles))
	r.vehicles = make(map[string]domain.VehicleState)
	return n, nil
}

func (r *stubVehicleRepo) Count(_ context.Context) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.vehicles)), nil
}

func ptr[T any](v T) *T { return &v }

func decodeVehicles(data []byte) ([]domain.VehicleState, error) {
	var out []domain.VehicleState
	err := json.Unmarshal(data, &out)
	return out, err
}
