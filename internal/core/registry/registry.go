// Package registry holds the in-memory table of live vehicle sessions.
//
// The Registry is the single source of truth for whether a vehicle is live.
// Every read and write goes through its lock; callers never see a live view.
package registry

import (
	"sort"
	"sync"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// Registry is a concurrency-safe vehicleNumber → VehicleState table.
type Registry struct {
	mu       sync.RWMutex
	vehicles map[string]domain.VehicleState
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{vehicles: make(map[string]domain.VehicleState)}
}

// Upsert stores state under id, replacing any existing entry.
func (r *Registry) Upsert(id string, state domain.VehicleState) {
	r.mu.Lock()
	r.vehicles[id] = state
	r.mu.Unlock()
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (domain.VehicleState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.vehicles[id]
	return s, ok
}

// Update applies fn to the existing entry for id under the write lock and
// stores the result. It returns false without calling fn if id is absent.
func (r *Registry) Update(id string, fn func(*domain.VehicleState)) (domain.VehicleState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.vehicles[id]
	if !ok {
		return domain.VehicleState{}, false
	}
	fn(&s)
	r.vehicles[id] = s
	return s, true
}

// Compute stores fn(current, found) under id in one critical section and
// returns the stored value. It creates the entry if id is absent.
func (r *Registry) Compute(id string, fn func(cur domain.VehicleState, found bool) domain.VehicleState) domain.VehicleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.vehicles[id]
	next := fn(cur, ok)
	r.vehicles[id] = next
	return next
}

// Remove deletes id and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return false
	}
	delete(r.vehicles, id)
	return true
}

// Snapshot returns a point-in-time copy of every entry, sorted by vehicle number.
func (r *Registry) Snapshot() []domain.VehicleState {
	r.mu.RLock()
	out := make([]domain.VehicleState, 0, len(r.vehicles))
	for _, s := range r.vehicles {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].VehicleNumber < out[j].VehicleNumber })
	return out
}

// IDs returns the identifiers of every live vehicle, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.vehicles))
	for id := range r.vehicles {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Clear empties the registry and returns how many entries it held.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.vehicles)
	r.vehicles = make(map[string]domain.VehicleState)
	return n
}

// Len returns the number of live vehicles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vehicles)
}
