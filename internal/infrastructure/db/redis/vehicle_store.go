package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
)

const vehiclesKey = "vehicles"

// VehicleStore implements ports.VehicleRepository on a single Redis hash:
// field = vehicle number, value = JSON-encoded VehicleState.
type VehicleStore struct {
	client *redis.Client
	key    string
}

var _ ports.VehicleRepository = (*VehicleStore)(nil)

// NewVehicleStore creates a VehicleStore wrapping the given Redis client.
func NewVehicleStore(client *redis.Client) *VehicleStore {
	return &VehicleStore{client: client, key: vehiclesKey}
}

func (s *VehicleStore) Upsert(ctx context.Context, v domain.VehicleState) error {
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode vehicle %s: %w", v.VehicleNumber, err)
	}
	return s.client.HSet(ctx, s.key, v.VehicleNumber, data).Err()
}

// FindByStatus scans the whole hash. Undecodable values are skipped.
func (s *VehicleStore) FindByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.VehicleState, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	out := make([]domain.VehicleState, 0, len(all))
	for _, raw := range all {
		var v domain.VehicleState
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			continue
		}
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *VehicleStore) Delete(ctx context.Context, vehicleNumber string) (bool, error) {
	n, err := s.client.HDel(ctx, s.key, vehicleNumber).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAll reads the hash size and drops the key in one transaction.
func (s *VehicleStore) DeleteAll(ctx context.Context) (int64, error) {
	var hlen *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hlen = pipe.HLen(ctx, s.key)
		pipe.Del(ctx, s.key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return hlen.Val(), nil
}

func (s *VehicleStore) Count(ctx context.Context) (int64, error) {
	return s.client.HLen(ctx, s.key).Result()
}
