package domain

import "fmt"

// QueryType selects how a viewer request filters live vehicles.
type QueryType string

const (
	QueryAll    QueryType = "ALL"
	QueryByID   QueryType = "BY_ID"
	QueryByStop QueryType = "BY_STOP"
)

// VehicleQuery is a viewer request for a subset of live vehicles.
type VehicleQuery struct {
	Type  QueryType
	Value string
}

// Validate checks that the query type is known and carries a value when needed.
func (q VehicleQuery) Validate() error {
	switch q.Type {
	case QueryAll:
		return nil
	case QueryByID, QueryByStop:
		if q.Value == "" {
			return fmt.Errorf("%w: %s requires a value", ErrInvalidQuery, q.Type)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown query type %q", ErrInvalidQuery, q.Type)
}

// FilterVehicles applies q to states. Entries without a fix are always excluded.
func FilterVehicles(states []VehicleState, q VehicleQuery) []VehicleState {
	out := make([]VehicleState, 0, len(states))
	for _, s := range states {
		if !s.HasFix() {
			continue
		}
		switch q.Type {
		case QueryAll:
			out = append(out, s)
		case QueryByID:
			if s.VehicleNumber == q.Value {
				out = append(out, s)
			}
		case QueryByStop:
			if s.StopLabel == q.Value {
				out = append(out, s)
			}
		}
	}
	return out
}
