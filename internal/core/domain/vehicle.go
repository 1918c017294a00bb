package domain

import (
	"errors"
	"time"
)

// VehicleStatus represents the lifecycle flag of a live vehicle session.
type VehicleStatus string

const (
	StatusRunning VehicleStatus = "RUNNING"
	StatusStopped VehicleStatus = "STOPPED"
)

var ErrVehicleNotFound = errors.New("vehicle not found")
var ErrMissingVehicleID = errors.New("vehicle id is required")
var ErrMissingCoordinates = errors.New("latitude and longitude are required")
var ErrInvalidCoordinates = errors.New("coordinates out of range")
var ErrUnknownAction = errors.New("unknown action")
var ErrInvalidQuery = errors.New("invalid query")

// Valid reports whether s is one of the known statuses.
func (s VehicleStatus) Valid() bool {
	return s == StatusRunning || s == StatusStopped
}

// VehicleState is the latest known state of one tracked vehicle.
//
// Latitude and longitude both zero means the producer has not reported a
// fix yet; such entries are never shown to viewers.
type VehicleState struct {
	VehicleNumber string        `json:"vehicleNumber" bson:"vehicle_number"`
	VehicleName   string        `json:"vehicleName,omitempty" bson:"vehicle_name,omitempty"`
	StopLabel     string        `json:"stopLabel,omitempty" bson:"stop_label,omitempty"`
	Latitude      float64       `json:"latitude" bson:"latitude"`
	Longitude     float64       `json:"longitude" bson:"longitude"`
	Status        VehicleStatus `json:"status" bson:"status"`
	OperatorName  string        `json:"operatorName,omitempty" bson:"operator_name,omitempty"`
	OperatorPhone string        `json:"operatorPhone,omitempty" bson:"operator_phone,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updated_at"`
}

// HasFix reports whether the vehicle has reported a usable position.
func (v VehicleState) HasFix() bool {
	return v.Latitude != 0 || v.Longitude != 0
}

// ValidCoordinates reports whether lat/lng are finite and within WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// WithFix returns only the states that have a usable position, preserving order.
func WithFix(states []VehicleState) []VehicleState {
	out := make([]VehicleState, 0, len(states))
	for _, s := range states {
		if s.HasFix() {
			out = append(out, s)
		}
	}
	return out
}
