package domain

import "time"

// Action discriminates producer events. The zero value is a bare position update.
type Action string

const (
	ActionNone      Action = ""
	ActionStart     Action = "START"
	ActionStop      Action = "STOP"
	ActionGPSActive Action = "GPS_ACTIVE"
	ActionGPSError  Action = "GPS_ERROR"
)

// Valid reports whether a is a known action (including the bare update).
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionStart, ActionStop, ActionGPSActive, ActionGPSError:
		return true
	}
	return false
}

// VehicleEvent is a single inbound event from a vehicle's producer.
type VehicleEvent struct {
	VehicleNumber string
	Action        Action
	Latitude      *float64
	Longitude     *float64
	StopLabel     *string
	VehicleName   *string
	OperatorName  *string
	OperatorPhone *string
}

// ChangeKind classifies a registry mutation for the operator audience.
type ChangeKind string

const (
	ChangeStarted  ChangeKind = "started"
	ChangeStatus   ChangeKind = "status"
	ChangeLocation ChangeKind = "location"
	ChangeRemoved  ChangeKind = "removed"
	ChangeCleared  ChangeKind = "cleared"
)

// Change describes one successful registry mutation.
type Change struct {
	Kind    ChangeKind
	Vehicle VehicleState // zero for ChangeCleared
	Source  string
	At      time.Time
}
