package handler

import (
	"strings"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// producerMessage is one frame on the producer channel. Type is only set on
// keepalive frames ({"type":"PING"}).
type producerMessage struct {
	Type          string   `json:"type,omitempty"`
	VehicleID     string   `json:"vehicleId"               validate:"required,max=64"`
	Action        string   `json:"action,omitempty"        validate:"omitempty,oneof=START STOP GPS_ACTIVE GPS_ERROR"`
	Latitude      *float64 `json:"latitude,omitempty"      validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty"     validate:"omitempty,longitude"`
	StopLabel     *string  `json:"stopLabel,omitempty"     validate:"omitempty,max=128"`
	VehicleName   *string  `json:"vehicleName,omitempty"   validate:"omitempty,max=128"`
	OperatorName  *string  `json:"operatorName,omitempty"  validate:"omitempty,max=128"`
	OperatorPhone *string  `json:"operatorPhone,omitempty" validate:"omitempty,max=32"`
}

func (m producerMessage) isKeepalive() bool {
	return strings.EqualFold(m.Type, "PING")
}

func (m producerMessage) toEvent() domain.VehicleEvent {
	return domain.VehicleEvent{
		VehicleNumber: m.VehicleID,
		Action:        domain.Action(m.Action),
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		StopLabel:     m.StopLabel,
		VehicleName:   m.VehicleName,
		OperatorName:  m.OperatorName,
		OperatorPhone: m.OperatorPhone,
	}
}

// viewerRequest asks for a filtered list of live vehicles.
type viewerRequest struct {
	QueryType string `json:"queryType" validate:"required,oneof=ALL BY_ID BY_STOP"`
	Value     string `json:"value"     validate:"required_unless=QueryType ALL"`
}

func (r viewerRequest) toQuery() domain.VehicleQuery {
	return domain.VehicleQuery{Type: domain.QueryType(r.QueryType), Value: strings.TrimSpace(r.Value)}
}

// operatorMessage is a control frame sent by an operator.
type operatorMessage struct {
	Type      string `json:"type"      validate:"required"`
	RequestID *int64 `json:"requestId" validate:"required_if=Type APPROVE_REQUEST"`
}

type pongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type clearSessionsResponse struct {
	Message             string `json:"message"`
	ClearedFromMemory   int    `json:"clearedFromMemory"`
	ClearedFromDatabase int64  `json:"clearedFromDatabase"`
}

type sessionCountResponse struct {
	MemoryCount   int      `json:"memoryCount"`
	DatabaseCount int64    `json:"databaseCount"`
	ActiveBuses   []string `json:"activeBuses"`
}

type errorResponse struct {
	Error string `json:"error"`
}
