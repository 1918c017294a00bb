package service

import "github.com/dygon/bus-tracking/internal/core/domain"

// Operator message types.
const (
	MsgBusUpdate         = "BUS_UPDATE"
	MsgBusLocationUpdate = "BUS_LOCATION_UPDATE"
	MsgBusStatusUpdate   = "BUS_STATUS_UPDATE"
	MsgConnectionSuccess = "CONNECTION_SUCCESS"
	MsgApproveRequest    = "APPROVE_REQUEST"
	MsgRequestApproved   = "REQUEST_APPROVED"
	MsgPing              = "PING"
	MsgPong              = "PONG"
)

// Source tags carried on operator envelopes.
const (
	SourceDriver      = "DriverWebSocket"
	SourceInitialLoad = "InitialLoad"
	SourceAdmin       = "AdminAction"
)

// OperatorMessage is the typed envelope pushed to the operator audience.
type OperatorMessage struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Source    string `json:"source,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID *int64 `json:"requestId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// FleetPayload is the payload of an aggregate BUS_UPDATE.
type FleetPayload struct {
	Buses   []domain.VehicleState `json:"buses"`
	Removed string                `json:"removed,omitempty"`
}
