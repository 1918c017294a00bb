package handler

import (
	"strings"
	"testing"
)

func TestValidator_ProducerMessage(t *testing.T) {
	v := NewValidator()
	lat, badLat := 13.05, 91.0
	lng := 80.25

	cases := []struct {
		name    string
		msg     producerMessage
		wantErr string
	}{
		{"start", producerMessage{VehicleID: "V1", Action: "START"}, ""},
		{"position", producerMessage{VehicleID: "V1", Latitude: &lat, Longitude: &lng}, ""},
		{"missing id", producerMessage{Action: "STOP"}, "vehicleId is required"},
		{"unknown action", producerMessage{VehicleID: "V1", Action: "PAUSE"}, "action must be one of"},
		{"latitude out of range", producerMessage{VehicleID: "V1", Latitude: &badLat, Longitude: &lng}, "latitude must be between"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&tc.msg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidator_ViewerRequest(t *testing.T) {
	v := NewValidator()
	valid := []viewerRequest{{QueryType: "ALL"}, {QueryType: "BY_ID", Value: "V1"}, {QueryType: "BY_STOP", Value: "Gate A"}}
	for _, r := range valid {
		if err := v.Validate(&r); err != nil {
			t.Errorf("%+v: unexpected error %v", r, err)
		}
	}
	invalid := []viewerRequest{{}, {QueryType: "NEAREST"}, {QueryType: "BY_STOP"}}
	for _, r := range invalid {
		if err := v.Validate(&r); err == nil {
			t.Errorf("%+v: expected error", r)
		}
	}
}

func TestValidator_OperatorMessage(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&operatorMessage{Type: "APPROVE_REQUEST"}); err == nil {
		t.Error("expected requestId to be required")
	}
	id := int64(7)
	if err := v.Validate(&operatorMessage{Type: "APPROVE_REQUEST", RequestID: &id}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.Validate(&operatorMessage{Type: "HELLO"}); err != nil {
		t.Errorf("unknown types pass validation and are ignored later: %v", err)
	}
}
