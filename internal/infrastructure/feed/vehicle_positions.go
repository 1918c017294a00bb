// Package feed renders the live fleet as a GTFS-realtime VehiclePositions feed.
package feed

import (
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

const gtfsRealtimeVersion = "2.0"

const (
	ContentTypeProtobuf = "application/x-protobuf"
	ContentTypeJSON     = "application/json"
)

// Format selects the wire encoding of a feed.
type Format string

const (
	FormatProtobuf Format = "protobuf"
	FormatJSON     Format = "json"
)

// BuildVehiclePositions returns a full-dataset FeedMessage with one entity per
// vehicle that has a fix. Vehicles without a position are left out.
func BuildVehiclePositions(states []domain.VehicleState, now time.Time) *gtfs.FeedMessage {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}
	for _, s := range states {
		if !s.HasFix() {
			continue
		}
		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id:      proto.String(s.VehicleNumber),
			Vehicle: vehiclePosition(s, now),
		})
	}
	return msg
}

func vehiclePosition(s domain.VehicleState, now time.Time) *gtfs.VehiclePosition {
	vp := &gtfs.VehiclePosition{
		Vehicle: &gtfs.VehicleDescriptor{Id: proto.String(s.VehicleNumber)},
		Position: &gtfs.Position{
			Latitude:  proto.Float32(float32(s.Latitude)),
			Longitude: proto.Float32(float32(s.Longitude)),
		},
		CurrentStatus: currentStatus(s.Status).Enum(),
	}
	if s.VehicleName != "" {
		vp.Vehicle.Label = proto.String(s.VehicleName)
	}
	if s.StopLabel != "" {
		vp.StopId = proto.String(s.StopLabel)
	}
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = now
	}
	vp.Timestamp = proto.Uint64(uint64(ts.Unix()))
	return vp
}

func currentStatus(status domain.VehicleStatus) gtfs.VehiclePosition_VehicleStopStatus {
	if status == domain.StatusStopped {
		return gtfs.VehiclePosition_STOPPED_AT
	}
	return gtfs.VehiclePosition_IN_TRANSIT_TO
}

// Encode serialises msg and returns the matching content type.
func Encode(msg *gtfs.FeedMessage, format Format) ([]byte, string, error) {
	if format == FormatJSON {
		data, err := protojson.Marshal(msg)
		return data, ContentTypeJSON, err
	}
	data, err := proto.Marshal(msg)
	return data, ContentTypeProtobuf, err
}
