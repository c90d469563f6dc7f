package models

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ProtoContentType is the media type served for wire-encoded snapshots
const ProtoContentType = "application/x-protobuf"

// Field numbers of the TrafficSnapshot message:
//
//	message TrafficSnapshot {
//	  sint32 minute = 1;
//	  string label = 2;
//	  int32 window_start = 3;
//	  int32 window_end = 4;
//	  int32 max_traffic = 5;
//	  repeated Station stations = 6;
//	  int64 updated_unix = 7;
//	}
//
//	message Station {
//	  string id = 1;
//	  string name = 2;
//	  double lat = 3;
//	  double lon = 4;
//	  int32 departures = 5;
//	  int32 arrivals = 6;
//	  int32 total_traffic = 7;
//	  double departure_ratio = 8;
//	  double flow = 9;
//	  double radius = 10;
//	  string title = 11;
//	}
const (
	snapshotMinute      protowire.Number = 1
	snapshotLabel       protowire.Number = 2
	snapshotWindowStart protowire.Number = 3
	snapshotWindowEnd   protowire.Number = 4
	snapshotMaxTraffic  protowire.Number = 5
	snapshotStations    protowire.Number = 6
	snapshotUpdated     protowire.Number = 7

	stationID             protowire.Number = 1
	stationName           protowire.Number = 2
	stationLat            protowire.Number = 3
	stationLon            protowire.Number = 4
	stationDepartures     protowire.Number = 5
	stationArrivals       protowire.Number = 6
	stationTotalTraffic   protowire.Number = 7
	stationDepartureRatio protowire.Number = 8
	stationFlow           protowire.Number = 9
	stationRadius         protowire.Number = 10
	stationTitle          protowire.Number = 11
)

// MarshalProto encodes the snapshot in protobuf wire format
func (t *TrafficSnapshot) MarshalProto() []byte {
	var b []byte
	b = protowire.AppendTag(b, snapshotMinute, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(t.Minute)))
	if t.Label != "" {
		b = protowire.AppendTag(b, snapshotLabel, protowire.BytesType)
		b = protowire.AppendString(b, t.Label)
	}
	if t.Window != nil {
		b = appendInt(b, snapshotWindowStart, t.Window.Start)
		b = appendInt(b, snapshotWindowEnd, t.Window.End)
	}
	b = appendInt(b, snapshotMaxTraffic, t.MaxTraffic)
	for i := range t.Stations {
		b = protowire.AppendTag(b, snapshotStations, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Stations[i].MarshalProto())
	}
	if !t.Updated.IsZero() {
		b = protowire.AppendTag(b, snapshotUpdated, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.Updated.Unix()))
	}
	return b
}

// MarshalProto encodes a single station in protobuf wire format
func (s *StationResponse) MarshalProto() []byte {
	var b []byte
	b = protowire.AppendTag(b, stationID, protowire.BytesType)
	b = protowire.AppendString(b, s.ID)
	if s.Name != "" {
		b = protowire.AppendTag(b, stationName, protowire.BytesType)
		b = protowire.AppendString(b, s.Name)
	}
	b = appendDouble(b, stationLat, s.Location[0])
	b = appendDouble(b, stationLon, s.Location[1])
	b = appendInt(b, stationDepartures, s.Departures)
	b = appendInt(b, stationArrivals, s.Arrivals)
	b = appendInt(b, stationTotalTraffic, s.TotalTraffic)
	b = appendDouble(b, stationDepartureRatio, s.DepartureRatio)
	b = appendDouble(b, stationFlow, s.Flow)
	b = appendDouble(b, stationRadius, s.Radius)
	if s.Title != "" {
		b = protowire.AppendTag(b, stationTitle, protowire.BytesType)
		b = protowire.AppendString(b, s.Title)
	}
	return b
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}
