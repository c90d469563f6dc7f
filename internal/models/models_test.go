package models

import (
	"math"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

type fixedScale float64

func (f fixedScale) Radius(traffic int) float64 {
	return float64(f) * float64(traffic)
}

func TestStationConvertToResponse(t *testing.T) {
	station := &Station{
		ShortName:    "M32006",
		Name:         "MIT at Mass Ave / Amherst St",
		Location:     Location{Lat: 42.3581, Lon: -71.093198},
		Departures:   30,
		Arrivals:     10,
		TotalTraffic: 40,
	}

	response := station.ConvertToResponse(fixedScale(0.5))

	if response.ID != station.ShortName {
		t.Errorf("Expected ID %s, got %s", station.ShortName, response.ID)
	}
	if response.Name != station.Name {
		t.Errorf("Expected Name %s, got %s", station.Name, response.Name)
	}

	if response.Location[0] != station.Location.Lat || response.Location[1] != station.Location.Lon {
		t.Errorf("Location mismatch: expected [%f, %f], got %v",
			station.Location.Lat, station.Location.Lon, response.Location)
	}

	if response.Departures != 30 || response.Arrivals != 10 || response.TotalTraffic != 40 {
		t.Errorf("Counter mismatch: got %+v", response)
	}
	if response.DepartureRatio != 0.75 {
		t.Errorf("Expected departure ratio 0.75, got %f", response.DepartureRatio)
	}
	if response.Flow != 1 {
		t.Errorf("Expected flow 1, got %f", response.Flow)
	}
	if response.Radius != 20 {
		t.Errorf("Expected radius 20, got %f", response.Radius)
	}
	if want := "40 trips (30 departures, 10 arrivals)"; response.Title != want {
		t.Errorf("Expected title %q, got %q", want, response.Title)
	}

	if r := station.ConvertToResponse(nil); r.Radius != 0 {
		t.Errorf("Expected zero radius without a scale, got %f", r.Radius)
	}
}

func TestDepartureRatio(t *testing.T) {
	tests := []struct {
		name       string
		departures int
		arrivals   int
		ratio      float64
		flow       float64
	}{
		{name: "no traffic", ratio: 0, flow: 0},
		{name: "only arrivals", arrivals: 5, ratio: 0, flow: 0},
		{name: "balanced", departures: 5, arrivals: 5, ratio: 0.5, flow: 0.5},
		{name: "one third", departures: 1, arrivals: 2, ratio: 1.0 / 3, flow: 0.5},
		{name: "only departures", departures: 4, ratio: 1, flow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Station{
				Departures:   tt.departures,
				Arrivals:     tt.arrivals,
				TotalTraffic: tt.departures + tt.arrivals,
			}
			ratio := s.DepartureRatio()
			if math.IsNaN(ratio) {
				t.Fatal("ratio must never be NaN")
			}
			if math.Abs(ratio-tt.ratio) > 1e-9 {
				t.Errorf("DepartureRatio() = %f, want %f", ratio, tt.ratio)
			}
			if got := s.Flow(); got != tt.flow {
				t.Errorf("Flow() = %f, want %f", got, tt.flow)
			}
		})
	}
}

func TestTrafficSnapshotMarshalProto(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &TrafficSnapshot{
		Minute:     -1,
		Label:      "any time",
		MaxTraffic: 12,
		Stations: []StationResponse{
			{ID: "A", Name: "Alpha", Location: [2]float64{42.1, -71.2}, Departures: 2, Arrivals: 1, TotalTraffic: 3, Radius: 4.5, Title: "3 trips (2 departures, 1 arrivals)"},
			{ID: "B", Location: [2]float64{42.3, -71.4}, Arrivals: 1, TotalTraffic: 1},
		},
		Updated: updated,
	}

	b := snap.MarshalProto()

	var (
		minute   int64
		label    string
		maxT     uint64
		stations [][]byte
		unix     uint64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			t.Fatalf("bad tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == snapshotMinute && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			minute = protowire.DecodeZigZag(v)
			n = m
		case num == snapshotLabel && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			label = v
			n = m
		case num == snapshotMaxTraffic && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			maxT = v
			n = m
		case num == snapshotStations && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			stations = append(stations, v)
			n = m
		case num == snapshotUpdated && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			unix = v
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			t.Fatalf("bad field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	if minute != -1 {
		t.Errorf("Expected minute -1, got %d", minute)
	}
	if label != "any time" {
		t.Errorf("Expected label 'any time', got %q", label)
	}
	if maxT != 12 {
		t.Errorf("Expected max traffic 12, got %d", maxT)
	}
	if len(stations) != 2 {
		t.Fatalf("Expected 2 stations, got %d", len(stations))
	}
	if unix != uint64(updated.Unix()) {
		t.Errorf("Expected updated %d, got %d", updated.Unix(), unix)
	}

	// First station: id and lat round-trip
	sb := stations[0]
	num, typ, n := protowire.ConsumeTag(sb)
	if num != stationID || typ != protowire.BytesType {
		t.Fatalf("Expected id field first, got %d/%d", num, typ)
	}
	id, m := protowire.ConsumeString(sb[n:])
	if id != "A" {
		t.Errorf("Expected id A, got %q", id)
	}
	sb = sb[n+m:]
	var title string
	for len(sb) > 0 {
		num, typ, n = protowire.ConsumeTag(sb)
		sb = sb[n:]
		switch {
		case num == stationLat && typ == protowire.Fixed64Type:
			v, _ := protowire.ConsumeFixed64(sb)
			if math.Float64frombits(v) != 42.1 {
				t.Errorf("Expected lat 42.1, got %f", math.Float64frombits(v))
			}
		case num == stationTitle && typ == protowire.BytesType:
			title, _ = protowire.ConsumeString(sb)
		}
		sb = sb[protowire.ConsumeFieldValue(num, typ, sb):]
	}
	if title != "3 trips (2 departures, 1 arrivals)" {
		t.Errorf("Expected marker title, got %q", title)
	}
}
