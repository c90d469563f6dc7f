package models

import (
	"fmt"
	"time"
)

// Location represents a geographic coordinate
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Trip represents a single bike-share ride
type Trip struct {
	RideID         string    `json:"ride_id,omitempty"`
	StartStationID string    `json:"start_station_id"`
	EndStationID   string    `json:"end_station_id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// Station represents a dock location and its traffic under the active time window.
// ShortName is the identifier trips refer to.
type Station struct {
	ShortName    string   `json:"short_name"`
	StationID    string   `json:"station_id,omitempty"`
	Name         string   `json:"name"`
	Location     Location `json:"location"`
	Capacity     int      `json:"capacity,omitempty"`
	Departures   int      `json:"departures"`
	Arrivals     int      `json:"arrivals"`
	TotalTraffic int      `json:"total_traffic"`
}

// StationResponse is the API response format for a station
type StationResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Location       [2]float64 `json:"location"`
	Departures     int        `json:"departures"`
	Arrivals       int        `json:"arrivals"`
	TotalTraffic   int        `json:"total_traffic"`
	DepartureRatio float64    `json:"departure_ratio"`
	Flow           float64    `json:"flow"`
	Radius         float64    `json:"radius"`
	Title          string     `json:"title"`
}

// Scale maps a traffic count to a marker radius
type Scale interface {
	Radius(traffic int) float64
}

// DepartureRatio returns the share of traffic that left the station.
// A station with no traffic has a ratio of 0.
func (s *Station) DepartureRatio() float64 {
	if s.TotalTraffic <= 0 {
		return 0
	}
	return float64(s.Departures) / float64(s.TotalTraffic)
}

// Flow quantizes the departure ratio into three bins: mostly arrivals (0),
// balanced (0.5) and mostly departures (1).
func (s *Station) Flow() float64 {
	ratio := s.DepartureRatio()
	switch {
	case ratio < 1.0/3:
		return 0
	case ratio < 2.0/3:
		return 0.5
	default:
		return 1
	}
}

// Title is the marker tooltip, e.g. "12 trips (5 departures, 7 arrivals)"
func (s *Station) Title() string {
	return fmt.Sprintf("%d trips (%d departures, %d arrivals)", s.TotalTraffic, s.Departures, s.Arrivals)
}

// ConvertToResponse converts a Station to StationResponse format.
// A nil scale leaves Radius at zero.
func (s *Station) ConvertToResponse(scale Scale) StationResponse {
	resp := StationResponse{
		ID:             s.ShortName,
		Name:           s.Name,
		Location:       [2]float64{s.Location.Lat, s.Location.Lon},
		Departures:     s.Departures,
		Arrivals:       s.Arrivals,
		TotalTraffic:   s.TotalTraffic,
		DepartureRatio: s.DepartureRatio(),
		Flow:           s.Flow(),
		Title:          s.Title(),
	}
	if scale != nil {
		resp.Radius = scale.Radius(s.TotalTraffic)
	}
	return resp
}

// Window is the half-open minute range [Start, End) selected for a query.
// Start > End means the window wraps past midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TrafficSnapshot is the result of one aggregation pass
type TrafficSnapshot struct {
	Minute     int               `json:"minute"`
	Label      string            `json:"label"`
	Window     *Window           `json:"window,omitempty"`
	MaxTraffic int               `json:"max_traffic"`
	Stations   []StationResponse `json:"data"`
	Updated    time.Time         `json:"updated"`
}

// DatasetStats describes the currently loaded dataset
type DatasetStats struct {
	Stations     int       `json:"stations"`
	Trips        int       `json:"trips"`
	SkippedRows  int       `json:"skipped_rows"`
	Rejected     int       `json:"rejected_trips"`
	LastUpdate   time.Time `json:"last_update"`
	LoadDuration string    `json:"load_duration,omitempty"`
}
