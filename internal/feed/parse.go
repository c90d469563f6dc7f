package feed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jusunglee/bikeshare-go/internal/models"
)

// timeLayouts are tried in order when parsing trip timestamps
var timeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339Nano,
}

// Required trip columns
const (
	colStartStation = "start_station_id"
	colEndStation   = "end_station_id"
	colStartedAt    = "started_at"
	colEndedAt      = "ended_at"
	colRideID       = "ride_id"
)

// stationRecord is a station entry as published in GBFS station_information
type stationRecord struct {
	ShortName string      `json:"short_name"`
	StationID string      `json:"station_id"`
	Name      string      `json:"name"`
	Lat       json.Number `json:"lat"`
	Lon       json.Number `json:"lon"`
	Capacity  int         `json:"capacity"`
}

// ParseStations reads a station list, either a GBFS document
// ({"data": {"stations": [...]}}) or a bare JSON array.
func ParseStations(r io.Reader) ([]models.Station, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	var records []stationRecord
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decoding stations: %w", err)
		}
	} else {
		var doc struct {
			Data struct {
				Stations []stationRecord `json:"stations"`
			} `json:"data"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding stations: %w", err)
		}
		records = doc.Data.Stations
	}

	stations := make([]models.Station, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.ShortName == "" || seen[rec.ShortName] {
			continue
		}
		lat, err := rec.Lat.Float64()
		if err != nil {
			continue
		}
		lon, err := rec.Lon.Float64()
		if err != nil {
			continue
		}
		seen[rec.ShortName] = true
		stations = append(stations, models.Station{
			ShortName: rec.ShortName,
			StationID: rec.StationID,
			Name:      rec.Name,
			Location:  models.Location{Lat: lat, Lon: lon},
			Capacity:  rec.Capacity,
		})
	}

	if len(stations) == 0 {
		return nil, errors.New("no stations found")
	}
	return stations, nil
}

// ParseTrips reads a trip CSV with a header row. Timestamps without a zone are
// read in loc. Rows with a bad timestamp or the wrong number of fields are
// skipped; the number of skipped rows is returned alongside the trips.
func ParseTrips(r io.Reader, loc *time.Location) ([]*models.Trip, int, error) {
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading trip header: %w", err)
	}

	idx := func(col string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), col) {
				return i
			}
		}
		return -1
	}

	startIdx := idx(colStartStation)
	endIdx := idx(colEndStation)
	startedIdx := idx(colStartedAt)
	endedIdx := idx(colEndedAt)
	rideIdx := idx(colRideID)
	for col, i := range map[string]int{
		colStartStation: startIdx,
		colEndStation:   endIdx,
		colStartedAt:    startedIdx,
		colEndedAt:      endedIdx,
	} {
		if i < 0 {
			return nil, 0, fmt.Errorf("trip data missing column %q", col)
		}
	}
	width := len(header)

	var trips []*models.Trip
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("reading trips: %w", err)
		}
		if len(row) != width {
			skipped++
			continue
		}

		startedAt, err := parseTime(row[startedIdx], loc)
		if err != nil {
			skipped++
			continue
		}
		endedAt, err := parseTime(row[endedIdx], loc)
		if err != nil {
			skipped++
			continue
		}

		trip := &models.Trip{
			StartStationID: row[startIdx],
			EndStationID:   row[endIdx],
			StartedAt:      startedAt,
			EndedAt:        endedAt,
		}
		if rideIdx >= 0 {
			trip.RideID = row[rideIdx]
		}
		trips = append(trips, trip)
	}

	return trips, skipped, nil
}

// parseTime parses a trip timestamp. Zoned formats are converted to loc so
// that the minute of day is always local to the system.
func parseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	// Unix seconds
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
