package feed

import (
	"time"

	"github.com/jusunglee/bikeshare-go/internal/models"
)

// CreateMockStations creates mock station data for testing
// Uses real Bluebikes dock locations around Cambridge and Boston
func CreateMockStations() []models.Station {
	return []models.Station{
		{
			ShortName: "M32006",
			Name:      "MIT at Mass Ave / Amherst St",
			Location:  models.Location{Lat: 42.3581, Lon: -71.093198},
			Capacity:  27,
		},
		{
			ShortName: "M32011",
			Name:      "Central Square at Mass Ave / Essex St",
			Location:  models.Location{Lat: 42.36507, Lon: -71.1031},
			Capacity:  23,
		},
		{
			ShortName: "D32005",
			Name:      "South Station - 700 Atlantic Ave",
			Location:  models.Location{Lat: 42.352175, Lon: -71.055547},
			Capacity:  46,
		},
		{
			ShortName: "C32001",
			Name:      "Back Bay T Stop - Dartmouth St / Stuart St",
			Location:  models.Location{Lat: 42.34807, Lon: -71.076},
			Capacity:  19,
		},
	}
}

// CreateMockTrips creates mock trip data for testing
// Simulates a commuter day: inbound to South Station in the morning and
// outbound to Cambridge in the evening, plus one late-night ride across
// midnight
func CreateMockTrips(day time.Time) []*models.Trip {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	ride := func(id string, startMin, durationMin int, from, to string) *models.Trip {
		start := day.Add(time.Duration(startMin) * time.Minute)
		return &models.Trip{
			RideID:         id,
			StartStationID: from,
			EndStationID:   to,
			StartedAt:      start,
			EndedAt:        start.Add(time.Duration(durationMin) * time.Minute),
		}
	}

	return []*models.Trip{
		ride("r01", 7*60+45, 18, "M32011", "D32005"),
		ride("r02", 7*60+50, 15, "M32006", "D32005"),
		ride("r03", 8*60+5, 12, "M32006", "C32001"),
		ride("r04", 8*60+10, 20, "M32011", "D32005"),
		ride("r05", 12*60, 9, "C32001", "D32005"),
		ride("r06", 17*60+15, 16, "D32005", "M32006"),
		ride("r07", 17*60+20, 22, "D32005", "M32011"),
		ride("r08", 17*60+40, 14, "C32001", "M32006"),
		ride("r09", 23*60+40, 35, "D32005", "M32011"),
	}
}
