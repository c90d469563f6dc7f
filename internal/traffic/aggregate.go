package traffic

import (
	"github.com/jusunglee/bikeshare-go/internal/models"
)

// ComputeStationTraffic counts departures and arrivals per station inside the
// window around minute and returns a new slice of stations with the counters
// set. The input slice is not modified. Trips referencing a station that is
// not in stations do not count toward anything.
func ComputeStationTraffic(idx *Index, stations []models.Station, minute int) []models.Station {
	departures := countBy(FilterByMinute(idx.Departures(), minute), func(t *models.Trip) string {
		return t.StartStationID
	})
	arrivals := countBy(FilterByMinute(idx.Arrivals(), minute), func(t *models.Trip) string {
		return t.EndStationID
	})

	result := make([]models.Station, len(stations))
	for i, station := range stations {
		station.Departures = departures[station.ShortName]
		station.Arrivals = arrivals[station.ShortName]
		station.TotalTraffic = station.Departures + station.Arrivals
		result[i] = station
	}
	return result
}

// MaxTraffic returns the largest TotalTraffic among stations
func MaxTraffic(stations []models.Station) int {
	top := 0
	for i := range stations {
		if stations[i].TotalTraffic > top {
			top = stations[i].TotalTraffic
		}
	}
	return top
}

func countBy(trips []*models.Trip, key func(*models.Trip) string) map[string]int {
	counts := make(map[string]int)
	for _, t := range trips {
		counts[key(t)]++
	}
	return counts
}
