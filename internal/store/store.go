package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bluele/gcache"

	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/observability"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
)

var (
	// ErrNotLoaded is returned by traffic queries before any dataset is loaded
	ErrNotLoaded = errors.New("station and trip data not loaded")
	// ErrInvalidLimit is returned for a negative result limit
	ErrInvalidLimit = errors.New("limit must not be negative")
)

// DefaultCacheSize holds every possible minute plus AnyTime
const DefaultCacheSize = traffic.MinutesPerDay + 1

// Store manages the in-memory station list and trip index
type Store struct {
	mu           sync.RWMutex
	stations     []models.Station
	stationIndex map[string]int
	index        *traffic.Index
	maxTraffic   int
	skipped      int
	lastUpdate   time.Time
	loadDuration time.Duration

	cache gcache.Cache
}

// NewStore creates a new store instance. cacheSize bounds the number of
// memoized minutes; 0 uses DefaultCacheSize.
func NewStore(cacheSize int) *Store {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Store{
		stationIndex: make(map[string]int),
		cache:        gcache.New(cacheSize).LRU().Build(),
	}
}

// Update replaces the dataset. stations must not be modified by the caller
// afterwards.
func (s *Store) Update(stations []models.Station, idx *traffic.Index, skipped int, loadDuration time.Duration) {
	all := traffic.ComputeStationTraffic(idx, stations, traffic.AnyTime)

	stationIndex := make(map[string]int, len(stations))
	for i, station := range stations {
		stationIndex[station.ShortName] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stations = stations
	s.stationIndex = stationIndex
	s.index = idx
	s.maxTraffic = traffic.MaxTraffic(all)
	s.skipped = skipped
	s.lastUpdate = time.Now()
	s.loadDuration = loadDuration

	s.cache.Purge()
	_ = s.cache.Set(traffic.AnyTime, all)
}

// Traffic returns every station with counters for the window around minute.
// The result is a copy the caller may modify.
func (s *Store) Traffic(minute int) ([]models.Station, error) {
	if err := traffic.CheckMinute(minute); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.trafficLocked(minute)
	if err != nil {
		return nil, err
	}
	return append([]models.Station(nil), all...), nil
}

// trafficLocked requires s.mu to be held. The returned slice is shared with
// the cache and must not be modified.
func (s *Store) trafficLocked(minute int) ([]models.Station, error) {
	if s.index == nil {
		return nil, ErrNotLoaded
	}

	if cached, err := s.cache.Get(minute); err == nil {
		observability.RecordCacheLookup(true)
		return cached.([]models.Station), nil
	}
	observability.RecordCacheLookup(false)

	start := time.Now()
	result := traffic.ComputeStationTraffic(s.index, s.stations, minute)
	observability.RecordAggregation(time.Since(start))

	if err := s.cache.Set(minute, result); err != nil {
		return nil, fmt.Errorf("caching traffic for minute %d: %w", minute, err)
	}
	return result, nil
}

// GetStationsByIDs returns stations by their short names
func (s *Store) GetStationsByIDs(ids []string, minute int) ([]models.Station, error) {
	if err := traffic.CheckMinute(minute); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.trafficLocked(minute)
	if err != nil {
		return nil, err
	}

	result := make([]models.Station, 0, len(ids))
	for _, id := range ids {
		if i, ok := s.stationIndex[id]; ok {
			result = append(result, all[i])
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no stations found for given IDs")
	}

	return result, nil
}

// GetStationsByLocation returns the stations nearest to a location
func (s *Store) GetStationsByLocation(lat, lon float64, limit, minute int) ([]models.Station, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if err := traffic.CheckMinute(minute); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.trafficLocked(minute)
	if err != nil {
		return nil, err
	}

	type stationDist struct {
		station  *models.Station
		distance float64
	}

	stations := make([]stationDist, 0, len(all))
	for i := range all {
		dist := distance(lat, lon, all[i].Location.Lat, all[i].Location.Lon)
		stations = append(stations, stationDist{&all[i], dist})
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].distance < stations[j].distance
	})

	result := make([]models.Station, 0, limit)
	for i := 0; i < limit && i < len(stations); i++ {
		result = append(result, *stations[i].station)
	}

	return result, nil
}

// MaxTraffic returns the largest all-day station traffic
func (s *Store) MaxTraffic() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxTraffic
}

// Stats describes the loaded dataset
func (s *Store) Stats() models.DatasetStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DatasetStats{
		Stations:    len(s.stations),
		SkippedRows: s.skipped,
		LastUpdate:  s.lastUpdate,
	}
	if s.index != nil {
		stats.Trips = s.index.Len()
		stats.Rejected = s.index.Rejected()
	}
	if s.loadDuration > 0 {
		stats.LoadDuration = s.loadDuration.String()
	}
	return stats
}

// GetLastUpdate returns the last update time
func (s *Store) GetLastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// distance calculates the distance between two points using the Haversine formula
func distance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
