package bikeshare

import (
	"log/slog"
	"time"

	"github.com/jusunglee/bikeshare-go/internal/config"
	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/store"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
)

// AnyTime requests traffic over the whole day
const AnyTime = traffic.AnyTime

var (
	// ErrNotLoaded is returned before the datasets have been loaded
	ErrNotLoaded = store.ErrNotLoaded
	// ErrInvalidMinute is returned for a minute outside [0, 1439] other than AnyTime
	ErrInvalidMinute = traffic.ErrInvalidMinute
	// ErrInvalidLimit is returned for a negative result limit
	ErrInvalidLimit = store.ErrInvalidLimit
)

// Client defines the interface for querying station traffic
// Abstracts the data source behind a common interface so handlers can be tested
// without loading datasets
type Client interface {
	// Traffic returns every station with counters for the two-hour window
	// centered on minute, or for the whole day when minute is AnyTime
	Traffic(minute int) ([]models.Station, error)
	GetStationsByIDs(ids []string, minute int) ([]models.Station, error)
	GetStationsByLocation(lat, lon float64, limit, minute int) ([]models.Station, error)

	// MaxTraffic is the largest all-day station traffic, the domain of the
	// marker radius scale
	MaxTraffic() int

	Stats() models.DatasetStats
	GetLastUpdate() time.Time
}

// Config holds configuration for the bike-share client
// Sources may be local paths or http(s) URLs
type Config struct {
	StationsSource  string
	TripsSource     string
	Location        *time.Location
	RefreshInterval time.Duration
	CacheSize       int

	// Logger receives load and reload messages; nil uses slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns default configuration
// Points at the published Bluebikes March 2024 datasets in Boston local time
func DefaultConfig() Config {
	def := config.Default()
	loc, err := def.Data.Location()
	if err != nil {
		loc = time.Local
	}
	return Config{
		StationsSource: def.Data.Stations,
		TripsSource:    def.Data.Trips,
		Location:       loc,
		CacheSize:      def.Cache.Size,
	}
}
