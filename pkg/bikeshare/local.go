package bikeshare

import (
	"context"
	"fmt"
	"time"

	"github.com/jusunglee/bikeshare-go/internal/feed"
	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/store"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
)

// LocalClient implements the Client interface for local usage
// Manages the in-memory store and optional background reloads
type LocalClient struct {
	store       *store.Store
	feedManager *feed.Manager
}

// NewLocal creates a new local client
// Loads both datasets before returning so queries never run against a partial
// dataset
func NewLocal(ctx context.Context, config Config) (*LocalClient, error) {
	s := store.NewStore(config.CacheSize)

	fm := feed.NewManager(feed.Sources{
		Stations: config.StationsSource,
		Trips:    config.TripsSource,
	}, config.Location, s)
	fm.SetRefreshInterval(config.RefreshInterval)
	fm.SetLogger(config.Logger)

	if err := fm.Load(ctx); err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	fm.Start()

	return &LocalClient{
		store:       s,
		feedManager: fm,
	}, nil
}

// NewFromData creates a client over an in-memory dataset without a feed
func NewFromData(stations []models.Station, trips []*models.Trip) *LocalClient {
	s := store.NewStore(0)
	s.Update(stations, traffic.NewIndex(trips), 0, 0)
	return &LocalClient{store: s}
}

// Close gracefully shuts down the local client
// Must be called to stop background goroutines and prevent leaks. Calling it
// again is a no-op
func (c *LocalClient) Close() {
	if c.feedManager != nil {
		c.feedManager.Stop()
	}
}

func (c *LocalClient) Traffic(minute int) ([]models.Station, error) {
	return c.store.Traffic(minute)
}

func (c *LocalClient) GetStationsByIDs(ids []string, minute int) ([]models.Station, error) {
	return c.store.GetStationsByIDs(ids, minute)
}

func (c *LocalClient) GetStationsByLocation(lat, lon float64, limit, minute int) ([]models.Station, error) {
	return c.store.GetStationsByLocation(lat, lon, limit, minute)
}

func (c *LocalClient) MaxTraffic() int {
	return c.store.MaxTraffic()
}

func (c *LocalClient) Stats() models.DatasetStats {
	return c.store.Stats()
}

func (c *LocalClient) GetLastUpdate() time.Time {
	return c.store.GetLastUpdate()
}
