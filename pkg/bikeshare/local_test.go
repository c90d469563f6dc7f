package bikeshare

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/bikeshare-go/internal/feed"
)

// Interface check
var _ Client = (*LocalClient)(nil)

func newMockClient(t *testing.T) *LocalClient {
	t.Helper()
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	c := NewFromData(feed.CreateMockStations(), feed.CreateMockTrips(day))
	t.Cleanup(c.Close)
	return c
}

func TestLocalClient_Traffic(t *testing.T) {
	c := newMockClient(t)

	all, err := c.Traffic(AnyTime)
	require.NoError(t, err)
	require.Len(t, all, 4)

	byID := make(map[string][3]int)
	for _, s := range all {
		byID[s.ShortName] = [3]int{s.Departures, s.Arrivals, s.TotalTraffic}
	}
	assert.Equal(t, [3]int{2, 2, 4}, byID["M32006"])
	assert.Equal(t, [3]int{2, 2, 4}, byID["M32011"])
	assert.Equal(t, [3]int{3, 4, 7}, byID["D32005"])
	assert.Equal(t, [3]int{2, 1, 3}, byID["C32001"])
	assert.Equal(t, 7, c.MaxTraffic())

	// Morning rush centered on 8:00 AM: everything flows into South Station
	morning, err := c.Traffic(8 * 60)
	require.NoError(t, err)
	for _, s := range morning {
		if s.ShortName == "D32005" {
			assert.Equal(t, 0, s.Departures)
			assert.Equal(t, 3, s.Arrivals)
		}
	}

	_, err = c.Traffic(2000)
	assert.Error(t, err)
}

func TestLocalClient_Lookups(t *testing.T) {
	c := newMockClient(t)

	byIDs, err := c.GetStationsByIDs([]string{"D32005", "nope"}, AnyTime)
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, 7, byIDs[0].TotalTraffic)

	near, err := c.GetStationsByLocation(42.3523, -71.0556, 1, 17*60+30)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "D32005", near[0].ShortName)
	assert.Equal(t, 2, near[0].Departures)

	_, err = c.GetStationsByLocation(42.3523, -71.0556, -1, AnyTime)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	stats := c.Stats()
	assert.Equal(t, 4, stats.Stations)
	assert.Equal(t, 9, stats.Trips)
	assert.WithinDuration(t, time.Now(), c.GetLastUpdate(), time.Minute)
}

func TestLocalClient_CloseTwice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StationsSource = "../../internal/feed/testdata/stations.json"
	cfg.TripsSource = "../../internal/feed/testdata/trips.csv"
	cfg.Location = time.UTC
	cfg.RefreshInterval = time.Hour

	c, err := NewLocal(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})

	// Clients built from data have no feed to stop
	assert.NotPanics(t, newMockClient(t).Close)
}

func TestNewLocal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StationsSource = "../../internal/feed/testdata/stations.json"
	cfg.TripsSource = "../../internal/feed/testdata/trips.csv"
	cfg.Location = time.UTC

	var logs bytes.Buffer
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	c, err := NewLocal(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 5, c.Stats().Trips)
	assert.Contains(t, logs.String(), "Loaded dataset")
	assert.Contains(t, logs.String(), "Skipped malformed trip rows")

	cfg.TripsSource = "does-not-exist.csv"
	_, err = NewLocal(context.Background(), cfg)
	assert.Error(t, err)
}
