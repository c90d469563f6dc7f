package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/observability"
	"github.com/jusunglee/bikeshare-go/internal/store"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
)

// Sources locates the station and trip datasets. Each may be a local path or
// an http(s) URL.
type Sources struct {
	Stations string
	Trips    string
}

// Manager loads datasets into the store
type Manager struct {
	sources         Sources
	location        *time.Location
	store           *store.Store
	refreshInterval time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
	stopCh          chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewManager creates a new feed manager. Timestamps without a zone are read in
// loc (time.Local when nil).
func NewManager(sources Sources, loc *time.Location, store *store.Store) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{
		sources:  sources,
		location: loc,
		store:    store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
		stopCh: make(chan struct{}),
	}
}

// SetRefreshInterval configures how often the datasets are reloaded.
// 0 disables reloading.
func (m *Manager) SetRefreshInterval(interval time.Duration) {
	m.refreshInterval = interval
}

// SetLogger replaces the manager's logger. nil keeps the current one.
func (m *Manager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Load fetches both datasets, builds the trip index and swaps it into the
// store. On failure the store keeps its previous dataset.
func (m *Manager) Load(ctx context.Context) error {
	start := time.Now()

	var (
		stations []models.Station
		trips    []*models.Trip
		skipped  int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := m.open(ctx, m.sources.Stations)
		if err != nil {
			return fmt.Errorf("opening stations: %w", err)
		}
		defer body.Close()

		stations, err = ParseStations(body)
		return err
	})
	g.Go(func() error {
		body, err := m.open(ctx, m.sources.Trips)
		if err != nil {
			return fmt.Errorf("opening trips: %w", err)
		}
		defer body.Close()

		trips, skipped, err = ParseTrips(body, m.location)
		return err
	})

	if err := g.Wait(); err != nil {
		observability.RecordLoad(time.Since(start), err)
		return err
	}

	idx := traffic.NewIndex(trips)
	elapsed := time.Since(start)
	m.store.Update(stations, idx, skipped, elapsed)

	observability.RecordLoad(elapsed, nil)
	observability.UpdateDataset(len(stations), idx.Len(), skipped, idx.Rejected())

	if skipped > 0 {
		m.logger.Warn("Skipped malformed trip rows", "count", skipped)
	}
	m.logger.Info("Loaded dataset",
		"stations", len(stations),
		"trips", idx.Len(),
		"duration", elapsed)

	return nil
}

// Start begins the reload loop. It does nothing when the refresh interval is 0.
func (m *Manager) Start() {
	if m.refreshInterval <= 0 {
		return
	}
	m.wg.Add(1)
	go m.refreshLoop()
}

// Stop stops the reload loop. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}

func (m *Manager) refreshLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := m.Load(ctx); err != nil {
				m.logger.Error("Dataset reload failed", "error", err)
			}
			cancel()
		case <-m.stopCh:
			return
		}
	}
}

// open returns a reader for a local path or an http(s) URL
func (m *Manager) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, fmt.Errorf("no source configured")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return m.fetchFeed(ctx, source)
	}
	return os.Open(source)
}

func (m *Manager) fetchFeed(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return resp.Body, nil
}
