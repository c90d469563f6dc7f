package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "America/New_York", cfg.Data.Timezone)
	assert.Zero(t, cfg.Data.RefreshInterval)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
		check       func(t *testing.T, cfg AppConfig)
	}{
		{
			name: "overrides defaults",
			body: `
server:
  port: 9090
  readTimeout: 5s
data:
  stations: data/stations.json
  trips: data/trips.csv
  timezone: UTC
  refreshInterval: 6h
cache:
  size: 200
`,
			check: func(t *testing.T, cfg AppConfig) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "data/trips.csv", cfg.Data.Trips)
				assert.Equal(t, 6*time.Hour, cfg.Data.RefreshInterval)
				assert.Equal(t, 200, cfg.Cache.Size)
			},
		},
		{
			name: "partial file keeps defaults",
			body: "server:\n  port: 7000\n",
			check: func(t *testing.T, cfg AppConfig) {
				assert.Equal(t, 7000, cfg.Server.Port)
				assert.Equal(t, Default().Data.Stations, cfg.Data.Stations)
			},
		},
		{
			name: "allowed origins",
			body: "server:\n  allowedOrigins:\n    - https://bikes.example.org\n",
			check: func(t *testing.T, cfg AppConfig) {
				assert.Equal(t, []string{"https://bikes.example.org"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name:        "allowed origin not a url",
			body:        "server:\n  allowedOrigins:\n    - not an origin\n",
			expectError: true,
		},
		{
			name:        "port out of range",
			body:        "server:\n  port: 70000\n",
			expectError: true,
		},
		{
			name:        "unknown timezone",
			body:        "data:\n  timezone: Mars/Olympus_Mons\n",
			expectError: true,
		},
		{
			name:        "empty trips source",
			body:        "data:\n  trips: \"\"\n",
			expectError: true,
		},
		{
			name:        "malformed yaml",
			body:        "server: [port",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestDataConfigLocation(t *testing.T) {
	loc, err := DataConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = DataConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
