// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Bluebikes datasets for March 2024
const (
	DefaultStationsURL = "https://dsc106.com/labs/lab07/data/bluebikes-stations.json"
	DefaultTripsURL    = "https://dsc106.com/labs/lab07/data/bluebikes-traffic-2024-03.csv"
)

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gte=0"`

	// AllowedOrigins lists the browser origins allowed to call the API and open
	// the slider WebSocket. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins" validate:"dive,url"`
}

// DataConfig locates the station and trip datasets
type DataConfig struct {
	Stations        string        `yaml:"stations" validate:"required"`
	Trips           string        `yaml:"trips" validate:"required"`
	Timezone        string        `yaml:"timezone" validate:"omitempty,timezone"`
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"gte=0"`
}

// CacheConfig sizes the per-minute traffic cache
type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server ServerConfig `yaml:"server" validate:"required"`
	Data   DataConfig   `yaml:"data" validate:"required"`
	Cache  CacheConfig  `yaml:"cache"`
}

// Default returns the configuration used when no file is given
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Stations: DefaultStationsURL,
			Trips:    DefaultTripsURL,
			Timezone: "America/New_York",
		},
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints
func Validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves the configured timezone. An empty timezone is time.Local.
func (d DataConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}
