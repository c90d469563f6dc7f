package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jusunglee/bikeshare-go/api/handlers"
	"github.com/jusunglee/bikeshare-go/internal/config"
	"github.com/jusunglee/bikeshare-go/pkg/bikeshare"
)

func main() {
	var (
		configPath      = flag.String("config", "", "YAML config file")
		port            = flag.Int("port", 8080, "Server port")
		stations        = flag.String("stations", "", "Stations JSON path or URL")
		trips           = flag.String("trips", "", "Trips CSV path or URL")
		timezone        = flag.String("timezone", "", "IANA timezone of trip timestamps")
		refreshInterval = flag.Duration("refresh-interval", 0, "Dataset reload interval (0 disables)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("Failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	// Fallback to environment variables for the dataset locations
	if v := os.Getenv("BIKESHARE_STATIONS"); v != "" {
		cfg.Data.Stations = v
	}
	if v := os.Getenv("BIKESHARE_TRIPS"); v != "" {
		cfg.Data.Trips = v
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "stations":
			cfg.Data.Stations = *stations
		case "trips":
			cfg.Data.Trips = *trips
		case "timezone":
			cfg.Data.Timezone = *timezone
		case "refresh-interval":
			cfg.Data.RefreshInterval = *refreshInterval
		}
	})

	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Data.Location()
	if err != nil {
		slog.Error("Unknown timezone", "timezone", cfg.Data.Timezone, "error", err)
		os.Exit(1)
	}

	slog.Info("Loading datasets", "stations", cfg.Data.Stations, "trips", cfg.Data.Trips)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Minute)
	client, err := bikeshare.NewLocal(loadCtx, bikeshare.Config{
		StationsSource:  cfg.Data.Stations,
		TripsSource:     cfg.Data.Trips,
		Location:        loc,
		RefreshInterval: cfg.Data.RefreshInterval,
		CacheSize:       cfg.Cache.Size,
		Logger:          slog.Default().With("component", "feed"),
	})
	cancelLoad()
	if err != nil {
		slog.Error("Failed to create bike-share client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Create HTTP server
	r := mux.NewRouter()
	h := handlers.NewHandler(client, cfg.Server.AllowedOrigins...)
	h.RegisterRoutes(r)

	// Add middleware
	r.Use(handlers.LoggingMiddleware)
	r.Use(handlers.CORSMiddleware(cfg.Server.AllowedOrigins...))

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
