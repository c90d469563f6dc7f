package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jusunglee/bikeshare-go/internal/feed"
	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
	"github.com/jusunglee/bikeshare-go/pkg/bikeshare"
)

func main() {
	var (
		minute   = flag.Int("minute", bikeshare.AnyTime, "Minute of day to center the two-hour window on (-1 for all day)")
		lat      = flag.Float64("lat", 0, "Latitude for a nearest-stations query")
		lon      = flag.Float64("lon", 0, "Longitude for a nearest-stations query")
		limit    = flag.Int("limit", 5, "Number of stations to print")
		stations = flag.String("stations", "", "Stations JSON path or URL")
		trips    = flag.String("trips", "", "Trips CSV path or URL")
		demo     = flag.Bool("demo", false, "Use the built-in sample dataset")
	)
	flag.Parse()

	if err := traffic.CheckMinute(*minute); err != nil {
		slog.Error("Invalid minute", "error", err)
		os.Exit(1)
	}
	if *limit <= 0 {
		slog.Error("Invalid limit, must be at least 1", "limit", *limit)
		os.Exit(1)
	}

	client, err := newClient(*demo, *stations, *trips)
	if err != nil {
		slog.Error("Failed to create bike-share client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Location-based query mode
	if *lat != 0 || *lon != 0 {
		near, err := client.GetStationsByLocation(*lat, *lon, *limit, *minute)
		if err != nil {
			slog.Error("Failed to get stations", "error", err)
			os.Exit(1)
		}

		fmt.Printf("\nNearest stations to (%.4f, %.4f), %s:\n", *lat, *lon, traffic.FormatMinute(*minute))
		printStations(near)
		return
	}

	// Default busiest-stations mode
	all, err := client.Traffic(*minute)
	if err != nil {
		slog.Error("Failed to compute traffic", "error", err)
		os.Exit(1)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalTraffic > all[j].TotalTraffic
	})
	if len(all) > *limit {
		all = all[:*limit]
	}

	if *minute == bikeshare.AnyTime {
		fmt.Printf("\nBusiest stations, any time:\n")
	} else {
		start, end := traffic.Window(*minute)
		fmt.Printf("\nBusiest stations between %s and %s:\n", traffic.FormatMinute(start), traffic.FormatMinute(end))
	}
	printStations(all)

	stats := client.Stats()
	fmt.Printf("\n%d stations, %d trips (%d rows skipped), loaded %s\n",
		stats.Stations, stats.Trips, stats.SkippedRows, stats.LastUpdate.Format("3:04 PM"))
}

func newClient(demo bool, stations, trips string) (*bikeshare.LocalClient, error) {
	if demo {
		day := time.Now().Truncate(24 * time.Hour)
		return bikeshare.NewFromData(feed.CreateMockStations(), feed.CreateMockTrips(day)), nil
	}

	config := bikeshare.DefaultConfig()
	if stations != "" {
		config.StationsSource = stations
	}
	if trips != "" {
		config.TripsSource = trips
	}

	fmt.Println("Loading datasets...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return bikeshare.NewLocal(ctx, config)
}

func printStations(stations []models.Station) {
	for _, s := range stations {
		fmt.Printf("- %-40s %s  out %3d  in %3d  total %4d  ratio %.2f\n",
			s.Name, s.ShortName, s.Departures, s.Arrivals, s.TotalTraffic, s.DepartureRatio())
	}
}
