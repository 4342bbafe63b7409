// Package main provides the planetary hours entry point and CLI interface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/geocode"
	"github.com/devskill-org/planetary-hours/profile"
	"github.com/devskill-org/planetary-hours/scheduler"
	"github.com/devskill-org/planetary-hours/sun"
)

func main() {
	// Command line flags
	var (
		configFile  = flag.String("config", "config.json", "Configuration file path (.json, .yaml or .yml)")
		dateFlag    = flag.String("date", "", "Date to compute (YYYY-MM-DD), defaults to the current planetary day")
		lat         = flag.Float64("lat", 0, "Latitude in degrees, overrides the saved and configured location")
		lon         = flag.Float64("lon", 0, "Longitude in degrees, east positive")
		city        = flag.String("city", "", "City to geocode, e.g. \"New York, NY, USA\"")
		birthDate   = flag.String("birth-date", "", "Birth date for natal resonance (YYYY-MM-DD)")
		birthTime   = flag.String("birth-time", "", "Birth time for natal resonance (HH:MM, 24h)")
		saveProfile = flag.Bool("save-profile", false, "Save the resolved location and birth data for later runs")
		asJSON      = flag.Bool("json", false, "Print the day as JSON instead of a table")
		serve       = flag.Bool("serve", false, "Run the refresh loop and HTTP/WebSocket API")
		serverOnly  = flag.Bool("serverOnly", false, "With -serve, run only the web server without periodic refresh")
		help        = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := loadConfig(*configFile, isFlagSet("config"))
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	logger := newLogger(config, "[PLANETARY] ")
	ctx := context.Background()

	var store profile.Store
	if config.ProfileDBPath != "" {
		sqlite, err := profile.NewSQLite(config.ProfileDBPath)
		if err != nil {
			logger.Printf("Profile storage unavailable: %v", err)
		} else {
			store = sqlite
			defer sqlite.Close()
		}
	}

	coord, cityName, err := resolveLocation(ctx, config, store, locationFlags{
		lat:    *lat,
		lon:    *lon,
		city:   *city,
		latSet: isFlagSet("lat"),
		lonSet: isFlagSet("lon"),
	})
	if err != nil {
		fmt.Println("Error resolving location:", err)
		os.Exit(1)
	}
	config.Latitude = coord.Latitude
	config.Longitude = coord.Longitude
	config.City = cityName

	natal := resolveNatal(ctx, store, *birthDate, *birthTime, logger)

	if *saveProfile {
		if store == nil {
			fmt.Println("Error: profile storage is not available, set profile_db_path")
			os.Exit(1)
		}
		if err := store.SaveLocation(ctx, coord, cityName); err != nil {
			fmt.Println("Error saving location:", err)
			os.Exit(1)
		}
		if natal != nil {
			if err := store.SaveNatal(ctx, *natal); err != nil {
				fmt.Println("Error saving birth data:", err)
				os.Exit(1)
			}
		}
		logger.Printf("Profile saved to %s", config.ProfileDBPath)
	}

	if *serve {
		runServer(config, natal, *serverOnly)
		return
	}

	day, err := computeDay(config, natal, *dateFlag, logger)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(day); err != nil {
			fmt.Println("Error encoding JSON:", err)
			os.Exit(1)
		}
		return
	}

	loc, _ := config.TimeLocation()
	printDay(os.Stdout, day, cityName, loc)
}

// newLogger builds a logger from the log_level and log_format settings
func newLogger(config *scheduler.Config, prefix string) *log.Logger {
	logger, err := config.NewLogger(os.Stdout, prefix)
	if err != nil {
		fmt.Println("Invalid logging configuration:", err)
		return log.New(os.Stdout, prefix, log.LstdFlags)
	}
	return logger
}

// loadConfig reads the configuration file and applies environment overrides.
// A missing file is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (*scheduler.Config, error) {
	config, err := scheduler.LoadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		config = scheduler.DefaultConfig()
	}

	config.ApplyEnvOverrides()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

type locationFlags struct {
	lat, lon       float64
	city           string
	latSet, lonSet bool
}

// resolveLocation picks the observer position: explicit coordinates (both
// -lat and -lon), then an explicit city, then the saved profile, then the
// configured city, then the configured coordinates.
func resolveLocation(ctx context.Context, config *scheduler.Config, store profile.Store, f locationFlags) (astro.Coordinate, string, error) {
	if f.latSet != f.lonSet {
		return astro.Coordinate{}, "", fmt.Errorf("-lat and -lon must be given together")
	}
	if f.latSet {
		c := astro.Coordinate{Latitude: f.lat, Longitude: f.lon}
		return c, f.city, c.Validate()
	}

	if f.city != "" {
		c, err := geocodeCity(ctx, config, f.city)
		return c, f.city, err
	}

	if store != nil {
		saved, err := store.LoadLocation(ctx)
		if err == nil {
			return saved.Coordinate, saved.City, nil
		}
		if !errors.Is(err, profile.ErrNotFound) {
			return astro.Coordinate{}, "", err
		}
	}

	if config.City != "" {
		c, err := geocodeCity(ctx, config, config.City)
		return c, config.City, err
	}

	return config.Coordinate(), "", nil
}

func geocodeCity(ctx context.Context, config *scheduler.Config, city string) (astro.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, config.APITimeout)
	defer cancel()

	client := geocode.NewClient(config.UserAgent)
	client.SetBaseURL(config.GeocoderBaseURL)

	place, err := client.Lookup(ctx, city)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("failed to geocode %q: %w", city, err)
	}
	return place.Coordinate()
}

// resolveNatal returns birth data from the flags, or the saved profile when
// no flags are given. Malformed birth data is logged and dropped.
func resolveNatal(ctx context.Context, store profile.Store, date, clock string, logger *log.Logger) *almanac.NatalChart {
	var natal *almanac.NatalChart
	switch {
	case date != "":
		natal = &almanac.NatalChart{BirthDate: date, BirthTime: clock}
	case store != nil:
		saved, err := store.LoadNatal(ctx)
		if err != nil {
			if !errors.Is(err, profile.ErrNotFound) {
				logger.Printf("Failed to load birth data: %v", err)
			}
			return nil
		}
		natal = &saved
	default:
		return nil
	}

	if _, err := natal.Instant(time.UTC); err != nil {
		logger.Printf("Ignoring birth data: %v", err)
		return nil
	}
	return natal
}

// computeDay annotates the requested date, or the planetary day containing
// the current instant when date is empty.
func computeDay(config *scheduler.Config, natal *almanac.NatalChart, date string, logger *log.Logger) (*almanac.Day, error) {
	loc, err := config.TimeLocation()
	if err != nil {
		return nil, err
	}
	provider, err := sun.ForAlgorithm(config.SunAlgorithm)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	coord := config.Coordinate()
	target := almanac.PlanetaryDate(now, coord, loc, provider.SunTimes)
	if date != "" {
		if target, err = time.ParseInLocation("2006-01-02", date, loc); err != nil {
			return nil, fmt.Errorf("invalid -date %q: %w", date, err)
		}
	}

	req := almanac.Request{
		Date:       target,
		Coordinate: coord,
		Now:        now,
		Natal:      natal,
		Location:   loc,
		SunTimes:   provider.SunTimes,
	}
	day, err := almanac.Annotate(req)
	if err != nil && natal != nil {
		logger.Printf("Ignoring birth data: %v", err)
		req.Natal = nil
		day, err = almanac.Annotate(req)
	}
	return day, err
}

func runServer(config *scheduler.Config, natal *almanac.NatalChart, serverOnly bool) {
	fmt.Printf("Starting Planetary Hours service with the following configuration:\n")
	fmt.Printf("  Location: %s %s\n", config.Coordinate(), config.City)
	fmt.Printf("  Timezone: %s\n", config.Timezone)
	fmt.Printf("  Sun Algorithm: %s\n", config.SunAlgorithm)
	fmt.Printf("  Refresh Interval: %s\n", config.RefreshInterval)
	fmt.Printf("  Server Port: %d\n", config.ServerPort)
	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (schedules will not be persisted)\n")
	}
	fmt.Println()

	logger := newLogger(config, "[SCHEDULER] ")

	hourScheduler := scheduler.NewHourSchedulerWithServer(config, logger)
	hourScheduler.SetNatal(natal)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := hourScheduler.Start(ctx, serverOnly); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Printf("Scheduler error: %v", err)
			}
		}
	}()

	logger.Printf("Scheduler started. Press Ctrl+C to stop...")

	<-sigChan
	logger.Printf("Shutdown signal received, stopping scheduler...")

	cancel()
	hourScheduler.Stop()

	logger.Printf("Scheduler stopped successfully")
}

func showHelp() {
	fmt.Println("Planetary Hours - Chaldean planetary hours with zodiac, dignity and natal resonance")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Splits the day between sunrise and the next sunrise into 12 day and 12 night")
	fmt.Println("  hours, assigns each a planetary ruler in Chaldean order and annotates it with")
	fmt.Println("  the ruler's zodiac sign, essential dignity and strength.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  planetary-hours [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Today's hours for the configured location")
	fmt.Println("  planetary-hours")
	fmt.Println()
	fmt.Println("  # A specific date and place")
	fmt.Println("  planetary-hours -date=2024-06-20 -lat=40.71 -lon=-74.01")
	fmt.Println()
	fmt.Println("  # Geocode a city, add birth data and remember both")
	fmt.Println("  planetary-hours -city=\"Riga, Latvia\" -birth-date=1990-03-15 -birth-time=08:30 -save-profile")
	fmt.Println()
	fmt.Println("  # JSON output")
	fmt.Println("  planetary-hours -json")
	fmt.Println()
	fmt.Println("  # Run the HTTP/WebSocket API")
	fmt.Println("  planetary-hours -serve -config=config.yaml")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  planetary-hours -help")
}
