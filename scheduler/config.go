package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/sun"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for the planetary hours service
type Config struct {
	// Location settings
	Latitude  float64 `json:"latitude" yaml:"latitude"`   // Observer latitude in degrees
	Longitude float64 `json:"longitude" yaml:"longitude"` // Observer longitude in degrees, east positive
	City      string  `json:"city" yaml:"city"`           // City name, geocoded when latitude/longitude are not given
	Timezone  string  `json:"timezone" yaml:"timezone"`   // IANA timezone used for the civil date (e.g., "Europe/Riga")

	// Calculation settings
	SunAlgorithm string `json:"sun_algorithm" yaml:"sun_algorithm"` // builtin, suncalc or go-sunrise

	// Scheduler settings
	RefreshInterval   time.Duration `json:"refresh_interval" yaml:"refresh_interval"`     // How often to recompute the planetary day
	BroadcastInterval time.Duration `json:"broadcast_interval" yaml:"broadcast_interval"` // How often to push updates to WebSocket clients
	DryRun            bool          `json:"dry_run" yaml:"dry_run"`                       // Compute without persisting

	// Server settings
	ServerPort int `json:"server_port" yaml:"server_port"` // Port for the HTTP API (0 = disabled)

	// Storage settings
	PostgresConnString string `json:"postgres_conn_string" yaml:"postgres_conn_string"` // PostgreSQL connection string for schedule history
	ProfileDBPath      string `json:"profile_db_path" yaml:"profile_db_path"`           // SQLite file holding the saved location and birth data

	// Geocoder settings
	GeocoderBaseURL string        `json:"geocoder_base_url" yaml:"geocoder_base_url"` // Nominatim base URL
	UserAgent       string        `json:"user_agent" yaml:"user_agent"`               // User agent for the geocoder
	APITimeout      time.Duration `json:"api_timeout" yaml:"api_timeout"`             // Timeout for API calls

	// Logging settings
	LogLevel  string `json:"log_level" yaml:"log_level"`   // Log level: debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format"` // Log format: text, json
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Latitude:          56.9496, // Riga, Latvia
		Longitude:         24.1052, // Riga, Latvia
		Timezone:          "Local",
		SunAlgorithm:      sun.AlgorithmBuiltin,
		RefreshInterval:   1 * time.Minute,
		BroadcastInterval: 1 * time.Minute,
		DryRun:            false,
		ServerPort:        8080,
		ProfileDBPath:     "planetary.db",
		GeocoderBaseURL:   "https://nominatim.openstreetmap.org",
		UserAgent:         "PlanetaryHours/1.0 (username@example.com)",
		APITimeout:        30 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig loads configuration from a JSON or YAML file. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return LoadConfigFromYAMLReader(file)
	}
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromYAMLReader loads YAML configuration from an io.Reader.
// Durations are written the same way as in JSON ("90s", "5m").
func LoadConfigFromYAMLReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config YAML: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyEnvOverrides overrides fields from PLANETARY_* environment variables.
// Unparsable values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PLANETARY_LATITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = parsed
		}
	}
	if v := os.Getenv("PLANETARY_LONGITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = parsed
		}
	}
	if v := os.Getenv("PLANETARY_CITY"); v != "" {
		c.City = v
	}
	if v := os.Getenv("PLANETARY_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("PLANETARY_SUN_ALGORITHM"); v != "" {
		c.SunAlgorithm = v
	}
	if v := os.Getenv("PLANETARY_REFRESH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.RefreshInterval = parsed
		}
	}
	if v := os.Getenv("PLANETARY_BROADCAST_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.BroadcastInterval = parsed
		}
	}
	if v := os.Getenv("PLANETARY_SERVER_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.ServerPort = parsed
		}
	}
	if v := os.Getenv("PLANETARY_POSTGRES_CONN"); v != "" {
		c.PostgresConnString = v
	}
	if v := os.Getenv("PLANETARY_PROFILE_DB"); v != "" {
		c.ProfileDBPath = v
	}
	if v := os.Getenv("PLANETARY_GEOCODER_URL"); v != "" {
		c.GeocoderBaseURL = v
	}
	if v := os.Getenv("PLANETARY_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("PLANETARY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PLANETARY_DRY_RUN"); v != "" {
		c.DryRun = v == "1" || strings.EqualFold(v, "true")
	}
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Coordinate().Validate(); err != nil {
		return err
	}

	if _, err := c.TimeLocation(); err != nil {
		return err
	}

	if _, err := sun.ForAlgorithm(c.SunAlgorithm); err != nil {
		return err
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be greater than 0, got: %s", c.RefreshInterval)
	}

	if c.BroadcastInterval <= 0 {
		return fmt.Errorf("broadcast_interval must be greater than 0, got: %s", c.BroadcastInterval)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port must be between 0 and 65535, got: %d", c.ServerPort)
	}

	if c.GeocoderBaseURL == "" {
		return fmt.Errorf("geocoder_base_url cannot be empty")
	}

	// Nominatim's usage policy requires an identifying user agent
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}

	// Validate log format
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}

	return nil
}

// Coordinate returns the configured observer position.
func (c *Config) Coordinate() astro.Coordinate {
	return astro.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

// TimeLocation resolves Timezone. An empty value means UTC.
func (c *Config) TimeLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		RefreshInterval   string `json:"refresh_interval"`
		BroadcastInterval string `json:"broadcast_interval"`
		APITimeout        string `json:"api_timeout"`
	}{
		Alias:             (*Alias)(c),
		RefreshInterval:   c.RefreshInterval.String(),
		BroadcastInterval: c.BroadcastInterval.String(),
		APITimeout:        c.APITimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		RefreshInterval   string `json:"refresh_interval"`
		BroadcastInterval string `json:"broadcast_interval"`
		APITimeout        string `json:"api_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.RefreshInterval != "" {
		if c.RefreshInterval, err = time.ParseDuration(aux.RefreshInterval); err != nil {
			return fmt.Errorf("invalid refresh_interval: %w", err)
		}
	}

	if aux.BroadcastInterval != "" {
		if c.BroadcastInterval, err = time.ParseDuration(aux.BroadcastInterval); err != nil {
			return fmt.Errorf("invalid broadcast_interval: %w", err)
		}
	}

	if aux.APITimeout != "" {
		if c.APITimeout, err = time.ParseDuration(aux.APITimeout); err != nil {
			return fmt.Errorf("invalid api_timeout: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
