package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds all schedule tool configuration
type Config struct {
	// Timezone is the IANA zone the schedule is viewed in. Empty means local.
	Timezone string `yaml:"timezone"`

	Layout     LayoutConfig  `yaml:"layout"`
	Store      StoreConfig   `yaml:"store"`
	OrdersFile string        `yaml:"orders_file"`
	Output     OutputConfig  `yaml:"output"`
	Watch      WatchConfig   `yaml:"watch"`
	Events     EventsConfig  `yaml:"events"`
	Logging    LoggingConfig `yaml:"logging"`
}

// LayoutConfig configures Gantt geometry
type LayoutConfig struct {
	CellWidth float64 `yaml:"cell_width"`
}

// StoreConfig selects and addresses the record store
type StoreConfig struct {
	Driver     string `yaml:"driver"` // memory, sqlite
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	OrderBy    string `yaml:"order_by"`
	Descending bool   `yaml:"descending"`
}

// OutputConfig configures rendered output
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, svg, csv
	Dir    string `yaml:"dir"`
}

// WatchConfig configures the orders file watcher
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// EventsConfig configures the in-process event bus
type EventsConfig struct {
	// Retention is how many events the bus keeps per stream and overall.
	// Zero keeps everything.
	Retention int `yaml:"retention"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

var (
	ValidDrivers   = []string{DriverMemory, DriverSQLite}
	ValidFormats   = []string{"text", "json", "svg", "csv"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
	ValidOrderBy   = []string{"created_at", "request_date", "requested_completion_date", "product_name", "id"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Timezone: "",
		Layout: LayoutConfig{
			CellWidth: 40,
		},
		Store: StoreConfig{
			Driver:     DriverMemory,
			Path:       "schedule.db",
			Collection: "orders",
			OrderBy:    "created_at",
		},
		OrdersFile: "orders.csv",
		Output: OutputConfig{
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		Events: EventsConfig{
			Retention: 16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if tz := os.Getenv("PRODSCHEDULE_TZ"); tz != "" {
		c.Timezone = tz
	}
	if path := os.Getenv("PRODSCHEDULE_DB"); path != "" {
		c.Store.Driver = DriverSQLite
		c.Store.Path = path
	}
	if level := os.Getenv("PRODSCHEDULE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Location resolves Timezone. An empty timezone is time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetDebounce returns the watch debounce as a duration
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Layout.CellWidth <= 0 {
		return fmt.Errorf("layout.cell_width must be positive, got %v", c.Layout.CellWidth)
	}
	if !contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite driver")
	}
	if c.Store.OrderBy != "" && !contains(ValidOrderBy, c.Store.OrderBy) {
		return fmt.Errorf("invalid store.order_by: %s (valid: %v)", c.Store.OrderBy, ValidOrderBy)
	}
	if !contains(ValidFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch.debounce: %w", err)
		}
	}
	if c.Events.Retention < 0 {
		return fmt.Errorf("events.retention cannot be negative, got %d", c.Events.Retention)
	}
	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
