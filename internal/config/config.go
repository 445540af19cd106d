package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// RSSI to distance estimation
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.5   // Path loss exponent (N)

	// Beacon tracking
	SmoothingWindow = 10 * time.Second        // Keep reporting a beacon this long after it was last seen
	ScanPeriod      = 1100 * time.Millisecond // One detection cycle per scan period
	ExitPeriod      = 10 * time.Second        // Region is left after this long without a matching beacon
	StaleRangeAge   = 10 * time.Second        // Ranged batches older than this are ignored by the logger

	// Alarm
	AlarmDistance = 0.5 // Sound the alarm when a beacon is farther than this (meters)

	// Region
	RegionID = "all-beacons"

	// UI
	TargetFPS      = 10
	HistorySize    = 60 // Distance samples kept per beacon for the sparkline
	DefaultAdapter = "hci0"

	// Proximity radar
	RadarRange     = 5.0  // Outer ring in meters; farther beacons sit on the edge
	AspectRatio    = 0.5  // Terminal char aspect correction (chars are ~2:1 tall)
	RingCount      = 4    // Evenly spaced range rings, plus the alarm ring
	SweepSpeedRPM  = 30   // Sweep rotations per minute
	SweepTrailDeg  = 60.0 // Sweep trail angle in degrees
	RadarMinWidth  = 100  // Narrower terminals show the list only
	RadarListRatio = 0.55 // Share of the body width given to the list

	// Logging
	DefaultLogFile  = "beacon-alarm.log"
	DefaultLogLevel = "info"

	// NATS
	DefaultSubject = "beacons"

	// App
	AppName    = "BEACON-ALARM"
	AppVersion = "1.0"
)

// Config is the runtime configuration. Fields map 1:1 to beacon-alarm.yaml.
type Config struct {
	Adapter         string        `yaml:"adapter"`
	Demo            bool          `yaml:"demo"`
	SmoothingWindow time.Duration `yaml:"smoothing_window"`
	ScanPeriod      time.Duration `yaml:"scan_period"`
	ExitPeriod      time.Duration `yaml:"exit_period"`
	MeasuredPower   float64       `yaml:"measured_power"`
	PathLossExp     float64       `yaml:"path_loss_exp"`

	Region RegionConfig `yaml:"region"`
	Alarm  AlarmConfig  `yaml:"alarm"`

	// Listen is the HTTP status API address (host:port). Empty disables it.
	Listen string `yaml:"listen"`

	NATS NATSConfig `yaml:"nats"`
	Log  LogConfig  `yaml:"log"`
}

// RegionConfig selects which beacons belong to the monitored region.
type RegionConfig struct {
	ID string `yaml:"id"`

	// CompanyIDs restricts the region to beacons advertising manufacturer
	// data from these Bluetooth SIG company identifiers. Empty matches all.
	CompanyIDs []uint16 `yaml:"company_ids"`
}

// AlarmConfig controls the proximity alarm.
type AlarmConfig struct {
	Distance float64 `yaml:"distance"`

	// Sound is an audio file looped while the alarm plays. Empty rings the
	// terminal bell instead.
	Sound string `yaml:"sound"`

	// Player overrides the audio player executable (paplay, aplay, afplay).
	Player string `yaml:"player"`
}

// NATSConfig enables publishing ranging and region events.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LogConfig controls logrus output. The TUI owns the terminal, so logs
// always go to a file.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Adapter == "" {
		cfg.Adapter = DefaultAdapter
	}
	if cfg.SmoothingWindow == 0 {
		cfg.SmoothingWindow = SmoothingWindow
	}
	if cfg.ScanPeriod == 0 {
		cfg.ScanPeriod = ScanPeriod
	}
	if cfg.ExitPeriod == 0 {
		cfg.ExitPeriod = ExitPeriod
	}
	if cfg.MeasuredPower == 0 {
		cfg.MeasuredPower = MeasuredPower
	}
	if cfg.PathLossExp == 0 {
		cfg.PathLossExp = PathLossExp
	}
	if cfg.Region.ID == "" {
		cfg.Region.ID = RegionID
	}
	if cfg.Alarm.Distance == 0 {
		cfg.Alarm.Distance = AlarmDistance
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = DefaultSubject
	}
	if cfg.Log.File == "" {
		cfg.Log.File = DefaultLogFile
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// Validate checks ranges that defaults cannot repair.
func (c *Config) Validate() error {
	if c.SmoothingWindow <= 0 {
		return fmt.Errorf("config: smoothing_window must be positive, got %s", c.SmoothingWindow)
	}
	if c.ScanPeriod < 100*time.Millisecond {
		return fmt.Errorf("config: scan_period must be at least 100ms, got %s", c.ScanPeriod)
	}
	if c.ExitPeriod < c.ScanPeriod {
		return fmt.Errorf("config: exit_period (%s) must not be shorter than scan_period (%s)", c.ExitPeriod, c.ScanPeriod)
	}
	if c.PathLossExp <= 0 {
		return fmt.Errorf("config: path_loss_exp must be positive, got %v", c.PathLossExp)
	}
	if c.Alarm.Distance < 0 {
		return fmt.Errorf("config: alarm.distance must not be negative, got %v", c.Alarm.Distance)
	}
	switch c.Log.Level {
	case "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}
