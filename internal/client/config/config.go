package config

import "time"

// Config holds runtime settings for the planner CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - DatabasePath: sqlite file holding all local planner data.
//   - ProbeInterval: how often the client probes server reachability.
//   - SyncCooldown: minimum time between manual sync pushes.
//   - RequestTimeout: per-request HTTP timeout.
//
// Units: interval fields are time.Duration (e.g., 3*time.Second).
type Config struct {
	ServerURL      string
	DatabasePath   string
	ProbeInterval  time.Duration
	SyncCooldown   time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "planner.db"
	c.ProbeInterval = 3 * time.Second
	c.SyncCooldown = time.Hour
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
