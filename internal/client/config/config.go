package config

import "time"

// S3Config addresses an S3-compatible bucket for report uploads. An empty
// Bucket means reports are written to ReportDir only.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
	User     string
	Password string
}

// Config holds runtime settings for the billkeeper host.
type Config struct {
	RemoteURL      string
	Token          string
	PromptToken    bool
	RequestTimeout time.Duration
	BatchCreate    bool

	CacheDSN string
	CacheTTL time.Duration

	ReconcileRetries uint64
	ReconcileBackoff time.Duration

	ReportDir string
	Watermark string
	S3        S3Config

	LogBackend string
	LogLevel   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteURL = "http://127.0.0.1:8080/bills"
	c.RequestTimeout = 10 * time.Second
	c.CacheDSN = "billkeeper.db"
	c.CacheTTL = 24 * time.Hour
	c.ReconcileRetries = 2
	c.ReconcileBackoff = 200 * time.Millisecond
	c.ReportDir = "reports"
	c.Watermark = "billkeeper"
	c.S3.Region = "us-east-1"
	c.LogBackend = "slog"
	c.LogLevel = "info"
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
