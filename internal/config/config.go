package config

import "time"

// Config holds runtime settings for the Snipee sync agent.
type Config struct {
	// DatabaseDSN is the path of the local replica database.
	DatabaseDSN string

	// DeviceName is an optional human-readable label attached to this
	// device's log output. Diagnostics only.
	DeviceName string

	// SyncInterval is the period of the background sync loop.
	SyncInterval time.Duration

	// DebounceDelay is how long the engine waits after a local change
	// before starting a sync round.
	DebounceDelay time.Duration

	// TombstoneRetention is how long deletion records are kept.
	TombstoneRetention time.Duration

	// S3 settings for the bucket holding the shared document.
	S3Region       string
	S3BaseEndpoint string
	S3User         string
	S3Password     string
	S3Bucket       string
	S3ObjectKey    string

	// EncryptionEnabled seals the shared document with a key derived from
	// a passphrase prompted at startup.
	EncryptionEnabled bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "snipee.db"
	c.SyncInterval = 30 * time.Minute
	c.DebounceDelay = 5 * time.Second
	c.TombstoneRetention = 30 * 24 * time.Hour
	c.S3Region = "us-east-1"
	c.S3Bucket = "snipee-sync"
	c.S3ObjectKey = "sync-document.json"
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
