package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Vinony CLI.
//
// Fields:
//   - DataDir: directory holding the local SQLite database.
//   - DatabaseDSN: store DSN; empty means <DataDir>/vinony.db for sqlite.
//   - StoreDriver: sqlite, postgres or memory.
//   - ChatLatency / ImageLatency: simulated generation latencies.
//   - ChatModel / ImageModel: default models for new threads and renders.
//   - SessionSecret: HMAC secret for session tokens; empty means a random
//     per-process secret.
//   - S3*: object storage for image result links; an empty bucket selects
//     placeholder links.
type Config struct {
	DataDir      string
	DatabaseDSN  string
	StoreDriver  string
	LogLevel     string
	ChatLatency  time.Duration
	ImageLatency time.Duration
	ChatModel    string
	ImageModel   string

	SessionSecret string
	SessionTTL    time.Duration

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3LinkTTL      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.DatabaseDSN = ""
	c.StoreDriver = "sqlite"
	c.LogLevel = "warn"
	c.ChatLatency = 1500 * time.Millisecond
	c.ImageLatency = 3000 * time.Millisecond
	c.ChatModel = "gpt-4o"
	c.ImageModel = "dall-e-3"
	c.SessionSecret = ""
	c.SessionTTL = 24 * time.Hour
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3AccessKey = ""
	c.S3SecretKey = ""
	c.S3LinkTTL = 15 * time.Minute
}

// DSN returns DatabaseDSN, or the default SQLite file inside DataDir.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return filepath.Join(c.DataDir, "vinony.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".vinony"
	}
	return filepath.Join(home, ".vinony")
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
