package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jimalvess/diario-cli/internal/common"
)

// Config holds runtime settings for the diario CLI.
//
// Units: RequestTimeout and AttachmentCacheTTL are durations; a zero
// RequestTimeout means requests are bounded only by their context.
// MaxFileSize is in bytes.
type Config struct {
	APIURL              string
	SessionDB           string
	RequestTimeout      time.Duration
	MaxFileSize         int64
	MaxMediaItems       int
	AttachmentCacheSize int
	AttachmentCacheTTL  time.Duration
	DownloadDir         string
	LogLevel            string
}

const (
	DefaultMaxFileSize   int64 = 20 * 1024 * 1024
	DefaultMaxMediaItems       = 8
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = common.DefaultAPIURL
	c.SessionDB = defaultSessionDB()
	c.RequestTimeout = 0
	c.MaxFileSize = DefaultMaxFileSize
	c.MaxMediaItems = DefaultMaxMediaItems
	c.AttachmentCacheSize = 32
	c.AttachmentCacheTTL = 5 * time.Minute
	c.DownloadDir = "download"
	c.LogLevel = "info"
}

// Validate reports settings that would make the client unusable.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.SessionDB == "" {
		return fmt.Errorf("session_db must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxMediaItems <= 0 {
		return fmt.Errorf("max_media_items must be positive, got %d", c.MaxMediaItems)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Load constructs a Config, applies defaults, then overlays values from the
// JSON file at path (skipped when path is empty) and from the environment.
// Later sources take precedence over earlier ones; command-line flags are
// applied by the caller with ApplyFlags.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	parseEnv(cfg, getenv)
	return cfg, nil
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "diario.db"
	}
	return filepath.Join(dir, "diario", "session.db")
}
