package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("30s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d.Duration = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	d.Duration = time.Duration(n)
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type JsonConfig struct {
	APIURL              *string   `json:"api_url"`
	SessionDB           *string   `json:"session_db"`
	RequestTimeout      *Duration `json:"request_timeout"`
	MaxFileSize         *int64    `json:"max_file_size"`
	MaxMediaItems       *int      `json:"max_media_items"`
	AttachmentCacheSize *int      `json:"attachment_cache_size"`
	AttachmentCacheTTL  *Duration `json:"attachment_cache_ttl"`
	DownloadDir         *string   `json:"download_dir"`
	LogLevel            *string   `json:"log_level"`
}

// parseJSON overlays Config with values loaded from the JSON file at path.
// An empty path is a no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIURL != nil {
		cfg.APIURL = *jc.APIURL
	}
	if jc.SessionDB != nil {
		cfg.SessionDB = *jc.SessionDB
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxFileSize != nil {
		cfg.MaxFileSize = *jc.MaxFileSize
	}
	if jc.MaxMediaItems != nil {
		cfg.MaxMediaItems = *jc.MaxMediaItems
	}
	if jc.AttachmentCacheSize != nil {
		cfg.AttachmentCacheSize = *jc.AttachmentCacheSize
	}
	if jc.AttachmentCacheTTL != nil {
		cfg.AttachmentCacheTTL = jc.AttachmentCacheTTL.Duration
	}
	if jc.DownloadDir != nil {
		cfg.DownloadDir = *jc.DownloadDir
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
