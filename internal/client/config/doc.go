// Package config loads runtime configuration for the diario CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config.
//  3. Environment: DIARIO_API_URL, DIARIO_DB, DIARIO_LOG_LEVEL.
//  4. Command-line flags set explicitly by the user (see ApplyFlags).
//
// # JSON schema
//
// Durations can be strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8080",
//	  "session_db": "/home/me/.config/diario/session.db",
//	  "request_timeout": "0s",
//	  "max_file_size": 20971520,
//	  "max_media_items": 8,
//	  "attachment_cache_size": 32,
//	  "attachment_cache_ttl": "5m",
//	  "download_dir": "download",
//	  "log_level": "info"
//	}
package config
