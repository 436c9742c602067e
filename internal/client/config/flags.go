package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagConfig      = "config"
	FlagAPI         = "api"
	FlagDB          = "db"
	FlagTimeout     = "timeout"
	FlagLogLevel    = "log-level"
	FlagDownloadDir = "download-dir"
)

// RegisterFlags declares the persistent flags of the root command.
//
//	-c, --config string        JSON config file
//	    --api string           backend origin
//	    --db string            session database path
//	    --timeout duration     per-request timeout (0 = none)
//	    --log-level string     debug|info|warn|error
//	    --download-dir string  where downloaded attachments are saved
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON config file")
	fs.String(FlagAPI, d.APIURL, "backend origin")
	fs.String(FlagDB, d.SessionDB, "session database path")
	fs.Duration(FlagTimeout, d.RequestTimeout, "per-request timeout, 0 for none")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug|info|warn|error")
	fs.String(FlagDownloadDir, d.DownloadDir, "directory for downloaded attachments")
}

// ApplyFlags copies every flag the user set explicitly onto cfg. Flags left
// at their default do not override JSON or environment values.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	if fs.Changed(FlagAPI) {
		if cfg.APIURL, err = fs.GetString(FlagAPI); err != nil {
			return err
		}
	}
	if fs.Changed(FlagDB) {
		if cfg.SessionDB, err = fs.GetString(FlagDB); err != nil {
			return err
		}
	}
	if fs.Changed(FlagTimeout) {
		if cfg.RequestTimeout, err = fs.GetDuration(FlagTimeout); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogLevel) {
		if cfg.LogLevel, err = fs.GetString(FlagLogLevel); err != nil {
			return err
		}
	}
	if fs.Changed(FlagDownloadDir) {
		if cfg.DownloadDir, err = fs.GetString(FlagDownloadDir); err != nil {
			return err
		}
	}
	return nil
}
