package config

const (
	EnvAPIURL   = "DIARIO_API_URL"
	EnvDB       = "DIARIO_DB"
	EnvLogLevel = "DIARIO_LOG_LEVEL"
)

// parseEnv overlays Config with non-empty environment variables.
func parseEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := getenv(EnvDB); v != "" {
		cfg.SessionDB = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
