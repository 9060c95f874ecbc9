package config

import (
	"os"
	"time"
)

const (
	appNameVar     = "CONDO_APP_NAME"
	baseURLVar     = "CONDO_BASE_URL"
	dataFolderVar  = "CONDO_DATA_DIR"
	logLevelVar    = "CONDO_LOG_LEVEL"
	httpTimeoutVar = "CONDO_HTTP_TIMEOUT"

	// Local backend dev server.
	defaultBaseURL     = "http://127.0.0.1:8000/api"
	defaultHTTPTimeout = 30 * time.Second
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "condoctl")
}

func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(dataFolderVar); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".condoctl"
	}
	return home + "/.condoctl"
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "warn")
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "DEV")
}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, defaultBaseURL)
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	raw := os.Getenv(httpTimeoutVar)
	if raw == "" {
		return defaultHTTPTimeout
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout <= 0 {
		return defaultHTTPTimeout
	}
	return timeout
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
