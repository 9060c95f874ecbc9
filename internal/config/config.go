package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates everything the console needs to run.
type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type ClientConfig interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

// New returns the environment-backed configuration. A .env file in the
// working directory is honored when present.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// NewFromFile layers an optional YAML settings file underneath the
// environment: an env var wins, then the file value, then the default.
// A missing file is not an error.
func NewFromFile(path string) (Config, error) {
	_ = godotenv.Load()

	settings, err := loadSettings(path)
	if err != nil {
		return nil, err
	}
	return fileConfig{settings: settings}, nil
}
