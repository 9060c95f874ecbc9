package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings is the optional YAML settings file (~/.condoctl/config.yaml or
// wherever the caller points NewFromFile).
type Settings struct {
	AppName     string `yaml:"app_name"`
	BaseURL     string `yaml:"base_url"`
	DataDir     string `yaml:"data_dir"`
	LogLevel    string `yaml:"log_level"`
	HTTPTimeout string `yaml:"http_timeout"` // time.ParseDuration format
}

func loadSettings(path string) (Settings, error) {
	var settings Settings
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, errors.Wrap(err, "[loadSettings] read settings file")
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, errors.Wrap(err, "[loadSettings] parse settings file")
	}
	return settings, nil
}

// fileConfig resolves env first, then the settings file, then defaults.
type fileConfig struct {
	EnvVars
	settings Settings
}

var _ Config = fileConfig{}

func (c fileConfig) GetAppName() string {
	if os.Getenv(appNameVar) == "" && c.settings.AppName != "" {
		return c.settings.AppName
	}
	return c.EnvVars.GetAppName()
}

func (c fileConfig) GetBaseURL() string {
	if os.Getenv(baseURLVar) == "" && c.settings.BaseURL != "" {
		return c.settings.BaseURL
	}
	return c.EnvVars.GetBaseURL()
}

func (c fileConfig) GetDataFolder() string {
	if os.Getenv(dataFolderVar) == "" && c.settings.DataDir != "" {
		return c.settings.DataDir
	}
	return c.EnvVars.GetDataFolder()
}

func (c fileConfig) GetLogLevel() string {
	if os.Getenv(logLevelVar) == "" && c.settings.LogLevel != "" {
		return c.settings.LogLevel
	}
	return c.EnvVars.GetLogLevel()
}

func (c fileConfig) GetHTTPTimeout() time.Duration {
	if os.Getenv(httpTimeoutVar) == "" && c.settings.HTTPTimeout != "" {
		if timeout, err := time.ParseDuration(c.settings.HTTPTimeout); err == nil && timeout > 0 {
			return timeout
		}
	}
	return c.EnvVars.GetHTTPTimeout()
}
