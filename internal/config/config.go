package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory
const FileName = "campaignctl"

// Config holds the resolved settings for one campaignctl run
type Config struct {
	LogLevel string       `mapstructure:"logLevel"`
	Catalog  string       `mapstructure:"catalog"`
	Engine   EngineConfig `mapstructure:"engine"`
	Runner   RunnerConfig `mapstructure:"runner"`
}

// EngineConfig describes what the consuming engine supports
type EngineConfig struct {
	MinVersion      string `mapstructure:"minVersion"`
	MaxVersion      string `mapstructure:"maxVersion"`
	MaxSquadronSize int    `mapstructure:"maxSquadronSize"`
}

// RunnerConfig controls batch validation
type RunnerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads campaignctl.yaml from configDir if present and applies defaults.
// A missing file is not an error; a malformed one is.
func Load(fs afero.Fs, configDir string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	// Set default values
	v.SetDefault("logLevel", "info")
	v.SetDefault("catalog", "catalog.yaml")
	v.SetDefault("engine.minVersion", "10.0")
	v.SetDefault("engine.maxVersion", "10.9")
	v.SetDefault("engine.maxSquadronSize", 32)
	v.SetDefault("runner.concurrency", 4)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CAMPAIGNCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Runner.Concurrency < 1 {
		return nil, fmt.Errorf("runner.concurrency must be at least 1, got %d", cfg.Runner.Concurrency)
	}
	if cfg.Engine.MaxSquadronSize < 1 {
		return nil, fmt.Errorf("engine.maxSquadronSize must be at least 1, got %d", cfg.Engine.MaxSquadronSize)
	}

	return &cfg, nil
}
