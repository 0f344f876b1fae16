package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/psyche"
	"github.com/zeusync/psyche/internal/host"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "psyche.yaml"

// EnvPrefix prefixes every environment override, e.g. PSYCHE_MEMORY_CAPACITY.
const EnvPrefix = "PSYCHE_"

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Output is a file path, "stderr" or "stdout".
	Output string `yaml:"output" env:"OUTPUT"`
}

// Config is the full runtime configuration of a psyche host.
type Config struct {
	psyche.Config `yaml:",inline"`

	Host host.Config `yaml:"host" envPrefix:"HOST_"`
	Log  LogConfig   `yaml:"log" envPrefix:"LOG_"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Config: psyche.DefaultConfig(),
		Host:   host.DefaultConfig(),
		Log:    LogConfig{Level: "info", Output: "stderr"},
	}
}

// Load builds a configuration from the defaults, the optional YAML file at
// path and PSYCHE_ prefixed environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file falls back to the
// defaults and environment. Use it for DefaultPath only; a file the user
// named must go through Load.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

// ParseEnv applies PSYCHE_ prefixed environment overrides to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Log.Output == "" {
		return errors.New("log: output must not be empty")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
