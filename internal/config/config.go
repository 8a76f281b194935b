package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project-relative config file location.
const DefaultPath = ".promptpipe/config.yaml"

// Config is the full application configuration.
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider" yaml:"provider"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Preflight PreflightConfig `mapstructure:"preflight" yaml:"preflight"`
}

// ProviderConfig configures the CLI provider.
type ProviderConfig struct {
	// Path overrides executable resolution with an explicit binary path.
	Path string `mapstructure:"path" yaml:"path"`
	// Model is the default model identifier; aliased before use.
	Model string `mapstructure:"model" yaml:"model"`
	// Timeout is the per-invocation wall-clock limit.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// WorkDir is the working directory for invocations.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// PreflightConfig configures the pre-spawn resource check.
type PreflightConfig struct {
	Enabled         bool `mapstructure:"enabled" yaml:"enabled"`
	MinFreeMemoryMB int  `mapstructure:"min_free_memory_mb" yaml:"min_free_memory_mb"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Timeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Preflight: PreflightConfig{
			Enabled:         true,
			MinFreeMemoryMB: 256,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.Log.Level)
	}

	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want auto, text or json)", c.Log.Format)
	}

	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %v", c.Provider.Timeout)
	}

	if c.Preflight.MinFreeMemoryMB < 0 {
		return fmt.Errorf("preflight min_free_memory_mb must be >= 0, got %d", c.Preflight.MinFreeMemoryMB)
	}

	return nil
}

// WriteFile writes the configuration to path atomically.
func (c *Config) WriteFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicWriteFile(path, data, 0o600)
}
