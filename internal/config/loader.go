package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load builds the configuration from an initialized viper instance,
// applying defaults and validating the result.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("provider.path", def.Provider.Path)
	v.SetDefault("provider.model", def.Provider.Model)
	v.SetDefault("provider.timeout", def.Provider.Timeout)
	v.SetDefault("provider.work_dir", def.Provider.WorkDir)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("preflight.enabled", def.Preflight.Enabled)
	v.SetDefault("preflight.min_free_memory_mb", def.Preflight.MinFreeMemoryMB)
}
