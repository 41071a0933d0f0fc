package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTelemetryLogsInterval = time.Second * 5
	defaultRegistryIdleGrace     = time.Minute * 5
	defaultRegistrySweepsPerSec  = 1
)

func (cfg *Cache) AdjustConfig() {
	if cfg.Eviction.Enabled() {
		cfg.Eviction.IsListing = cfg.Eviction.LRUMode != LRUModeSampling
		if cfg.Eviction.SoftLimitCoefficient > 0 {
			cfg.Eviction.SoftWeightLimit = int64(float64(cfg.DB.Size) * cfg.Eviction.SoftLimitCoefficient)
		} else {
			cfg.Eviction.SoftWeightLimit = cfg.DB.Size
		}
	}

	if cfg.Registry.Enabled() {
		if cfg.Registry.SweepsPerSec <= 0 {
			cfg.Registry.SweepsPerSec = defaultRegistrySweepsPerSec
		}
		if cfg.Registry.IdleGrace <= 0 {
			cfg.Registry.IdleGrace = defaultRegistryIdleGrace
		}
	}

	if cfg.DB.TelemetryLogsInterval <= 0 {
		cfg.DB.TelemetryLogsInterval = defaultTelemetryLogsInterval
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("empty config file %s", path)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
