package config

import "time"

type DBCfg struct {
	// Size is the maximum aggregate weight the store may hold before
	// eviction kicks in. Weight is measured in entry units: a single cached
	// entity weighs 1, a cached collection weighs its length (minimum 1).
	Size int64 `yaml:"size"`

	IsTelemetryLogsEnabled bool          `yaml:"stat_logs_enabled"`
	TelemetryLogsInterval  time.Duration `yaml:"stat_logs_interval"`
	CacheTimeEnabled       bool          `yaml:"cache_time_enabled"`
}
