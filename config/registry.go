package config

import "time"

type RegistryCfg struct {
	// SweepsPerSec defines how many registry sweep cycles the janitor performs
	// per second. Each cycle scans the whole registry, so low rates are fine.
	// Example: 1.
	SweepsPerSec int `yaml:"sweeps_per_sec"`

	// IdleGrace is the minimum time a signal must stay unreferenced and
	// unacquired before the janitor may reap it. It must comfortably cover the
	// window between signal acquisition and cache entry commit on a miss path.
	// Example: "5m".
	IdleGrace time.Duration `yaml:"idle_grace"`
}

func (cfg *RegistryCfg) Enabled() bool {
	return cfg != nil
}
