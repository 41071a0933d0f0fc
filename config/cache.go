package config

// Cache groups configuration of all cache subsystems.
// Optional components can be disabled by setting them to nil.
type Cache struct {
	DB DBCfg `yaml:"db"`

	// Eviction configures weight-based eviction policies.
	// It defines when and how cache entries are evicted to stay within the
	// configured aggregate weight limit.
	// If nil, eviction is disabled and cache size is unbounded (not recommended).
	Eviction *EvictionCfg `yaml:"eviction"`

	// Registry configures the background sweep of the invalidation signal
	// registry. The registry grows by one signal per entity identifier and is
	// only shrunk explicitly (Remove) or by this sweep.
	// If nil, the sweep is disabled and the registry may grow unbounded in
	// long-running processes.
	Registry *RegistryCfg `yaml:"registry"`
}
