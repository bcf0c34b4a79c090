package config

import "time"

// AvailabilityCacheConfig defines settings for the booked-seat cache.  When
// Enabled is false or no Redis client is configured, every availability
// query goes to the database.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadAvailabilityCacheConfig reads AVAILABILITY_CACHE_* variables.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	cfg := AvailabilityCacheConfig{
		Enabled: envBool("AVAILABILITY_CACHE_ENABLED", true),
		TTL:     envDur("AVAILABILITY_CACHE_TTL", 30*time.Second),
		Prefix:  envStr("AVAILABILITY_CACHE_PREFIX", "booked"),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
