package config

import "time"

// LayoutCacheConfig tunes the Redis-backed cache of rendered layout
// details. Disabled entirely when no Redis client is available.
type LayoutCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadLayoutCacheConfig reads the LAYOUT_CACHE_* variables. Layout reads
// dominate writes heavily in the seat editor, so the default TTL is
// short enough that a missed invalidation heals quickly.
func LoadLayoutCacheConfig() LayoutCacheConfig {
	return LayoutCacheConfig{
		Enabled: envBool("LAYOUT_CACHE_ENABLED", true),
		TTL:     envDur("LAYOUT_CACHE_TTL", 60*time.Second),
		Prefix:  envStr("LAYOUT_CACHE_PREFIX", "layout"),
	}
}
