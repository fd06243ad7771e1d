package ratelimit

import "time"

// EndpointConfig is the limit for one route. Path segments written as "*"
// match any single segment and a trailing "/" matches any deeper path.
type EndpointConfig struct {
	Path   string
	Method string
	// Limit is requests per window. Zero means unlimited.
	Limit  int
	Window time.Duration
	// Burst defaults to Limit.
	Burst int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused client limiter is kept.
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the standard tiers with limiting switched on or off.
func DefaultConfig(enabled bool) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 0: probes
		{Path: "/health", Method: "GET", Limit: 0},
		{Path: "/metrics", Method: "GET", Limit: 0},

		// Tier 1: matching runs and embedding generation call out to the provider
		// or score every candidate
		{Path: "/jobs/*/match", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/embeddings/*/missing", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/candidates/*/embedding", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/jobs/*/embedding", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Tier 2: writes
		{Path: "/candidates", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/matches/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: reads fall through to the default limit
	}
}
