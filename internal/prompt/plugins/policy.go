package plugins

import "time"

// Defaults applied when a provider does not specify a timeout or cache
// policy, or specifies one that cannot be parsed.
const (
	// DefaultTimeout is the soft per-key wait budget for a fetch.
	DefaultTimeout = 100 * time.Millisecond
	// DefaultCacheTTL is how long a fetched value stays fresh.
	DefaultCacheTTL = 500 * time.Millisecond
)

// PolicyMode selects how a fetched value is cached.
type PolicyMode int

const (
	// PolicyTTL caches the value for a fixed duration.
	PolicyTTL PolicyMode = iota
	// PolicyAlways stores the value but marks it immediately stale, so it
	// is only ever served as a fallback while a fresh fetch runs.
	PolicyAlways
	// PolicyNever stores the value with no expiry. It is reused until an
	// explicit reload.
	PolicyNever
)

// CachePolicy describes how a provider's results are cached.
type CachePolicy struct {
	Mode PolicyMode
	TTL  time.Duration
}

// ParseTimeout parses a provider timeout spec such as "100ms", "2s" or "0".
// An empty or malformed spec falls back to DefaultTimeout rather than
// failing the plugin. A zero timeout means fire-and-forget: the fetch is
// never waited on during a prompt draw.
func ParseTimeout(spec string) time.Duration {
	if spec == "" {
		return DefaultTimeout
	}
	if spec == "0" {
		return 0
	}
	d, err := time.ParseDuration(spec)
	if err != nil || d < 0 {
		return DefaultTimeout
	}
	return d
}

// ParseCachePolicy parses a provider cache spec: "always", "never", or a
// duration such as "2s". An empty or malformed spec falls back to a TTL of
// DefaultCacheTTL.
func ParseCachePolicy(spec string) CachePolicy {
	switch spec {
	case "always":
		return CachePolicy{Mode: PolicyAlways}
	case "never":
		return CachePolicy{Mode: PolicyNever}
	case "":
		return CachePolicy{Mode: PolicyTTL, TTL: DefaultCacheTTL}
	}
	d, err := time.ParseDuration(spec)
	if err != nil || d <= 0 {
		return CachePolicy{Mode: PolicyTTL, TTL: DefaultCacheTTL}
	}
	return CachePolicy{Mode: PolicyTTL, TTL: d}
}
