package types

import "time"

// DefaultCacheTTL bounds how long a written entity satisfies point lookups
// from the cache. It papers over eventual consistency after a write; it is
// not a coherence mechanism.
const DefaultCacheTTL = 10 * time.Second

// DefaultAppLabel namespaces fingerprint keys when no label is configured.
const DefaultAppLabel = "app"

// Config holds the parameters for attaching a datastore and building a
// connection over it.
type Config struct {
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	AppLabel string `json:"app_label" yaml:"app_label"`

	// CacheTTLSeconds overrides DefaultCacheTTL when positive.
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.CacheTTLSeconds < 0 {
		return ErrCacheTTLInvalid
	}
	return nil
}

// CacheTTL returns the configured TTL, or DefaultCacheTTL when unset.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds > 0 {
		return time.Duration(c.CacheTTLSeconds) * time.Second
	}
	return DefaultCacheTTL
}

// Label returns the configured app label, or DefaultAppLabel when unset.
func (c Config) Label() string {
	if c.AppLabel != "" {
		return c.AppLabel
	}
	return DefaultAppLabel
}
