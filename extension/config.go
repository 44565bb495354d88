package extension

import "time"

// Config holds the Beatstore extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.beatstore" or "beatstore" keys).
type Config struct {
	// DisableRoutes tells a host application not to mount HTTP routes for
	// the engine. The extension itself registers no routes; the flag is
	// carried for hosts that wire their own handlers around the engine.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix a host application should mount the
	// engine's routes under (default: "/beatstore"). Like DisableRoutes it
	// only informs the host; the extension does not serve HTTP itself.
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// PlayFlushBatchSize is the number of play increments to buffer before
	// flushing to the store (default: 100).
	PlayFlushBatchSize int `json:"play_flush_batch_size" mapstructure:"play_flush_batch_size" yaml:"play_flush_batch_size"`

	// PlayFlushInterval is how frequently the play buffer is flushed even if
	// the batch size has not been reached (default: 5s).
	PlayFlushInterval time.Duration `json:"play_flush_interval" mapstructure:"play_flush_interval" yaml:"play_flush_interval"`

	// TierCacheTTL controls how long resolved entitlement tiers are cached
	// before re-deriving from the sale ledger (default: 30s).
	TierCacheTTL time.Duration `json:"tier_cache_ttl" mapstructure:"tier_cache_ttl" yaml:"tier_cache_ttl"`

	// ResetBaseURL is the base URL embedded in password reset emails.
	ResetBaseURL string `json:"reset_base_url" mapstructure:"reset_base_url" yaml:"reset_base_url"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PlayFlushBatchSize: 100,
		PlayFlushInterval:  5 * time.Second,
		TierCacheTTL:       30 * time.Second,
	}
}
