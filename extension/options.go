package extension

import (
	"time"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/plugin"
	"github.com/stereohaus/beatstore/store"
)

// Option configures the Beatstore Forge extension.
type Option func(*Extension)

// WithStore sets the store for the marketplace engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a beatstore.Option through to the underlying engine.
func WithEngineOption(opt beatstore.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a beatstore plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, beatstore.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes asks the host application not to mount engine routes.
// See Config.DisableRoutes.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix a host application should mount engine
// routes under. See Config.BasePath.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithPlayFlushBatchSize sets the number of play increments to buffer before flushing.
func WithPlayFlushBatchSize(size int) Option {
	return func(e *Extension) { e.config.PlayFlushBatchSize = size }
}

// WithPlayFlushInterval sets how frequently the play buffer is flushed.
func WithPlayFlushInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.PlayFlushInterval = d }
}

// WithTierCacheTTL sets the entitlement tier cache duration.
func WithTierCacheTTL(d time.Duration) Option {
	return func(e *Extension) { e.config.TierCacheTTL = d }
}

// WithResetBaseURL sets the base URL embedded in password reset emails.
func WithResetBaseURL(u string) Option {
	return func(e *Extension) { e.config.ResetBaseURL = u }
}
