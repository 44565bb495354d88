// Package extension provides the Forge extension adapter for Beatstore.
//
// It implements the forge.Extension interface to integrate Beatstore
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.beatstore" or
// "beatstore" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/store"
	"github.com/stereohaus/beatstore/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "beatstore"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Digital beats marketplace engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Beatstore as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *beatstore.Engine
	store      store.Store
	engineOpts []beatstore.Option
}

// New creates a new Beatstore Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Beatstore engine.
// This is nil until Register is called.
func (e *Extension) Engine() *beatstore.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the marketplace engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := beatstore.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*beatstore.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("beatstore: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("beatstore: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs beatstore.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []beatstore.Option {
	opts := make([]beatstore.Option, 0, len(e.engineOpts)+3)

	// Apply config-derived options.
	if e.config.PlayFlushBatchSize > 0 || e.config.PlayFlushInterval > 0 {
		batchSize := e.config.PlayFlushBatchSize
		flushInterval := e.config.PlayFlushInterval
		defaults := DefaultConfig()
		if batchSize == 0 {
			batchSize = defaults.PlayFlushBatchSize
		}
		if flushInterval == 0 {
			flushInterval = defaults.PlayFlushInterval
		}
		opts = append(opts, beatstore.WithPlayFlushConfig(batchSize, flushInterval))
	}

	if e.config.TierCacheTTL > 0 {
		opts = append(opts, beatstore.WithTierCacheTTL(e.config.TierCacheTTL))
	}

	if e.config.ResetBaseURL != "" {
		opts = append(opts, beatstore.WithResetBaseURL(e.config.ResetBaseURL))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("beatstore: configuration is required but not found in config files; " +
				"ensure 'extensions.beatstore' or 'beatstore' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("beatstore: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("play_flush_batch_size", e.config.PlayFlushBatchSize),
		forge.F("play_flush_interval", e.config.PlayFlushInterval),
		forge.F("tier_cache_ttl", e.config.TierCacheTTL),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.beatstore" first (namespaced pattern).
	if cm.IsSet("extensions.beatstore") {
		if err := cm.Bind("extensions.beatstore", &cfg); err == nil {
			e.Logger().Debug("beatstore: loaded config from file",
				forge.F("key", "extensions.beatstore"),
			)
			return cfg, true
		}
		e.Logger().Warn("beatstore: failed to bind extensions.beatstore config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "beatstore" key.
	if cm.IsSet("beatstore") {
		if err := cm.Bind("beatstore", &cfg); err == nil {
			e.Logger().Debug("beatstore: loaded config from file",
				forge.F("key", "beatstore"),
			)
			return cfg, true
		}
		e.Logger().Warn("beatstore: failed to bind beatstore config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.PlayFlushBatchSize == 0 {
		cfg.PlayFlushBatchSize = defaults.PlayFlushBatchSize
	}
	if cfg.PlayFlushInterval == 0 {
		cfg.PlayFlushInterval = defaults.PlayFlushInterval
	}
	if cfg.TierCacheTTL == 0 {
		cfg.TierCacheTTL = defaults.TierCacheTTL
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.ResetBaseURL == "" && programmaticConfig.ResetBaseURL != "" {
		yamlConfig.ResetBaseURL = programmaticConfig.ResetBaseURL
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.PlayFlushBatchSize == 0 && programmaticConfig.PlayFlushBatchSize != 0 {
		yamlConfig.PlayFlushBatchSize = programmaticConfig.PlayFlushBatchSize
	}
	if yamlConfig.PlayFlushInterval == 0 && programmaticConfig.PlayFlushInterval != 0 {
		yamlConfig.PlayFlushInterval = programmaticConfig.PlayFlushInterval
	}
	if yamlConfig.TierCacheTTL == 0 && programmaticConfig.TierCacheTTL != 0 {
		yamlConfig.TierCacheTTL = programmaticConfig.TierCacheTTL
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
