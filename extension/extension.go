// Package extension provides the Forge extension adapter for Scarcity.
//
// It implements the forge.Extension interface to integrate the summoner
// ledger into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.scarcity" or "scarcity" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/store/bolt"
	"github.com/xraph/scarcity/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "scarcity"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Summoner asset ledger with ownership and approvals"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Scarcity as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *scarcity.Ledger
	store      store.Store
	ledgerOpts []scarcity.Option
}

// New creates a new Scarcity Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *scarcity.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// opens the store, initializes the ledger, and registers it in the DI
// container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	s, err := e.resolveStore()
	if err != nil {
		return err
	}
	e.store = s

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}

	e.engine = scarcity.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*scarcity.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("scarcity: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
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
		return errors.New("scarcity: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore picks the programmatic store, then the bolt path, then memory.
func (e *Extension) resolveStore() (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if e.config.BoltPath != "" {
		s, err := bolt.Open(e.config.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("scarcity: open bolt store: %w", err)
		}
		return s, nil
	}
	return memory.New(), nil
}

// buildLedgerOpts constructs scarcity.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() ([]scarcity.Option, error) {
	opts := make([]scarcity.Option, 0, len(e.ledgerOpts)+4)

	if e.config.Admin != "" {
		if !common.IsHexAddress(e.config.Admin) {
			return nil, scarcity.ValidationError{Field: "admin", Message: fmt.Sprintf("%q is not a hex address", e.config.Admin)}
		}
		opts = append(opts, scarcity.WithAdmin(common.HexToAddress(e.config.Admin)))
	}
	if e.config.BaseURI != "" {
		opts = append(opts, scarcity.WithBaseURI(e.config.BaseURI))
	}
	if e.config.PluginTimeout > 0 {
		opts = append(opts, scarcity.WithPluginTimeout(e.config.PluginTimeout))
	}
	if e.config.DisableMigrate {
		opts = append(opts, scarcity.WithoutMigrate())
	}

	// Pass-through options come last so they override config.
	opts = append(opts, e.ledgerOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("scarcity: configuration is required but not found in config files; " +
				"ensure 'extensions.scarcity' or 'scarcity' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("scarcity: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("admin", e.config.Admin),
		forge.F("base_uri", e.config.BaseURI),
		forge.F("bolt_path", e.config.BoltPath),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.scarcity", "scarcity"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("scarcity: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("scarcity: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.Admin == "" {
		yamlConfig.Admin = programmaticConfig.Admin
	}
	if yamlConfig.BaseURI == "" {
		yamlConfig.BaseURI = programmaticConfig.BaseURI
	}
	if yamlConfig.BoltPath == "" {
		yamlConfig.BoltPath = programmaticConfig.BoltPath
	}
	if yamlConfig.PluginTimeout == 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	return mergeWithDefaults(yamlConfig)
}
