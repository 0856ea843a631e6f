package extension

import (
	"time"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/plugin"
	"github.com/xraph/scarcity/store"
)

// Option configures the Scarcity Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a scarcity.Option through to the underlying engine.
func WithLedgerOption(opt scarcity.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, scarcity.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithAdmin sets the initial admin address (hex).
func WithAdmin(admin string) Option {
	return func(e *Extension) { e.config.Admin = admin }
}

// WithBaseURI sets the initial metadata base URI.
func WithBaseURI(uri string) Option {
	return func(e *Extension) { e.config.BaseURI = uri }
}

// WithBoltPath selects the embedded bbolt store at path.
func WithBoltPath(path string) Option {
	return func(e *Extension) { e.config.BoltPath = path }
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
