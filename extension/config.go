package extension

import "time"

// Config holds the Scarcity extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.scarcity" or "scarcity" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start. The settings record
	// is still bootstrapped.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Admin is the hex address granted the admin role when the store holds
	// no settings yet. A persisted admin always wins.
	Admin string `json:"admin" mapstructure:"admin" yaml:"admin"`

	// BaseURI is the metadata base URI used when the store holds no
	// settings yet.
	BaseURI string `json:"base_uri" mapstructure:"base_uri" yaml:"base_uri"`

	// BoltPath opens an embedded bbolt store at this path when no store was
	// provided programmatically. Empty means the in-memory store.
	BoltPath string `json:"bolt_path" mapstructure:"bolt_path" yaml:"bolt_path"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PluginTimeout: 5 * time.Second,
	}
}
