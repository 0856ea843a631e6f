package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/event"
)

// DefaultTimeout bounds a single plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages registered plugins and dispatches events to them.
// Hook implementations are discovered once at registration time.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit             []OnInit
	onShutdown         []OnShutdown
	onSummoned         []OnSummoned
	onTransferred      []OnTransferred
	onApproval         []OnApproval
	onApprovalForAll   []OnApprovalForAll
	onBaseURIUpdated   []OnBaseURIUpdated
	onAdminTransferred []OnAdminTransferred
	onUnauthorized     []OnUnauthorized
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its hooks.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	var hooks []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		hooks = append(hooks, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		hooks = append(hooks, "OnShutdown")
	}
	if v, ok := p.(OnSummoned); ok {
		r.onSummoned = append(r.onSummoned, v)
		hooks = append(hooks, "OnSummoned")
	}
	if v, ok := p.(OnTransferred); ok {
		r.onTransferred = append(r.onTransferred, v)
		hooks = append(hooks, "OnTransferred")
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
		hooks = append(hooks, "OnApproval")
	}
	if v, ok := p.(OnApprovalForAll); ok {
		r.onApprovalForAll = append(r.onApprovalForAll, v)
		hooks = append(hooks, "OnApprovalForAll")
	}
	if v, ok := p.(OnBaseURIUpdated); ok {
		r.onBaseURIUpdated = append(r.onBaseURIUpdated, v)
		hooks = append(hooks, "OnBaseURIUpdated")
	}
	if v, ok := p.(OnAdminTransferred); ok {
		r.onAdminTransferred = append(r.onAdminTransferred, v)
		hooks = append(hooks, "OnAdminTransferred")
	}
	if v, ok := p.(OnUnauthorized); ok {
		r.onUnauthorized = append(r.onUnauthorized, v)
		hooks = append(hooks, "OnUnauthorized")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"hooks", hooks,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, l any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnInit", p.Name(), func() error { return p.OnInit(ctx, l) })
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnShutdown", p.Name(), func() error { return p.OnShutdown(ctx) })
	}
}

// EmitSummoned emits a summoned event.
func (r *Registry) EmitSummoned(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onSummoned
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnSummoned", p.Name(), func() error { return p.OnSummoned(ctx, evt) })
	}
}

// EmitTransferred emits a transfer event.
func (r *Registry) EmitTransferred(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnTransferred", p.Name(), func() error { return p.OnTransferred(ctx, evt) })
	}
}

// EmitApproval emits an approval event.
func (r *Registry) EmitApproval(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onApproval
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnApproval", p.Name(), func() error { return p.OnApproval(ctx, evt) })
	}
}

// EmitApprovalForAll emits an operator approval event.
func (r *Registry) EmitApprovalForAll(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onApprovalForAll
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnApprovalForAll", p.Name(), func() error { return p.OnApprovalForAll(ctx, evt) })
	}
}

// EmitBaseURIUpdated emits a base URI change event.
func (r *Registry) EmitBaseURIUpdated(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onBaseURIUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnBaseURIUpdated", p.Name(), func() error { return p.OnBaseURIUpdated(ctx, evt) })
	}
}

// EmitAdminTransferred emits an admin change event.
func (r *Registry) EmitAdminTransferred(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onAdminTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnAdminTransferred", p.Name(), func() error { return p.OnAdminTransferred(ctx, evt) })
	}
}

// EmitUnauthorized reports a rejected privileged call.
func (r *Registry) EmitUnauthorized(ctx context.Context, op string, caller common.Address, cause error) {
	r.mu.RLock()
	plugins := r.onUnauthorized
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnUnauthorized", p.Name(), func() error { return p.OnUnauthorized(ctx, op, caller, cause) })
	}
}

// dispatch runs one hook and logs its failure.
func (r *Registry) dispatch(ctx context.Context, hook, pluginName string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never stall the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
