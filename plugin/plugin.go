// Package plugin provides an extensible plugin system for Scarcity.
// Plugins hook into ledger lifecycle events; they observe committed changes
// and can never veto or roll back an operation.
package plugin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l any) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Summoner hooks
// ──────────────────────────────────────────────────

// OnSummoned is called after a new summoner is minted.
type OnSummoned interface {
	Plugin
	OnSummoned(ctx context.Context, evt *event.Event) error
}

// OnTransferred is called after a summoner changes owner.
type OnTransferred interface {
	Plugin
	OnTransferred(ctx context.Context, evt *event.Event) error
}

// OnApproval is called after a single-summoner delegate is set.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, evt *event.Event) error
}

// OnApprovalForAll is called after an operator is granted or revoked.
type OnApprovalForAll interface {
	Plugin
	OnApprovalForAll(ctx context.Context, evt *event.Event) error
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnBaseURIUpdated is called after the admin changes the base URI.
type OnBaseURIUpdated interface {
	Plugin
	OnBaseURIUpdated(ctx context.Context, evt *event.Event) error
}

// OnAdminTransferred is called after the admin role changes hands.
type OnAdminTransferred interface {
	Plugin
	OnAdminTransferred(ctx context.Context, evt *event.Event) error
}

// OnUnauthorized is called when an operation is rejected for lack of
// privilege. op is the ledger method name.
type OnUnauthorized interface {
	Plugin
	OnUnauthorized(ctx context.Context, op string, caller common.Address, err error) error
}
