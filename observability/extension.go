// Package observability provides a metrics extension for Scarcity that
// records ledger event counts through an injected MetricFactory.
package observability

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/event"
	"github.com/xraph/scarcity/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnSummoned         = (*MetricsExtension)(nil)
	_ plugin.OnTransferred      = (*MetricsExtension)(nil)
	_ plugin.OnApproval         = (*MetricsExtension)(nil)
	_ plugin.OnApprovalForAll   = (*MetricsExtension)(nil)
	_ plugin.OnBaseURIUpdated   = (*MetricsExtension)(nil)
	_ plugin.OnAdminTransferred = (*MetricsExtension)(nil)
	_ plugin.OnUnauthorized     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide event metrics.
// Register it as a Scarcity plugin to track minting and transfers.
type MetricsExtension struct {
	factory MetricFactory

	// Summoner metrics
	SummonerMinted      Counter
	SummonerTransferred Counter
	SummonerKind        Histogram

	// Approval metrics
	ApprovalSet     Counter
	ApprovalCleared Counter
	OperatorGranted Counter
	OperatorRevoked Counter

	// Admin metrics
	BaseURIUpdated   Counter
	AdminTransferred Counter

	// Access metrics
	Denied      Counter
	AdminDenied Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Summoner metrics
		SummonerMinted:      factory.Counter("scarcity.summoner.minted"),
		SummonerTransferred: factory.Counter("scarcity.summoner.transferred"),
		SummonerKind:        factory.Histogram("scarcity.summoner.kind"),

		// Approval metrics
		ApprovalSet:     factory.Counter("scarcity.approval.set"),
		ApprovalCleared: factory.Counter("scarcity.approval.cleared"),
		OperatorGranted: factory.Counter("scarcity.operator.granted"),
		OperatorRevoked: factory.Counter("scarcity.operator.revoked"),

		// Admin metrics
		BaseURIUpdated:   factory.Counter("scarcity.admin.base_uri_updated"),
		AdminTransferred: factory.Counter("scarcity.admin.transferred"),

		// Access metrics
		Denied:      factory.Counter("scarcity.access.denied"),
		AdminDenied: factory.Counter("scarcity.access.admin_denied"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Summoner hooks
// ──────────────────────────────────────────────────

// OnSummoned implements plugin.OnSummoned.
func (m *MetricsExtension) OnSummoned(_ context.Context, evt *event.Event) error {
	m.SummonerMinted.Inc()
	m.SummonerKind.Observe(float64(evt.Kind))
	return nil
}

// OnTransferred implements plugin.OnTransferred.
func (m *MetricsExtension) OnTransferred(_ context.Context, _ *event.Event) error {
	m.SummonerTransferred.Inc()
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, evt *event.Event) error {
	if evt.To == (common.Address{}) {
		m.ApprovalCleared.Inc()
	} else {
		m.ApprovalSet.Inc()
	}
	return nil
}

// OnApprovalForAll implements plugin.OnApprovalForAll.
func (m *MetricsExtension) OnApprovalForAll(_ context.Context, evt *event.Event) error {
	if evt.Approved {
		m.OperatorGranted.Inc()
	} else {
		m.OperatorRevoked.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnBaseURIUpdated implements plugin.OnBaseURIUpdated.
func (m *MetricsExtension) OnBaseURIUpdated(_ context.Context, _ *event.Event) error {
	m.BaseURIUpdated.Inc()
	return nil
}

// OnAdminTransferred implements plugin.OnAdminTransferred.
func (m *MetricsExtension) OnAdminTransferred(_ context.Context, _ *event.Event) error {
	m.AdminTransferred.Inc()
	return nil
}

// OnUnauthorized implements plugin.OnUnauthorized.
func (m *MetricsExtension) OnUnauthorized(_ context.Context, _ string, _ common.Address, err error) error {
	m.Denied.Inc()
	if errors.Is(err, scarcity.ErrNotAdmin) {
		m.AdminDenied.Inc()
	}
	return nil
}
