// Package audithook bridges Scarcity ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/event"
	"github.com/xraph/scarcity/id"
	"github.com/xraph/scarcity/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnSummoned         = (*Extension)(nil)
	_ plugin.OnTransferred      = (*Extension)(nil)
	_ plugin.OnApproval         = (*Extension)(nil)
	_ plugin.OnApprovalForAll   = (*Extension)(nil)
	_ plugin.OnBaseURIUpdated   = (*Extension)(nil)
	_ plugin.OnAdminTransferred = (*Extension)(nil)
	_ plugin.OnUnauthorized     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	ID         id.AuditID     `json:"id"`
	EventID    id.EventID     `json:"event_id,omitzero"`
	Sequence   uint64         `json:"sequence,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Summoner hooks
// ──────────────────────────────────────────────────

// OnSummoned implements plugin.OnSummoned.
func (e *Extension) OnSummoned(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, evt, ActionSummonerSummoned, SeverityInfo, OutcomeSuccess,
		ResourceSummoner, tokenID(evt), CategoryAsset, nil,
		"kind", evt.Kind,
		"minter", evt.To.Hex(),
	)
}

// OnTransferred implements plugin.OnTransferred.
func (e *Extension) OnTransferred(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, evt, ActionSummonerTransferred, SeverityInfo, OutcomeSuccess,
		ResourceSummoner, tokenID(evt), CategoryAsset, nil,
		"from", evt.From.Hex(),
		"to", evt.To.Hex(),
	)
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, evt, ActionSummonerApproved, SeverityInfo, OutcomeSuccess,
		ResourceSummoner, tokenID(evt), CategoryAccess, nil,
		"owner", evt.From.Hex(),
		"approved", evt.To.Hex(),
	)
}

// OnApprovalForAll implements plugin.OnApprovalForAll.
func (e *Extension) OnApprovalForAll(ctx context.Context, evt *event.Event) error {
	action := ActionOperatorRevoked
	if evt.Approved {
		action = ActionOperatorGranted
	}
	return e.record(ctx, evt, action, SeverityInfo, OutcomeSuccess,
		ResourceOperator, evt.To.Hex(), CategoryAccess, nil,
		"owner", evt.From.Hex(),
		"operator", evt.To.Hex(),
	)
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnBaseURIUpdated implements plugin.OnBaseURIUpdated.
func (e *Extension) OnBaseURIUpdated(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, evt, ActionBaseURIUpdated, SeverityInfo, OutcomeSuccess,
		ResourceSettings, "base_uri", CategoryAdmin, nil,
		"base_uri", evt.BaseURI,
	)
}

// OnAdminTransferred implements plugin.OnAdminTransferred.
func (e *Extension) OnAdminTransferred(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, evt, ActionAdminTransferred, SeverityWarning, OutcomeSuccess,
		ResourceSettings, "admin", CategoryAdmin, nil,
		"previous", evt.From.Hex(),
		"admin", evt.To.Hex(),
	)
}

// OnUnauthorized implements plugin.OnUnauthorized.
func (e *Extension) OnUnauthorized(ctx context.Context, op string, caller common.Address, err error) error {
	return e.record(ctx, &event.Event{Caller: caller}, ActionAccessDenied, SeverityWarning, OutcomeFailure,
		deniedResource(op), op, CategoryAccess, err,
		"operation", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// deniedResource maps a rejected operation to the resource it targeted.
func deniedResource(op string) string {
	switch op {
	case "Transfer", "Approve":
		return ResourceSummoner
	default:
		return ResourceSettings
	}
}

func tokenID(evt *event.Event) string {
	return strconv.FormatUint(evt.TokenID, 10)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	src *event.Event,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		ID:         id.NewAuditID(),
		EventID:    src.ID,
		Sequence:   src.Seq,
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	}
	if src.Caller != (common.Address{}) {
		evt.Actor = src.Caller.Hex()
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
