// Package audithook bridges Beatstore lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not bind to a
// concrete audit system. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stereohaus/beatstore/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnBeatCreated        = (*Extension)(nil)
	_ plugin.OnBeatUpdated        = (*Extension)(nil)
	_ plugin.OnBeatDeleted        = (*Extension)(nil)
	_ plugin.OnPlaysFlushed       = (*Extension)(nil)
	_ plugin.OnSaleRecorded       = (*Extension)(nil)
	_ plugin.OnExclusiveSold      = (*Extension)(nil)
	_ plugin.OnPaymentFailed      = (*Extension)(nil)
	_ plugin.OnOrderCreated       = (*Extension)(nil)
	_ plugin.OnOrderCaptured      = (*Extension)(nil)
	_ plugin.OnEntitlementChecked = (*Extension)(nil)
	_ plugin.OnEntitlementDenied  = (*Extension)(nil)
	_ plugin.OnUserRegistered     = (*Extension)(nil)
	_ plugin.OnNotifyFailed       = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import a
// specific audit system; callers inject the concrete backend at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Beatstore lifecycle events to an audit trail backend.
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
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnBeatCreated implements plugin.OnBeatCreated.
func (e *Extension) OnBeatCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBeatCreated, SeverityInfo, OutcomeSuccess,
		ResourceBeat, "", CategoryCatalog, nil,
		"event", "beat_created",
	)
}

// OnBeatUpdated implements plugin.OnBeatUpdated.
func (e *Extension) OnBeatUpdated(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionBeatUpdated, SeverityInfo, OutcomeSuccess,
		ResourceBeat, "", CategoryCatalog, nil,
		"event", "beat_updated",
	)
}

// OnBeatDeleted implements plugin.OnBeatDeleted.
func (e *Extension) OnBeatDeleted(ctx context.Context, beatID string) error {
	return e.record(ctx, ActionBeatDeleted, SeverityWarning, OutcomeSuccess,
		ResourceBeat, beatID, CategoryCatalog, nil,
		"beat_id", beatID,
	)
}

// OnPlaysFlushed implements plugin.OnPlaysFlushed.
func (e *Extension) OnPlaysFlushed(ctx context.Context, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionPlaysFlushed, SeverityInfo, OutcomeSuccess,
		ResourceBeat, "", CategoryCatalog, nil,
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Sale lifecycle hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded implements plugin.OnSaleRecorded.
func (e *Extension) OnSaleRecorded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionSaleRecorded, SeverityInfo, OutcomeSuccess,
		ResourceSale, "", CategorySales, nil,
		"event", "sale_recorded",
	)
}

// OnExclusiveSold implements plugin.OnExclusiveSold.
func (e *Extension) OnExclusiveSold(ctx context.Context, beatID, buyerEmail string) error {
	return e.record(ctx, ActionExclusiveSold, SeverityWarning, OutcomeSuccess,
		ResourceSale, beatID, CategorySales, nil,
		"beat_id", beatID,
		"buyer", buyerEmail,
	)
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (e *Extension) OnPaymentFailed(ctx context.Context, providerRef string, err error) error {
	return e.record(ctx, ActionPaymentFailed, SeverityCritical, OutcomeFailure,
		ResourceSale, providerRef, CategoryPayment, err,
		"provider_ref", providerRef,
	)
}

// OnOrderCreated implements plugin.OnOrderCreated.
func (e *Extension) OnOrderCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionOrderCreated, SeverityInfo, OutcomeSuccess,
		ResourceOrder, "", CategoryPayment, nil,
		"event", "order_created",
	)
}

// OnOrderCaptured implements plugin.OnOrderCaptured.
func (e *Extension) OnOrderCaptured(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionOrderCaptured, SeverityInfo, OutcomeSuccess,
		ResourceOrder, "", CategoryPayment, nil,
		"event", "order_captured",
	)
}

// ──────────────────────────────────────────────────
// Entitlement hooks
// ──────────────────────────────────────────────────

// OnEntitlementChecked implements plugin.OnEntitlementChecked.
func (e *Extension) OnEntitlementChecked(_ context.Context, _, _, _ string) error {
	// Only audit denied checks to reduce noise.
	return nil
}

// OnEntitlementDenied implements plugin.OnEntitlementDenied.
func (e *Extension) OnEntitlementDenied(ctx context.Context, buyerEmail, beatID, fileClass string) error {
	return e.record(ctx, ActionEntitlementDenied, SeverityWarning, OutcomeFailure,
		ResourceEntitlement, beatID, CategoryAccess, nil,
		"buyer", buyerEmail,
		"beat_id", beatID,
		"file_class", fileClass,
	)
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnUserRegistered implements plugin.OnUserRegistered.
func (e *Extension) OnUserRegistered(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionUserRegistered, SeverityInfo, OutcomeSuccess,
		ResourceAccount, "", CategoryAccount, nil,
		"event", "user_registered",
	)
}

// OnNotifyFailed implements plugin.OnNotifyFailed.
func (e *Extension) OnNotifyFailed(ctx context.Context, kind, recipient string, err error) error {
	return e.record(ctx, ActionNotifyFailed, SeverityError, OutcomeFailure,
		ResourceNotify, "", CategoryAccount, err,
		"kind", kind,
		"recipient", recipient,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
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
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
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
