// Package plugin provides an extensible plugin system for the marketplace
// engine. Plugins can hook into various lifecycle events to extend
// functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnBeatCreated is called when a new beat is added to the catalog.
type OnBeatCreated interface {
	Plugin
	OnBeatCreated(ctx context.Context, beat interface{}) error
}

// OnBeatUpdated is called when a beat is edited or its promotion flags
// change.
type OnBeatUpdated interface {
	Plugin
	OnBeatUpdated(ctx context.Context, oldBeat, newBeat interface{}) error
}

// OnBeatDeleted is called when a beat is removed from the catalog.
type OnBeatDeleted interface {
	Plugin
	OnBeatDeleted(ctx context.Context, beatID string) error
}

// OnPlaysFlushed is called when buffered play counts are flushed to the
// store.
type OnPlaysFlushed interface {
	Plugin
	OnPlaysFlushed(ctx context.Context, count int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Sale lifecycle hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded is called when a sale is appended to the ledger.
type OnSaleRecorded interface {
	Plugin
	OnSaleRecorded(ctx context.Context, sale interface{}) error
}

// OnExclusiveSold is called when an exclusive purchase removes a beat from
// the catalog.
type OnExclusiveSold interface {
	Plugin
	OnExclusiveSold(ctx context.Context, beatID, buyerEmail string) error
}

// OnPaymentFailed is called when a confirm or capture finds the provider
// status incomplete.
type OnPaymentFailed interface {
	Plugin
	OnPaymentFailed(ctx context.Context, providerRef string, err error) error
}

// OnOrderCreated is called when a pending provider order is persisted.
type OnOrderCreated interface {
	Plugin
	OnOrderCreated(ctx context.Context, order interface{}) error
}

// OnOrderCaptured is called when a pending order is captured and completed.
type OnOrderCaptured interface {
	Plugin
	OnOrderCaptured(ctx context.Context, order interface{}) error
}

// ──────────────────────────────────────────────────
// Entitlement hooks
// ──────────────────────────────────────────────────

// OnEntitlementChecked is called when an entitlement is resolved.
type OnEntitlementChecked interface {
	Plugin
	OnEntitlementChecked(ctx context.Context, buyerEmail, beatID string, tier string) error
}

// OnEntitlementDenied is called when a gated file request is refused.
type OnEntitlementDenied interface {
	Plugin
	OnEntitlementDenied(ctx context.Context, buyerEmail, beatID string, fileClass string) error
}

// ──────────────────────────────────────────────────
// Account and cart hooks
// ──────────────────────────────────────────────────

// OnUserRegistered is called when a new account is created.
type OnUserRegistered interface {
	Plugin
	OnUserRegistered(ctx context.Context, acct interface{}) error
}

// OnCartSaved is called when a cart is written, including rewrites from
// revalidation.
type OnCartSaved interface {
	Plugin
	OnCartSaved(ctx context.Context, c interface{}) error
}

// OnNotifyFailed is called when a best-effort notification fails to send.
type OnNotifyFailed interface {
	Plugin
	OnNotifyFailed(ctx context.Context, kind, recipient string, err error) error
}
