// Package observability provides a metrics extension for Beatstore that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/stereohaus/beatstore/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnBeatCreated        = (*MetricsExtension)(nil)
	_ plugin.OnBeatUpdated        = (*MetricsExtension)(nil)
	_ plugin.OnBeatDeleted        = (*MetricsExtension)(nil)
	_ plugin.OnPlaysFlushed       = (*MetricsExtension)(nil)
	_ plugin.OnSaleRecorded       = (*MetricsExtension)(nil)
	_ plugin.OnExclusiveSold      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentFailed      = (*MetricsExtension)(nil)
	_ plugin.OnOrderCreated       = (*MetricsExtension)(nil)
	_ plugin.OnOrderCaptured      = (*MetricsExtension)(nil)
	_ plugin.OnEntitlementChecked = (*MetricsExtension)(nil)
	_ plugin.OnEntitlementDenied  = (*MetricsExtension)(nil)
	_ plugin.OnUserRegistered     = (*MetricsExtension)(nil)
	_ plugin.OnCartSaved          = (*MetricsExtension)(nil)
	_ plugin.OnNotifyFailed       = (*MetricsExtension)(nil)
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

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Beatstore plugin to automatically track marketplace metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Catalog metrics
	BeatCreated      Counter
	BeatUpdated      Counter
	BeatDeleted      Counter
	PlaysFlushed     Counter
	PlayFlushSize    Histogram
	PlayFlushLatency Histogram

	// Sale metrics
	SaleRecorded  Counter
	SaleAmount    Histogram
	ExclusiveSold Counter
	PaymentFailed Counter
	OrderCreated  Counter
	OrderCaptured Counter

	// Entitlement metrics
	EntitlementChecks Counter
	EntitlementDenied Counter

	// Account and cart metrics
	UserRegistered Counter
	CartSaved      Counter
	NotifyFailed   Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Catalog metrics
		BeatCreated:      factory.Counter("beatstore.beat.created"),
		BeatUpdated:      factory.Counter("beatstore.beat.updated"),
		BeatDeleted:      factory.Counter("beatstore.beat.deleted"),
		PlaysFlushed:     factory.Counter("beatstore.plays.flushed"),
		PlayFlushSize:    factory.Histogram("beatstore.plays.flush.size"),
		PlayFlushLatency: factory.Histogram("beatstore.plays.flush.latency_ms"),

		// Sale metrics
		SaleRecorded:  factory.Counter("beatstore.sale.recorded"),
		SaleAmount:    factory.Histogram("beatstore.sale.amount_cents"),
		ExclusiveSold: factory.Counter("beatstore.sale.exclusive"),
		PaymentFailed: factory.Counter("beatstore.payment.failed"),
		OrderCreated:  factory.Counter("beatstore.order.created"),
		OrderCaptured: factory.Counter("beatstore.order.captured"),

		// Entitlement metrics
		EntitlementChecks: factory.Counter("beatstore.entitlement.checks"),
		EntitlementDenied: factory.Counter("beatstore.entitlement.denied"),

		// Account and cart metrics
		UserRegistered: factory.Counter("beatstore.user.registered"),
		CartSaved:      factory.Counter("beatstore.cart.saved"),
		NotifyFailed:   factory.Counter("beatstore.notify.failed"),

		// Error metrics
		StoreErrors:  factory.Counter("beatstore.store.errors"),
		PluginErrors: factory.Counter("beatstore.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnBeatCreated implements plugin.OnBeatCreated.
func (m *MetricsExtension) OnBeatCreated(_ context.Context, _ interface{}) error {
	m.BeatCreated.Inc()
	return nil
}

// OnBeatUpdated implements plugin.OnBeatUpdated.
func (m *MetricsExtension) OnBeatUpdated(_ context.Context, _, _ interface{}) error {
	m.BeatUpdated.Inc()
	return nil
}

// OnBeatDeleted implements plugin.OnBeatDeleted.
func (m *MetricsExtension) OnBeatDeleted(_ context.Context, _ string) error {
	m.BeatDeleted.Inc()
	return nil
}

// OnPlaysFlushed implements plugin.OnPlaysFlushed.
func (m *MetricsExtension) OnPlaysFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.PlaysFlushed.Add(float64(count))
	m.PlayFlushSize.Observe(float64(count))
	m.PlayFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Sale lifecycle hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded implements plugin.OnSaleRecorded.
func (m *MetricsExtension) OnSaleRecorded(_ context.Context, _ interface{}) error {
	m.SaleRecorded.Inc()
	return nil
}

// OnExclusiveSold implements plugin.OnExclusiveSold.
func (m *MetricsExtension) OnExclusiveSold(_ context.Context, _, _ string) error {
	m.ExclusiveSold.Inc()
	return nil
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (m *MetricsExtension) OnPaymentFailed(_ context.Context, _ string, _ error) error {
	m.PaymentFailed.Inc()
	return nil
}

// OnOrderCreated implements plugin.OnOrderCreated.
func (m *MetricsExtension) OnOrderCreated(_ context.Context, _ interface{}) error {
	m.OrderCreated.Inc()
	return nil
}

// OnOrderCaptured implements plugin.OnOrderCaptured.
func (m *MetricsExtension) OnOrderCaptured(_ context.Context, _ interface{}) error {
	m.OrderCaptured.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Entitlement hooks
// ──────────────────────────────────────────────────

// OnEntitlementChecked implements plugin.OnEntitlementChecked.
func (m *MetricsExtension) OnEntitlementChecked(_ context.Context, _, _, _ string) error {
	m.EntitlementChecks.Inc()
	return nil
}

// OnEntitlementDenied implements plugin.OnEntitlementDenied.
func (m *MetricsExtension) OnEntitlementDenied(_ context.Context, _, _, _ string) error {
	m.EntitlementDenied.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Account and cart hooks
// ──────────────────────────────────────────────────

// OnUserRegistered implements plugin.OnUserRegistered.
func (m *MetricsExtension) OnUserRegistered(_ context.Context, _ interface{}) error {
	m.UserRegistered.Inc()
	return nil
}

// OnCartSaved implements plugin.OnCartSaved.
func (m *MetricsExtension) OnCartSaved(_ context.Context, _ interface{}) error {
	m.CartSaved.Inc()
	return nil
}

// OnNotifyFailed implements plugin.OnNotifyFailed.
func (m *MetricsExtension) OnNotifyFailed(_ context.Context, _, _ string, _ error) error {
	m.NotifyFailed.Inc()
	return nil
}
