package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onBeatCreated        []OnBeatCreated
	onBeatUpdated        []OnBeatUpdated
	onBeatDeleted        []OnBeatDeleted
	onPlaysFlushed       []OnPlaysFlushed
	onSaleRecorded       []OnSaleRecorded
	onExclusiveSold      []OnExclusiveSold
	onPaymentFailed      []OnPaymentFailed
	onOrderCreated       []OnOrderCreated
	onOrderCaptured      []OnOrderCaptured
	onEntitlementChecked []OnEntitlementChecked
	onEntitlementDenied  []OnEntitlementDenied
	onUserRegistered     []OnUserRegistered
	onCartSaved          []OnCartSaved
	onNotifyFailed       []OnNotifyFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnBeatCreated); ok {
		r.onBeatCreated = append(r.onBeatCreated, v)
	}
	if v, ok := p.(OnBeatUpdated); ok {
		r.onBeatUpdated = append(r.onBeatUpdated, v)
	}
	if v, ok := p.(OnBeatDeleted); ok {
		r.onBeatDeleted = append(r.onBeatDeleted, v)
	}
	if v, ok := p.(OnPlaysFlushed); ok {
		r.onPlaysFlushed = append(r.onPlaysFlushed, v)
	}
	if v, ok := p.(OnSaleRecorded); ok {
		r.onSaleRecorded = append(r.onSaleRecorded, v)
	}
	if v, ok := p.(OnExclusiveSold); ok {
		r.onExclusiveSold = append(r.onExclusiveSold, v)
	}
	if v, ok := p.(OnPaymentFailed); ok {
		r.onPaymentFailed = append(r.onPaymentFailed, v)
	}
	if v, ok := p.(OnOrderCreated); ok {
		r.onOrderCreated = append(r.onOrderCreated, v)
	}
	if v, ok := p.(OnOrderCaptured); ok {
		r.onOrderCaptured = append(r.onOrderCaptured, v)
	}
	if v, ok := p.(OnEntitlementChecked); ok {
		r.onEntitlementChecked = append(r.onEntitlementChecked, v)
	}
	if v, ok := p.(OnEntitlementDenied); ok {
		r.onEntitlementDenied = append(r.onEntitlementDenied, v)
	}
	if v, ok := p.(OnUserRegistered); ok {
		r.onUserRegistered = append(r.onUserRegistered, v)
	}
	if v, ok := p.(OnCartSaved); ok {
		r.onCartSaved = append(r.onCartSaved, v)
	}
	if v, ok := p.(OnNotifyFailed); ok {
		r.onNotifyFailed = append(r.onNotifyFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnBeatCreated)(nil)).Elem(), "OnBeatCreated")
	checkInterface(reflect.TypeOf((*OnSaleRecorded)(nil)).Elem(), "OnSaleRecorded")
	checkInterface(reflect.TypeOf((*OnExclusiveSold)(nil)).Elem(), "OnExclusiveSold")
	checkInterface(reflect.TypeOf((*OnEntitlementChecked)(nil)).Elem(), "OnEntitlementChecked")
	checkInterface(reflect.TypeOf((*OnOrderCaptured)(nil)).Elem(), "OnOrderCaptured")
	checkInterface(reflect.TypeOf((*OnUserRegistered)(nil)).Elem(), "OnUserRegistered")

	return interfaces
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
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBeatCreated emits a beat created event.
func (r *Registry) EmitBeatCreated(ctx context.Context, beat interface{}) {
	r.mu.RLock()
	plugins := r.onBeatCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBeatCreated(ctx, beat)
		}); err != nil {
			r.logger.Warn("plugin OnBeatCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBeatUpdated emits a beat updated event.
func (r *Registry) EmitBeatUpdated(ctx context.Context, oldBeat, newBeat interface{}) {
	r.mu.RLock()
	plugins := r.onBeatUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBeatUpdated(ctx, oldBeat, newBeat)
		}); err != nil {
			r.logger.Warn("plugin OnBeatUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBeatDeleted emits a beat deleted event.
func (r *Registry) EmitBeatDeleted(ctx context.Context, beatID string) {
	r.mu.RLock()
	plugins := r.onBeatDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBeatDeleted(ctx, beatID)
		}); err != nil {
			r.logger.Warn("plugin OnBeatDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPlaysFlushed emits a plays flushed event.
func (r *Registry) EmitPlaysFlushed(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onPlaysFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlaysFlushed(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnPlaysFlushed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSaleRecorded emits a sale recorded event.
func (r *Registry) EmitSaleRecorded(ctx context.Context, sale interface{}) {
	r.mu.RLock()
	plugins := r.onSaleRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSaleRecorded(ctx, sale)
		}); err != nil {
			r.logger.Warn("plugin OnSaleRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitExclusiveSold emits an exclusive sold event.
func (r *Registry) EmitExclusiveSold(ctx context.Context, beatID, buyerEmail string) {
	r.mu.RLock()
	plugins := r.onExclusiveSold
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnExclusiveSold(ctx, beatID, buyerEmail)
		}); err != nil {
			r.logger.Warn("plugin OnExclusiveSold failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentFailed emits a payment failed event.
func (r *Registry) EmitPaymentFailed(ctx context.Context, providerRef string, failure error) {
	r.mu.RLock()
	plugins := r.onPaymentFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentFailed(ctx, providerRef, failure)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOrderCreated emits an order created event.
func (r *Registry) EmitOrderCreated(ctx context.Context, o interface{}) {
	r.mu.RLock()
	plugins := r.onOrderCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOrderCreated(ctx, o)
		}); err != nil {
			r.logger.Warn("plugin OnOrderCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOrderCaptured emits an order captured event.
func (r *Registry) EmitOrderCaptured(ctx context.Context, o interface{}) {
	r.mu.RLock()
	plugins := r.onOrderCaptured
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOrderCaptured(ctx, o)
		}); err != nil {
			r.logger.Warn("plugin OnOrderCaptured failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEntitlementChecked emits an entitlement checked event.
func (r *Registry) EmitEntitlementChecked(ctx context.Context, buyerEmail, beatID, tier string) {
	r.mu.RLock()
	plugins := r.onEntitlementChecked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEntitlementChecked(ctx, buyerEmail, beatID, tier)
		}); err != nil {
			r.logger.Warn("plugin OnEntitlementChecked failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEntitlementDenied emits an entitlement denied event.
func (r *Registry) EmitEntitlementDenied(ctx context.Context, buyerEmail, beatID, fileClass string) {
	r.mu.RLock()
	plugins := r.onEntitlementDenied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEntitlementDenied(ctx, buyerEmail, beatID, fileClass)
		}); err != nil {
			r.logger.Warn("plugin OnEntitlementDenied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUserRegistered emits a user registered event.
func (r *Registry) EmitUserRegistered(ctx context.Context, acct interface{}) {
	r.mu.RLock()
	plugins := r.onUserRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUserRegistered(ctx, acct)
		}); err != nil {
			r.logger.Warn("plugin OnUserRegistered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCartSaved emits a cart saved event.
func (r *Registry) EmitCartSaved(ctx context.Context, c interface{}) {
	r.mu.RLock()
	plugins := r.onCartSaved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCartSaved(ctx, c)
		}); err != nil {
			r.logger.Warn("plugin OnCartSaved failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitNotifyFailed emits a notify failed event.
func (r *Registry) EmitNotifyFailed(ctx context.Context, kind, recipient string, failure error) {
	r.mu.RLock()
	plugins := r.onNotifyFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnNotifyFailed(ctx, kind, recipient, failure)
		}); err != nil {
			r.logger.Warn("plugin OnNotifyFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the purchase pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
