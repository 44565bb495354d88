package beatstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stereohaus/beatstore/auth"
	"github.com/stereohaus/beatstore/blob"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/notify"
	"github.com/stereohaus/beatstore/plugin"
	"github.com/stereohaus/beatstore/provider"
	"github.com/stereohaus/beatstore/store"
)

// Engine is the main marketplace engine. It owns the catalog, the sale
// ledger, entitlement resolution and the file gate, and talks to payment
// providers through injected adapters. All collaborators are constructed
// explicitly and passed in; nothing is held at package scope.
type Engine struct {
	store    store.Store
	blobs    blob.Store
	intents  provider.Intents
	orders   provider.Orders
	notifier notify.Notifier
	tokens   *auth.Tokens
	broker   auth.SessionBroker
	plugins  *plugin.Registry
	logger   *slog.Logger

	// Background workers
	playBuffer chan id.BeatID
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	// Configuration
	playBatchSize     int
	playFlushInterval time.Duration
	tierCacheTTL      time.Duration
	adminSeed         *AdminSeed
	sessionTTL        time.Duration
	resetTTL          time.Duration
	verifyTTL         time.Duration
	resetBaseURL      string
}

// AdminSeed is the privileged account written into the account store at
// Start. It lives in the same store as ordinary accounts; no lookup path
// special-cases it.
type AdminSeed struct {
	Email    string
	Password string
	Username string
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:             s,
		notifier:          notify.Noop{},
		plugins:           plugin.NewRegistry(),
		logger:            slog.Default(),
		playBuffer:        make(chan id.BeatID, 10000),
		stopChan:          make(chan struct{}),
		playBatchSize:     100,
		playFlushInterval: 5 * time.Second,
		tierCacheTTL:      30 * time.Second,
		sessionTTL:        7 * 24 * time.Hour,
		resetTTL:          30 * time.Minute,
		verifyTTL:         10 * time.Minute,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithBlobs sets the blob store backing the file gate.
func WithBlobs(b blob.Store) Option {
	return func(e *Engine) {
		e.blobs = b
	}
}

// WithIntents sets the card payment provider.
func WithIntents(p provider.Intents) Option {
	return func(e *Engine) {
		e.intents = p
	}
}

// WithOrders sets the order-based payment provider.
func WithOrders(p provider.Orders) Option {
	return func(e *Engine) {
		e.orders = p
	}
}

// WithNotifier sets the best-effort notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithTokens sets the access token issuer.
func WithTokens(t *auth.Tokens) Option {
	return func(e *Engine) {
		e.tokens = t
	}
}

// WithSessionBroker sets the external sign-in session broker.
func WithSessionBroker(b auth.SessionBroker) Option {
	return func(e *Engine) {
		e.broker = b
	}
}

// WithPlayFlushConfig configures play-count buffering.
func WithPlayFlushConfig(batchSize int, flushInterval time.Duration) Option {
	return func(e *Engine) {
		e.playBatchSize = batchSize
		e.playFlushInterval = flushInterval
	}
}

// WithTierCacheTTL sets the materialized entitlement cache TTL.
func WithTierCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.tierCacheTTL = ttl
	}
}

// WithAdminSeed sets the privileged account seeded at Start.
func WithAdminSeed(seed AdminSeed) Option {
	return func(e *Engine) {
		e.adminSeed = &seed
	}
}

// WithResetBaseURL sets the public URL password reset links point at.
func WithResetBaseURL(u string) Option {
	return func(e *Engine) {
		e.resetBaseURL = u
	}
}

// Start runs migrations, seeds the admin account, initializes plugins and
// begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	if e.adminSeed != nil {
		if err := e.SeedAdmin(ctx, *e.adminSeed); err != nil {
			return err
		}
	}

	e.plugins.EmitInit(ctx, e)

	e.wg.Add(1)
	go e.playFlushWorker(ctx)

	e.logger.Info("engine started",
		"play_batch_size", e.playBatchSize,
		"play_flush_interval", e.playFlushInterval,
		"tier_cache_ttl", e.tierCacheTTL,
	)

	return nil
}

// Stop shuts down the Engine. Calling Stop more than once is safe; later
// calls return nil without re-running shutdown.
func (e *Engine) Stop() error {
	var err error
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.wg.Wait()

		ctx := context.Background()
		e.plugins.EmitShutdown(ctx)

		err = e.store.Close()
	})
	return err
}

// ──────────────────────────────────────────────────
// Play counting
// ──────────────────────────────────────────────────

// RecordPlay buffers a play-count increment for a beat (non-blocking).
// The beat must exist; increments are flushed in batches by a background
// worker.
func (e *Engine) RecordPlay(ctx context.Context, beatID id.BeatID) error {
	if _, err := e.store.GetBeat(ctx, beatID); err != nil {
		return err
	}

	select {
	case e.playBuffer <- beatID:
		return nil
	default:
		return ErrPlayBufferFull
	}
}

// playFlushWorker flushes buffered play counts to the store.
func (e *Engine) playFlushWorker(ctx context.Context) {
	defer e.wg.Done()

	batch := make([]id.BeatID, 0, e.playBatchSize)
	ticker := time.NewTicker(e.playFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			// Drain anything still queued, then flush once.
			for {
				select {
				case beatID := <-e.playBuffer:
					batch = append(batch, beatID)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				e.flushPlayBatch(ctx, batch)
			}
			return

		case beatID := <-e.playBuffer:
			batch = append(batch, beatID)
			if len(batch) >= e.playBatchSize {
				e.flushPlayBatch(ctx, batch)
				batch = make([]id.BeatID, 0, e.playBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				e.flushPlayBatch(ctx, batch)
				batch = make([]id.BeatID, 0, e.playBatchSize)
			}
		}
	}
}

func (e *Engine) flushPlayBatch(ctx context.Context, batch []id.BeatID) {
	start := time.Now()

	// Coalesce increments per beat before hitting the store.
	counts := make(map[string]int64)
	ids := make(map[string]id.BeatID)
	for _, beatID := range batch {
		counts[beatID.String()]++
		ids[beatID.String()] = beatID
	}

	for key, delta := range counts {
		if err := e.store.IncrementPlays(ctx, ids[key], delta); err != nil {
			e.logger.Error("failed to flush play counts",
				"beat_id", key,
				"delta", delta,
				"error", err,
			)
		}
	}

	elapsed := time.Since(start)
	e.plugins.EmitPlaysFlushed(ctx, len(batch), elapsed)

	e.logger.Debug("flushed play batch",
		"batch_size", len(batch),
		"beats", len(counts),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
