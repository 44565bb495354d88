package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Beatstore store.
var Migrations = migrate.NewGroup("beatstore")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_beatstore_beats",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_beats (
    id                       TEXT PRIMARY KEY,
    name                     TEXT NOT NULL DEFAULT '',
    genre                    TEXT NOT NULL DEFAULT '',
    bpm                      INT NOT NULL DEFAULT 0,
    key                      TEXT NOT NULL DEFAULT '',
    mood                     TEXT NOT NULL DEFAULT '',
    price_basic_cents        BIGINT NOT NULL DEFAULT 0,
    price_basic_currency     TEXT NOT NULL DEFAULT 'usd',
    price_premium_cents      BIGINT NOT NULL DEFAULT 0,
    price_premium_currency   TEXT NOT NULL DEFAULT 'usd',
    price_exclusive_cents    BIGINT NOT NULL DEFAULT 0,
    price_exclusive_currency TEXT NOT NULL DEFAULT 'usd',
    preview_file             TEXT NOT NULL DEFAULT '',
    cover_file               TEXT NOT NULL DEFAULT '',
    lossless_file            TEXT NOT NULL DEFAULT '',
    stems_file               TEXT NOT NULL DEFAULT '',
    plays                    BIGINT NOT NULL DEFAULT 0,
    sales                    BIGINT NOT NULL DEFAULT 0,
    is_available             BOOLEAN NOT NULL DEFAULT TRUE,
    is_leaving_soon          BOOLEAN NOT NULL DEFAULT FALSE,
    is_hidden                BOOLEAN NOT NULL DEFAULT FALSE,
    discount_percent         INT NOT NULL DEFAULT 0,
    exclusive_buyer          TEXT NOT NULL DEFAULT '',
    exclusive_sold_at        TIMESTAMPTZ,
    metadata                 JSONB NOT NULL DEFAULT '{}',
    created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_beatstore_beats_visible ON beatstore_beats (is_hidden, is_available, created_at);
CREATE INDEX IF NOT EXISTS idx_beatstore_beats_genre ON beatstore_beats (genre);
CREATE INDEX IF NOT EXISTS idx_beatstore_beats_plays ON beatstore_beats (plays);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_beats`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_genres",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_genres (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_genres_name ON beatstore_genres (LOWER(name));
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_genres`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_sales",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_sales (
    id              TEXT PRIMARY KEY,
    provider_ref    TEXT NOT NULL DEFAULT '',
    provider        TEXT NOT NULL DEFAULT '',
    beat_id         TEXT NOT NULL DEFAULT '',
    beat_name       TEXT NOT NULL DEFAULT '',
    tier            TEXT NOT NULL DEFAULT '',
    buyer_email     TEXT NOT NULL DEFAULT '',
    buyer_name      TEXT NOT NULL DEFAULT '',
    buyer_phone     TEXT NOT NULL DEFAULT '',
    account_type    TEXT NOT NULL DEFAULT '',
    promo_opt_in    BOOLEAN NOT NULL DEFAULT FALSE,
    amount_cents    BIGINT NOT NULL DEFAULT 0,
    amount_currency TEXT NOT NULL DEFAULT 'usd',
    status          TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_beatstore_sales_buyer_beat ON beatstore_sales (buyer_email, beat_id);
CREATE INDEX IF NOT EXISTS idx_beatstore_sales_provider_ref ON beatstore_sales (provider_ref, tier);
CREATE INDEX IF NOT EXISTS idx_beatstore_sales_created ON beatstore_sales (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_sales`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_tier_cache",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_tier_cache (
    cache_key   TEXT PRIMARY KEY,
    buyer_email TEXT NOT NULL DEFAULT '',
    beat_id     TEXT NOT NULL DEFAULT '',
    tier        TEXT NOT NULL DEFAULT '',
    expires_at  TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_beatstore_tier_cache_expires ON beatstore_tier_cache (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_tier_cache`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_carts",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_carts (
    id          TEXT PRIMARY KEY,
    buyer_email TEXT NOT NULL DEFAULT '',
    items       JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_carts_buyer ON beatstore_carts (buyer_email);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_carts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_orders",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_orders (
    id             TEXT PRIMARY KEY,
    provider_ref   TEXT NOT NULL DEFAULT '',
    provider       TEXT NOT NULL DEFAULT '',
    items          JSONB NOT NULL DEFAULT '[]',
    total_cents    BIGINT NOT NULL DEFAULT 0,
    total_currency TEXT NOT NULL DEFAULT 'usd',
    buyer_email    TEXT NOT NULL DEFAULT '',
    buyer_name     TEXT NOT NULL DEFAULT '',
    buyer_phone    TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'created',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_orders_provider_ref ON beatstore_orders (provider_ref);
CREATE INDEX IF NOT EXISTS idx_beatstore_orders_buyer ON beatstore_orders (buyer_email, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_orders`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_accounts",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_accounts (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    username      TEXT NOT NULL DEFAULT '',
    name          TEXT NOT NULL DEFAULT '',
    picture       TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    country_code  TEXT NOT NULL DEFAULT '',
    auth_provider TEXT NOT NULL DEFAULT 'email',
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
    last_login    TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_accounts_email ON beatstore_accounts (email);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_verifications",
			Version: "20240101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_verifications (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL DEFAULT '',
    code       TEXT NOT NULL DEFAULT '',
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_verifications_email ON beatstore_verifications (email);
CREATE INDEX IF NOT EXISTS idx_beatstore_verifications_expires ON beatstore_verifications (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_verifications`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_resets",
			Version: "20240101000009",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_resets (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL DEFAULT '',
    token      TEXT NOT NULL DEFAULT '',
    expires_at TIMESTAMPTZ NOT NULL,
    used       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_resets_token ON beatstore_resets (token);
CREATE INDEX IF NOT EXISTS idx_beatstore_resets_expires ON beatstore_resets (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_resets`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_beatstore_sessions",
			Version: "20240101000010",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS beatstore_sessions (
    id         TEXT PRIMARY KEY,
    token      TEXT NOT NULL DEFAULT '',
    account_id TEXT NOT NULL DEFAULT '',
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beatstore_sessions_token ON beatstore_sessions (token);
CREATE INDEX IF NOT EXISTS idx_beatstore_sessions_account ON beatstore_sessions (account_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS beatstore_sessions`)
				return err
			},
		},
	)
}
