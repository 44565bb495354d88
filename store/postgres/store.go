// Package postgres implements store.Store on PostgreSQL via the Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/order"
	"github.com/stereohaus/beatstore/sale"
	beatstorestore "github.com/stereohaus/beatstore/store"
)

// compile-time interface check
var _ beatstorestore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("beatstore/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("beatstore/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Catalog ====================

func (s *Store) CreateBeat(ctx context.Context, b *catalog.Beat) error {
	m := toBeatModel(b)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetBeat(ctx context.Context, beatID id.BeatID) (*catalog.Beat, error) {
	m := new(beatModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", beatID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrBeatNotFound
		}
		return nil, err
	}
	return fromBeatModel(m)
}

// listCond is one WHERE clause with its positional args, shared between the
// count and the page query so both always see the same filter.
type listCond struct {
	expr string
	args []any
}

func listConds(opts catalog.ListOpts) []listCond {
	var conds []listCond
	argIdx := 0
	if !opts.IncludeHidden {
		conds = append(conds,
			listCond{expr: "is_hidden = FALSE"},
			listCond{expr: "is_available = TRUE"})
	}
	if opts.Genre != "" {
		argIdx++
		conds = append(conds, listCond{
			expr: fmt.Sprintf("genre = $%d", argIdx),
			args: []any{opts.Genre},
		})
	}
	if opts.Search != "" {
		argIdx++
		conds = append(conds, listCond{
			expr: fmt.Sprintf("(name ILIKE $%d OR genre ILIKE $%d OR mood ILIKE $%d)", argIdx, argIdx, argIdx),
			args: []any{"%" + opts.Search + "%"},
		})
	}
	return conds
}

func (s *Store) ListBeats(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Beat, int64, error) {
	conds := listConds(opts)

	countSQL := "SELECT COUNT(*) FROM beatstore_beats"
	var exprs []string
	var args []any
	for _, c := range conds {
		exprs = append(exprs, c.expr)
		args = append(args, c.args...)
	}
	if len(exprs) > 0 {
		countSQL += " WHERE " + strings.Join(exprs, " AND ")
	}

	var total int64
	if err := s.pg.NewRaw(countSQL, args...).Scan(ctx, &total); err != nil {
		return nil, 0, err
	}

	var models []beatModel
	q := s.pg.NewSelect(&models)
	for _, c := range conds {
		q = q.Where(c.expr, c.args...)
	}
	q = q.OrderExpr(orderExpr(opts.Sort))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, 0, err
	}

	result := make([]*catalog.Beat, len(models))
	for i := range models {
		b, err := fromBeatModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		result[i] = b
	}
	return result, total, nil
}

func orderExpr(sort catalog.Sort) string {
	switch sort {
	case catalog.SortPopular:
		return "plays DESC"
	case catalog.SortPriceLow:
		return "price_basic_cents ASC"
	case catalog.SortPriceHigh:
		return "price_basic_cents DESC"
	default:
		return "created_at DESC"
	}
}

func (s *Store) UpdateBeat(ctx context.Context, b *catalog.Beat) error {
	m := toBeatModel(b)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) DeleteBeat(ctx context.Context, beatID id.BeatID) error {
	res, err := s.pg.NewDelete((*beatModel)(nil)).
		Where("id = $1", beatID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) IncrementPlays(ctx context.Context, beatID id.BeatID, delta int64) error {
	return s.incrementCounter(ctx, beatID, "plays", delta)
}

func (s *Store) IncrementSales(ctx context.Context, beatID id.BeatID, delta int64) error {
	return s.incrementCounter(ctx, beatID, "sales", delta)
}

// incrementCounter adds in-place so concurrent flushes never lose counts
// to read-modify-write races.
func (s *Store) incrementCounter(ctx context.Context, beatID id.BeatID, field string, delta int64) error {
	res, err := s.pg.NewUpdate((*beatModel)(nil)).
		Set(fmt.Sprintf("%s = %s + $1", field, field), delta).
		Set("updated_at = $2", now()).
		Where("id = $3", beatID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) SetDiscount(ctx context.Context, beatID id.BeatID, percent int) error {
	if percent < 0 || percent > 100 {
		return beatstore.ValidationError{Field: "discount_percent", Message: "must be between 0 and 100"}
	}
	return s.setBeatField(ctx, beatID, "discount_percent", percent)
}

func (s *Store) SetLeavingSoon(ctx context.Context, beatID id.BeatID, leaving bool) error {
	return s.setBeatField(ctx, beatID, "is_leaving_soon", leaving)
}

func (s *Store) SetHidden(ctx context.Context, beatID id.BeatID, hidden bool) error {
	return s.setBeatField(ctx, beatID, "is_hidden", hidden)
}

func (s *Store) setBeatField(ctx context.Context, beatID id.BeatID, field string, value any) error {
	res, err := s.pg.NewUpdate((*beatModel)(nil)).
		Set(fmt.Sprintf("%s = $1", field), value).
		Set("updated_at = $2", now()).
		Where("id = $3", beatID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) MarkSoldExclusive(ctx context.Context, beatID id.BeatID, buyerEmail string, soldAt time.Time) error {
	// Only a beat with no exclusive buyer matches, so the first capture wins
	// and every later one is rejected.
	res, err := s.pg.NewUpdate((*beatModel)(nil)).
		Set("exclusive_buyer = $1", account.NormalizeEmail(buyerEmail)).
		Set("exclusive_sold_at = $2", soldAt).
		Set("is_available = FALSE").
		Set("updated_at = $3", now()).
		Where("id = $4", beatID.String()).
		Where("exclusive_buyer = ''").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetBeat(ctx, beatID); getErr != nil {
			return getErr
		}
		return beatstore.ErrExclusiveSold
	}
	return nil
}

// ==================== Genres ====================

func (s *Store) ListGenres(ctx context.Context) ([]*catalog.Genre, error) {
	var models []genreModel
	err := s.pg.NewSelect(&models).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*catalog.Genre, len(models))
	for i := range models {
		g, err := fromGenreModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = g
	}
	return result, nil
}

func (s *Store) AddGenre(ctx context.Context, g *catalog.Genre) error {
	m := toGenreModel(g)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return beatstore.ErrGenreExists
		}
		return err
	}
	return nil
}

func (s *Store) DeleteGenre(ctx context.Context, genreID id.GenreID) error {
	res, err := s.pg.NewDelete((*genreModel)(nil)).
		Where("id = $1", genreID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrGenreNotFound
	}
	return nil
}

// ==================== Sale ledger ====================

func (s *Store) RecordSale(ctx context.Context, sl *sale.Sale) error {
	m := toSaleModel(sl)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSale(ctx context.Context, saleID id.SaleID) (*sale.Sale, error) {
	m := new(saleModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", saleID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrSaleNotFound
		}
		return nil, err
	}
	return fromSaleModel(m)
}

func (s *Store) GetSaleByProviderRef(ctx context.Context, providerRef, tier string) (*sale.Sale, error) {
	m := new(saleModel)
	err := s.pg.NewSelect(m).
		Where("provider_ref = $1", providerRef).
		Where("tier = $2", tier).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrSaleNotFound
		}
		return nil, err
	}
	return fromSaleModel(m)
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]*sale.Sale, error) {
	var models []saleModel
	q := s.pg.NewSelect(&models).
		OrderExpr("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return salesFromModels(models)
}

func (s *Store) ListSalesForBuyer(ctx context.Context, buyerEmail string) ([]*sale.Sale, error) {
	var models []saleModel
	err := s.pg.NewSelect(&models).
		Where("buyer_email = $1", account.NormalizeEmail(buyerEmail)).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return salesFromModels(models)
}

func (s *Store) ListSalesForBuyerBeat(ctx context.Context, buyerEmail string, beatID id.BeatID) ([]*sale.Sale, error) {
	var models []saleModel
	err := s.pg.NewSelect(&models).
		Where("buyer_email = $1", account.NormalizeEmail(buyerEmail)).
		Where("beat_id = $2", beatID.String()).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return salesFromModels(models)
}

func salesFromModels(models []saleModel) ([]*sale.Sale, error) {
	result := make([]*sale.Sale, len(models))
	for i := range models {
		sl, err := fromSaleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sl
	}
	return result, nil
}

// ==================== Entitlement cache ====================

func (s *Store) GetCachedTier(ctx context.Context, buyerEmail string, beatID id.BeatID) (license.Tier, bool, error) {
	m := new(tierCacheModel)
	err := s.pg.NewSelect(m).
		Where("cache_key = $1", tierCacheKey(buyerEmail, beatID)).
		Where("expires_at > $2", now()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return license.Tier(m.Tier), true, nil
}

func (s *Store) SetCachedTier(ctx context.Context, buyerEmail string, beatID id.BeatID, tier license.Tier, ttl time.Duration) error {
	m := &tierCacheModel{
		CacheKey:   tierCacheKey(buyerEmail, beatID),
		BuyerEmail: account.NormalizeEmail(buyerEmail),
		BeatID:     beatID.String(),
		Tier:       string(tier),
		ExpiresAt:  now().Add(ttl),
		CreatedAt:  now(),
	}
	_, err := s.pg.NewInsert(m).
		OnConflict("(cache_key) DO UPDATE").
		Set("tier = EXCLUDED.tier").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

func (s *Store) InvalidateTier(ctx context.Context, buyerEmail string, beatID id.BeatID) error {
	_, err := s.pg.NewDelete((*tierCacheModel)(nil)).
		Where("cache_key = $1", tierCacheKey(buyerEmail, beatID)).
		Exec(ctx)
	return err
}

// ==================== Carts ====================

func (s *Store) SaveCart(ctx context.Context, c *cart.Cart) error {
	m := toCartModel(c)
	m.UpdatedAt = now()
	_, err := s.pg.NewInsert(m).
		OnConflict("(buyer_email) DO UPDATE").
		Set("items = EXCLUDED.items").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetCart(ctx context.Context, buyerEmail string) (*cart.Cart, error) {
	m := new(cartModel)
	err := s.pg.NewSelect(m).
		Where("buyer_email = $1", account.NormalizeEmail(buyerEmail)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrNotFound
		}
		return nil, err
	}
	return fromCartModel(m)
}

func (s *Store) ClearCart(ctx context.Context, buyerEmail string) error {
	_, err := s.pg.NewDelete((*cartModel)(nil)).
		Where("buyer_email = $1", account.NormalizeEmail(buyerEmail)).
		Exec(ctx)
	return err
}

// ==================== Pending orders ====================

func (s *Store) CreatePendingOrder(ctx context.Context, o *order.PendingOrder) error {
	m := toPendingOrderModel(o)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPendingOrder(ctx context.Context, providerRef string) (*order.PendingOrder, error) {
	m := new(pendingOrderModel)
	err := s.pg.NewSelect(m).
		Where("provider_ref = $1", providerRef).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrOrderNotFound
		}
		return nil, err
	}
	return fromPendingOrderModel(m)
}

func (s *Store) CompletePendingOrder(ctx context.Context, providerRef string) error {
	res, err := s.pg.NewUpdate((*pendingOrderModel)(nil)).
		Set("status = $1", string(order.StatusCompleted)).
		Set("updated_at = $2", now()).
		Where("provider_ref = $3", providerRef).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrOrderNotFound
	}
	return nil
}

// ==================== Accounts ====================

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return beatstore.ErrAccountExists
		}
		return err
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	m := new(accountModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", accountID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	m := new(accountModel)
	err := s.pg.NewSelect(m).
		Where("email = $1", account.NormalizeEmail(email)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrAccountNotFound
	}
	return nil
}

// ==================== Verification / reset / session ====================

func (s *Store) CreateVerification(ctx context.Context, v *account.Verification) error {
	m := toVerificationModel(v)

	// One live code per email: a fresh code replaces the previous one.
	_, err := s.pg.NewInsert(m).
		OnConflict("(email) DO UPDATE").
		Set("id = EXCLUDED.id").
		Set("code = EXCLUDED.code").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetVerification(ctx context.Context, email string) (*account.Verification, error) {
	m := new(verificationModel)
	err := s.pg.NewSelect(m).
		Where("email = $1", account.NormalizeEmail(email)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrNotFound
		}
		return nil, err
	}
	return fromVerificationModel(m)
}

func (s *Store) DeleteVerification(ctx context.Context, email string) error {
	_, err := s.pg.NewDelete((*verificationModel)(nil)).
		Where("email = $1", account.NormalizeEmail(email)).
		Exec(ctx)
	return err
}

func (s *Store) CreateResetToken(ctx context.Context, r *account.ResetToken) error {
	m := toResetTokenModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetResetToken(ctx context.Context, token string) (*account.ResetToken, error) {
	m := new(resetTokenModel)
	err := s.pg.NewSelect(m).
		Where("token = $1", token).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrTokenInvalid
		}
		return nil, err
	}
	return fromResetTokenModel(m)
}

func (s *Store) MarkResetTokenUsed(ctx context.Context, token string) error {
	res, err := s.pg.NewUpdate((*resetTokenModel)(nil)).
		Set("used = TRUE").
		Set("updated_at = $1", now()).
		Where("token = $2", token).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return beatstore.ErrTokenInvalid
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *account.Session) error {
	m := toSessionModel(sess)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSession(ctx context.Context, token string) (*account.Session, error) {
	m := new(sessionModel)
	err := s.pg.NewSelect(m).
		Where("token = $1", token).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, beatstore.ErrUnauthorized
		}
		return nil, err
	}
	return fromSessionModel(m)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pg.NewDelete((*sessionModel)(nil)).
		Where("token = $1", token).
		Exec(ctx)
	return err
}

func (s *Store) DeleteSessionsForAccount(ctx context.Context, accountID id.AccountID) error {
	_, err := s.pg.NewDelete((*sessionModel)(nil)).
		Where("account_id = $1", accountID.String()).
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation matches the Postgres 23505 error without binding to a
// specific driver error type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}
