// Package mongo implements store.Store on MongoDB via the Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

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

// Collection name constants.
const (
	colBeats         = "beatstore_beats"
	colGenres        = "beatstore_genres"
	colSales         = "beatstore_sales"
	colTierCache     = "beatstore_tier_cache"
	colCarts         = "beatstore_carts"
	colOrders        = "beatstore_orders"
	colAccounts      = "beatstore_accounts"
	colVerifications = "beatstore_verifications"
	colResets        = "beatstore_resets"
	colSessions      = "beatstore_sessions"
)

// compile-time interface check
var _ beatstorestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all marketplace collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("beatstore/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: create beat: %w", err)
	}
	return nil
}

func (s *Store) GetBeat(ctx context.Context, beatID id.BeatID) (*catalog.Beat, error) {
	var m beatModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": beatID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrBeatNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get beat: %w", err)
	}
	return fromBeatModel(&m)
}

func (s *Store) ListBeats(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Beat, int64, error) {
	filter := listFilter(opts)

	total, err := s.mdb.Collection(colBeats).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("beatstore/mongo: count beats: %w", err)
	}

	var models []beatModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(sortSpec(opts.Sort))

	if opts.Skip > 0 {
		q = q.Skip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, 0, fmt.Errorf("beatstore/mongo: list beats: %w", err)
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

func listFilter(opts catalog.ListOpts) bson.M {
	filter := bson.M{}
	if !opts.IncludeHidden {
		filter["is_hidden"] = false
		filter["is_available"] = true
	}
	if opts.Genre != "" {
		filter["genre"] = opts.Genre
	}
	if opts.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(opts.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"genre": re},
			bson.M{"mood": re},
		}
	}
	return filter
}

func sortSpec(sort catalog.Sort) bson.D {
	switch sort {
	case catalog.SortPopular:
		return bson.D{{Key: "plays", Value: -1}}
	case catalog.SortPriceLow:
		return bson.D{{Key: "price_basic_cents", Value: 1}}
	case catalog.SortPriceHigh:
		return bson.D{{Key: "price_basic_cents", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (s *Store) UpdateBeat(ctx context.Context, b *catalog.Beat) error {
	m := toBeatModel(b)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: update beat: %w", err)
	}
	if res.MatchedCount() == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) DeleteBeat(ctx context.Context, beatID id.BeatID) error {
	res, err := s.mdb.NewDelete((*beatModel)(nil)).
		Filter(bson.M{"_id": beatID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: delete beat: %w", err)
	}
	if res.DeletedCount() == 0 {
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

// incrementCounter applies an atomic $inc so concurrent flushes never lose
// counts to read-modify-write races.
func (s *Store) incrementCounter(ctx context.Context, beatID id.BeatID, field string, delta int64) error {
	res, err := s.mdb.Collection(colBeats).UpdateOne(ctx,
		bson.M{"_id": beatID.String()},
		bson.M{
			"$inc": bson.M{field: delta},
			"$set": bson.M{"updated_at": now()},
		})
	if err != nil {
		return fmt.Errorf("beatstore/mongo: increment %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
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
	res, err := s.mdb.NewUpdate((*beatModel)(nil)).
		Filter(bson.M{"_id": beatID.String()}).
		Set(field, value).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: set %s: %w", field, err)
	}
	if res.MatchedCount() == 0 {
		return beatstore.ErrBeatNotFound
	}
	return nil
}

func (s *Store) MarkSoldExclusive(ctx context.Context, beatID id.BeatID, buyerEmail string, soldAt time.Time) error {
	// The filter only matches a beat not yet sold exclusively, so a
	// concurrent second buyer can never overwrite the first.
	res, err := s.mdb.Collection(colBeats).UpdateOne(ctx,
		bson.M{
			"_id": beatID.String(),
			"$or": bson.A{
				bson.M{"exclusive_buyer": bson.M{"$exists": false}},
				bson.M{"exclusive_buyer": ""},
			},
		},
		bson.M{"$set": bson.M{
			"exclusive_buyer":   account.NormalizeEmail(buyerEmail),
			"exclusive_sold_at": soldAt,
			"is_available":      false,
			"updated_at":        now(),
		}})
	if err != nil {
		return fmt.Errorf("beatstore/mongo: mark sold exclusive: %w", err)
	}
	if res.MatchedCount == 0 {
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
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("beatstore/mongo: list genres: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return beatstore.ErrGenreExists
		}
		return fmt.Errorf("beatstore/mongo: add genre: %w", err)
	}
	return nil
}

func (s *Store) DeleteGenre(ctx context.Context, genreID id.GenreID) error {
	res, err := s.mdb.NewDelete((*genreModel)(nil)).
		Filter(bson.M{"_id": genreID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: delete genre: %w", err)
	}
	if res.DeletedCount() == 0 {
		return beatstore.ErrGenreNotFound
	}
	return nil
}

// ==================== Sale ledger ====================

func (s *Store) RecordSale(ctx context.Context, sl *sale.Sale) error {
	m := toSaleModel(sl)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: record sale: %w", err)
	}
	return nil
}

func (s *Store) GetSale(ctx context.Context, saleID id.SaleID) (*sale.Sale, error) {
	var m saleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": saleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrSaleNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get sale: %w", err)
	}
	return fromSaleModel(&m)
}

func (s *Store) GetSaleByProviderRef(ctx context.Context, providerRef, tier string) (*sale.Sale, error) {
	var m saleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"provider_ref": providerRef, "tier": tier}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrSaleNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get sale by provider ref: %w", err)
	}
	return fromSaleModel(&m)
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]*sale.Sale, error) {
	var models []saleModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		q = q.Limit(int64(limit))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("beatstore/mongo: list sales: %w", err)
	}
	return salesFromModels(models)
}

func (s *Store) ListSalesForBuyer(ctx context.Context, buyerEmail string) ([]*sale.Sale, error) {
	var models []saleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"buyer_email": account.NormalizeEmail(buyerEmail)}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("beatstore/mongo: list sales for buyer: %w", err)
	}
	return salesFromModels(models)
}

func (s *Store) ListSalesForBuyerBeat(ctx context.Context, buyerEmail string, beatID id.BeatID) ([]*sale.Sale, error) {
	var models []saleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"buyer_email": account.NormalizeEmail(buyerEmail),
			"beat_id":     beatID.String(),
		}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("beatstore/mongo: list sales for buyer beat: %w", err)
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
	var m tierCacheModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"_id":        tierCacheKey(buyerEmail, beatID),
			"expires_at": bson.M{"$gt": now()},
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("beatstore/mongo: get cached tier: %w", err)
	}
	return license.Tier(m.Tier), true, nil
}

func (s *Store) SetCachedTier(ctx context.Context, buyerEmail string, beatID id.BeatID, tier license.Tier, ttl time.Duration) error {
	key := tierCacheKey(buyerEmail, beatID)
	_, err := s.mdb.NewUpdate((*tierCacheModel)(nil)).
		Filter(bson.M{"_id": key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":         key,
			"buyer_email": account.NormalizeEmail(buyerEmail),
			"beat_id":     beatID.String(),
			"tier":        string(tier),
			"expires_at":  now().Add(ttl),
			"created_at":  now(),
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: set cached tier: %w", err)
	}
	return nil
}

func (s *Store) InvalidateTier(ctx context.Context, buyerEmail string, beatID id.BeatID) error {
	_, err := s.mdb.NewDelete((*tierCacheModel)(nil)).
		Filter(bson.M{"_id": tierCacheKey(buyerEmail, beatID)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: invalidate tier: %w", err)
	}
	return nil
}

// ==================== Carts ====================

func (s *Store) SaveCart(ctx context.Context, c *cart.Cart) error {
	m := toCartModel(c)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"buyer_email": m.BuyerEmail}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":         m.ID,
			"buyer_email": m.BuyerEmail,
			"items":       m.Items,
			"created_at":  m.CreatedAt,
			"updated_at":  m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: save cart: %w", err)
	}
	return nil
}

func (s *Store) GetCart(ctx context.Context, buyerEmail string) (*cart.Cart, error) {
	var m cartModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"buyer_email": account.NormalizeEmail(buyerEmail)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get cart: %w", err)
	}
	return fromCartModel(&m)
}

func (s *Store) ClearCart(ctx context.Context, buyerEmail string) error {
	_, err := s.mdb.NewDelete((*cartModel)(nil)).
		Filter(bson.M{"buyer_email": account.NormalizeEmail(buyerEmail)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: clear cart: %w", err)
	}
	return nil
}

// ==================== Pending orders ====================

func (s *Store) CreatePendingOrder(ctx context.Context, o *order.PendingOrder) error {
	m := toPendingOrderModel(o)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: create pending order: %w", err)
	}
	return nil
}

func (s *Store) GetPendingOrder(ctx context.Context, providerRef string) (*order.PendingOrder, error) {
	var m pendingOrderModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"provider_ref": providerRef}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrOrderNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get pending order: %w", err)
	}
	return fromPendingOrderModel(&m)
}

func (s *Store) CompletePendingOrder(ctx context.Context, providerRef string) error {
	res, err := s.mdb.NewUpdate((*pendingOrderModel)(nil)).
		Filter(bson.M{"provider_ref": providerRef}).
		Set("status", string(order.StatusCompleted)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: complete pending order: %w", err)
	}
	if res.MatchedCount() == 0 {
		return beatstore.ErrOrderNotFound
	}
	return nil
}

// ==================== Accounts ====================

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return beatstore.ErrAccountExists
		}
		return fmt.Errorf("beatstore/mongo: create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": accountID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrAccountNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get account: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": account.NormalizeEmail(email)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrAccountNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get account by email: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: update account: %w", err)
	}
	if res.MatchedCount() == 0 {
		return beatstore.ErrAccountNotFound
	}
	return nil
}

// ==================== Verification / reset / session ====================

func (s *Store) CreateVerification(ctx context.Context, v *account.Verification) error {
	m := toVerificationModel(v)

	// One live code per email: a fresh code replaces the previous one.
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"email": m.Email}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.ID,
			"email":      m.Email,
			"code":       m.Code,
			"expires_at": m.ExpiresAt,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: create verification: %w", err)
	}
	return nil
}

func (s *Store) GetVerification(ctx context.Context, email string) (*account.Verification, error) {
	var m verificationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": account.NormalizeEmail(email)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrNotFound
		}
		return nil, fmt.Errorf("beatstore/mongo: get verification: %w", err)
	}
	return fromVerificationModel(&m)
}

func (s *Store) DeleteVerification(ctx context.Context, email string) error {
	_, err := s.mdb.NewDelete((*verificationModel)(nil)).
		Filter(bson.M{"email": account.NormalizeEmail(email)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: delete verification: %w", err)
	}
	return nil
}

func (s *Store) CreateResetToken(ctx context.Context, r *account.ResetToken) error {
	m := toResetTokenModel(r)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: create reset token: %w", err)
	}
	return nil
}

func (s *Store) GetResetToken(ctx context.Context, token string) (*account.ResetToken, error) {
	var m resetTokenModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"token": token}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrTokenInvalid
		}
		return nil, fmt.Errorf("beatstore/mongo: get reset token: %w", err)
	}
	return fromResetTokenModel(&m)
}

func (s *Store) MarkResetTokenUsed(ctx context.Context, token string) error {
	res, err := s.mdb.NewUpdate((*resetTokenModel)(nil)).
		Filter(bson.M{"token": token}).
		Set("used", true).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: mark reset token used: %w", err)
	}
	if res.MatchedCount() == 0 {
		return beatstore.ErrTokenInvalid
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *account.Session) error {
	m := toSessionModel(sess)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*account.Session, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"token": token}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, beatstore.ErrUnauthorized
		}
		return nil, fmt.Errorf("beatstore/mongo: get session: %w", err)
	}
	return fromSessionModel(&m)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.mdb.NewDelete((*sessionModel)(nil)).
		Filter(bson.M{"token": token}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSessionsForAccount(ctx context.Context, accountID id.AccountID) error {
	_, err := s.mdb.NewDelete((*sessionModel)(nil)).
		Filter(bson.M{"account_id": accountID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("beatstore/mongo: delete sessions for account: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all marketplace collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBeats: {
			{Keys: bson.D{{Key: "is_hidden", Value: 1}, {Key: "is_available", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "genre", Value: 1}}},
			{Keys: bson.D{{Key: "plays", Value: -1}}},
		},
		colGenres: {
			{
				Keys: bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetCollation(&options.Collation{Locale: "en", Strength: 2}),
			},
		},
		colSales: {
			{Keys: bson.D{{Key: "buyer_email", Value: 1}, {Key: "beat_id", Value: 1}}},
			{Keys: bson.D{{Key: "provider_ref", Value: 1}, {Key: "tier", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colTierCache: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colCarts: {
			{
				Keys:    bson.D{{Key: "buyer_email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colOrders: {
			{
				Keys:    bson.D{{Key: "provider_ref", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "buyer_email", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colAccounts: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colVerifications: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colResets: {
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colSessions: {
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "account_id", Value: 1}}},
		},
	}
}
