package store

import (
	"context"
	"time"

	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/order"
	"github.com/stereohaus/beatstore/sale"
)

// Store is the unified storage interface for all marketplace entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Catalog methods
	CreateBeat(ctx context.Context, b *catalog.Beat) error
	GetBeat(ctx context.Context, beatID id.BeatID) (*catalog.Beat, error)
	ListBeats(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Beat, int64, error)
	UpdateBeat(ctx context.Context, b *catalog.Beat) error
	DeleteBeat(ctx context.Context, beatID id.BeatID) error
	IncrementPlays(ctx context.Context, beatID id.BeatID, delta int64) error
	IncrementSales(ctx context.Context, beatID id.BeatID, delta int64) error
	SetDiscount(ctx context.Context, beatID id.BeatID, percent int) error
	SetLeavingSoon(ctx context.Context, beatID id.BeatID, leaving bool) error
	SetHidden(ctx context.Context, beatID id.BeatID, hidden bool) error
	MarkSoldExclusive(ctx context.Context, beatID id.BeatID, buyerEmail string, soldAt time.Time) error

	// Genre methods
	ListGenres(ctx context.Context) ([]*catalog.Genre, error)
	AddGenre(ctx context.Context, g *catalog.Genre) error
	DeleteGenre(ctx context.Context, genreID id.GenreID) error

	// Sale ledger methods
	RecordSale(ctx context.Context, s *sale.Sale) error
	GetSale(ctx context.Context, saleID id.SaleID) (*sale.Sale, error)
	GetSaleByProviderRef(ctx context.Context, providerRef string, tier string) (*sale.Sale, error)
	ListSales(ctx context.Context, limit int) ([]*sale.Sale, error)
	ListSalesForBuyer(ctx context.Context, buyerEmail string) ([]*sale.Sale, error)
	ListSalesForBuyerBeat(ctx context.Context, buyerEmail string, beatID id.BeatID) ([]*sale.Sale, error)

	// Entitlement cache methods
	GetCachedTier(ctx context.Context, buyerEmail string, beatID id.BeatID) (license.Tier, bool, error)
	SetCachedTier(ctx context.Context, buyerEmail string, beatID id.BeatID, tier license.Tier, ttl time.Duration) error
	InvalidateTier(ctx context.Context, buyerEmail string, beatID id.BeatID) error

	// Cart methods
	SaveCart(ctx context.Context, c *cart.Cart) error
	GetCart(ctx context.Context, buyerEmail string) (*cart.Cart, error)
	ClearCart(ctx context.Context, buyerEmail string) error

	// Pending order methods
	CreatePendingOrder(ctx context.Context, o *order.PendingOrder) error
	GetPendingOrder(ctx context.Context, providerRef string) (*order.PendingOrder, error)
	CompletePendingOrder(ctx context.Context, providerRef string) error

	// Account methods
	CreateAccount(ctx context.Context, a *account.Account) error
	GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*account.Account, error)
	UpdateAccount(ctx context.Context, a *account.Account) error

	// Verification / reset / session methods
	CreateVerification(ctx context.Context, v *account.Verification) error
	GetVerification(ctx context.Context, email string) (*account.Verification, error)
	DeleteVerification(ctx context.Context, email string) error
	CreateResetToken(ctx context.Context, r *account.ResetToken) error
	GetResetToken(ctx context.Context, token string) (*account.ResetToken, error)
	MarkResetTokenUsed(ctx context.Context, token string) error
	CreateSession(ctx context.Context, s *account.Session) error
	GetSession(ctx context.Context, token string) (*account.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsForAccount(ctx context.Context, accountID id.AccountID) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
