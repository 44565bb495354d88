package sale

import (
	"context"

	"github.com/stereohaus/beatstore/id"
)

type Store interface {
	// Record appends a sale to the ledger. Sales are never updated or
	// deleted afterwards.
	Record(ctx context.Context, s *Sale) error
	Get(ctx context.Context, saleID id.SaleID) (*Sale, error)
	// GetByProviderRef looks a sale up by its provider transaction id and
	// the tier it was recorded under. Confirm/capture replays use this to
	// return the original outcome instead of appending a duplicate.
	GetByProviderRef(ctx context.Context, providerRef string, tier string) (*Sale, error)
	ListAll(ctx context.Context, limit int) ([]*Sale, error)
	ListForBuyer(ctx context.Context, buyerEmail string) ([]*Sale, error)
	// ListForBuyerBeat returns every sale for a buyer/beat pair, regardless
	// of status; callers filter with Counts.
	ListForBuyerBeat(ctx context.Context, buyerEmail string, beatID id.BeatID) ([]*Sale, error)
}
