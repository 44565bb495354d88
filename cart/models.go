package cart

import (
	"context"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

// Item is one beat+tier line in a cart. Display fields are snapshots for
// rendering; the catalog stays the source of truth and items are
// revalidated against it on every read.
type Item struct {
	BeatID    id.BeatID    `json:"beat_id"`
	BeatName  string       `json:"beat_name"`
	CoverFile string       `json:"cover_file,omitempty"`
	Tier      license.Tier `json:"tier"`
	Price     types.Money  `json:"price"`
}

// Cart is keyed by buyer email. One cart per buyer.
type Cart struct {
	types.Entity
	ID         id.CartID `json:"id"`
	BuyerEmail string    `json:"buyer_email"`
	Items      []Item    `json:"items"`
}

// Total sums item prices. Items are assumed to share a currency.
func (c *Cart) Total() types.Money {
	var total types.Money
	for i, it := range c.Items {
		if i == 0 {
			total = it.Price
			continue
		}
		total = total.Add(it.Price)
	}
	return total
}

// RemoveItem drops the line matching beat+tier, reporting whether a line
// was removed.
func (c *Cart) RemoveItem(beatID id.BeatID, tier license.Tier) bool {
	for i, it := range c.Items {
		if it.BeatID.String() == beatID.String() && it.Tier == tier {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

type Store interface {
	// Save upserts the buyer's cart.
	Save(ctx context.Context, c *Cart) error
	Get(ctx context.Context, buyerEmail string) (*Cart, error)
	Clear(ctx context.Context, buyerEmail string) error
}
