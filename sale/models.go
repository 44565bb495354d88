package sale

import (
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

type Status string

const (
	// StatusSucceeded is the only status current flows write. Legacy records
	// carry no status at all and are treated as succeeded when resolving
	// entitlement.
	StatusSucceeded Status = "succeeded"
)

// Sale is one completed purchase. The ledger is append-only: a record is
// written exactly once per confirmed capture and never updated or deleted.
// Entitlement decisions depend only on this ledger, never on provider state.
type Sale struct {
	types.Entity
	ID id.SaleID `json:"id"`

	// ProviderRef is the payment provider's transaction id: a Stripe payment
	// intent id or a PayPal order id.
	ProviderRef string `json:"provider_ref"`
	Provider    string `json:"provider"`

	BeatID   id.BeatID `json:"beat_id"`
	BeatName string    `json:"beat_name"` // snapshot at time of sale

	Tier license.Tier `json:"tier"`

	BuyerEmail  string `json:"buyer_email"`
	BuyerName   string `json:"buyer_name,omitempty"`
	BuyerPhone  string `json:"buyer_phone,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	PromoOptIn  bool   `json:"promo_opt_in,omitempty"`

	Amount types.Money `json:"amount"`
	Status Status      `json:"status,omitempty"`
}

// Counts reports whether the record counts toward entitlement: succeeded,
// or a legacy record with no status.
func (s *Sale) Counts() bool {
	return s.Status == StatusSucceeded || s.Status == ""
}

// BestTier returns the highest tier among records that count toward
// entitlement. An empty result means no entitlement at all, which is
// distinct from owning the basic tier.
func BestTier(sales []*Sale) (license.Tier, bool) {
	var best license.Tier
	for _, s := range sales {
		if !s.Counts() {
			continue
		}
		if s.Tier.Rank() > best.Rank() {
			best = s.Tier
		}
	}
	return best, best.Valid()
}
