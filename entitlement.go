package beatstore

import (
	"context"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/sale"
)

// ──────────────────────────────────────────────────
// Entitlement resolution
// ──────────────────────────────────────────────────

// ResolveEntitlement returns the buyer's best owned tier for a beat. The
// second return is false when the buyer holds no entitlement at all, which
// is distinct from owning the basic tier. The ledger is the sole source of
// truth; a short-lived materialized cache fronts the scan and is
// invalidated whenever a sale is appended.
func (e *Engine) ResolveEntitlement(ctx context.Context, buyerEmail string, beatID id.BeatID) (license.Tier, bool, error) {
	if tier, ok, err := e.store.GetCachedTier(ctx, buyerEmail, beatID); err == nil && ok {
		e.plugins.EmitEntitlementChecked(ctx, buyerEmail, beatID.String(), tier.String())
		return tier, tier.Valid(), nil
	}

	sales, err := e.store.ListSalesForBuyerBeat(ctx, buyerEmail, beatID)
	if err != nil {
		return "", false, err
	}

	best, owned := sale.BestTier(sales)

	_ = e.store.SetCachedTier(ctx, buyerEmail, beatID, best, e.tierCacheTTL) //nolint:errcheck // best-effort cache set
	e.plugins.EmitEntitlementChecked(ctx, buyerEmail, beatID.String(), best.String())

	return best, owned, nil
}

// Authorize reports whether a buyer may download a file class of a beat.
// Public classes pass without a ledger lookup.
func (e *Engine) Authorize(ctx context.Context, buyerEmail string, beatID id.BeatID, class license.FileClass) (bool, error) {
	if !class.Valid() {
		return false, ErrInvalidInput
	}
	if class.Public() {
		return true, nil
	}

	tier, owned, err := e.ResolveEntitlement(ctx, buyerEmail, beatID)
	if err != nil {
		return false, err
	}
	if !owned || !tier.Grants(class) {
		e.plugins.EmitEntitlementDenied(ctx, buyerEmail, beatID.String(), string(class))
		return false, nil
	}
	return true, nil
}

// AuthorizeContract reports whether a buyer may download the contract
// document for a tier: their best owned tier must rank at or above it.
func (e *Engine) AuthorizeContract(ctx context.Context, buyerEmail string, beatID id.BeatID, contractTier license.Tier) (bool, error) {
	if !contractTier.Valid() {
		return false, ErrInvalidTier
	}

	tier, owned, err := e.ResolveEntitlement(ctx, buyerEmail, beatID)
	if err != nil {
		return false, err
	}
	if !owned || !tier.CoversContract(contractTier) {
		e.plugins.EmitEntitlementDenied(ctx, buyerEmail, beatID.String(), string(license.FileContract))
		return false, nil
	}
	return true, nil
}
