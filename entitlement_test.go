package beatstore_test

import (
	"context"
	"testing"
	"time"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/sale"
	"github.com/stereohaus/beatstore/types"
)

// recordSale appends a succeeded ledger record directly, bypassing the
// payment flow.
func recordSale(t *testing.T, env *testEnv, buyerEmail string, beatID id.BeatID, tier license.Tier) *sale.Sale {
	t.Helper()

	rec := &sale.Sale{
		Entity:      types.NewEntity(),
		ID:          id.NewSaleID(),
		ProviderRef: "pi_seed_" + id.NewSaleID().String(),
		Provider:    "stripe",
		BeatID:      beatID,
		Tier:        tier,
		BuyerEmail:  buyerEmail,
		Amount:      types.USD(1000),
		Status:      sale.StatusSucceeded,
	}
	if err := env.store.RecordSale(context.Background(), rec); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	return rec
}

func TestResolveEntitlementAbsenceIsNotBasic(t *testing.T) {
	env := newTestEnv(t)
	b := seedBeat(t, env, "Unowned")

	tier, owned, err := env.engine.ResolveEntitlement(context.Background(), "stranger@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement: %v", err)
	}
	if owned {
		t.Errorf("owned = true for buyer with no sales, tier=%q", tier)
	}
	if tier.Valid() {
		t.Errorf("tier = %q, want invalid/empty", tier)
	}
}

func TestResolveEntitlementBestTierWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := seedBeat(t, env, "Upgraded")

	recordSale(t, env, "buyer@example.com", b.ID, license.TierBasic)
	recordSale(t, env, "buyer@example.com", b.ID, license.TierPremium)

	tier, owned, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement: %v", err)
	}
	if !owned || tier != license.TierPremium {
		t.Errorf("entitlement = (%s, %v), want (premium, true)", tier, owned)
	}
}

func TestResolveEntitlementCacheInvalidatedBySale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Cached")
	recordSale(t, env, "buyer@example.com", b.ID, license.TierBasic)

	// Prime the cache at basic.
	tier, _, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement: %v", err)
	}
	if tier != license.TierBasic {
		t.Fatalf("primed tier = %s, want basic", tier)
	}

	// A confirmed premium purchase invalidates the cached basic answer.
	res, err := env.engine.CreatePaymentIntent(ctx, beatstore.IntentRequest{
		BeatID: b.ID, Tier: license.TierPremium, Amount: types.USD(2500),
		BuyerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}
	if _, err := env.engine.ConfirmPayment(ctx, beatstore.ConfirmRequest{
		IntentID: res.IntentID, BeatID: b.ID, Tier: license.TierPremium,
		Buyer: beatstore.BuyerInfo{Email: "buyer@example.com"},
	}); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	tier, owned, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement after upgrade: %v", err)
	}
	if !owned || tier != license.TierPremium {
		t.Errorf("entitlement after upgrade = (%s, %v), want (premium, true)", tier, owned)
	}
}

func TestResolveEntitlementCacheExpires(t *testing.T) {
	env := newTestEnv(t, beatstore.WithTierCacheTTL(time.Millisecond))
	ctx := context.Background()

	b := seedBeat(t, env, "Short TTL")
	recordSale(t, env, "buyer@example.com", b.ID, license.TierBasic)

	if _, _, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID); err != nil {
		t.Fatalf("ResolveEntitlement: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	// The expired entry falls back to the ledger scan.
	tier, owned, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement after expiry: %v", err)
	}
	if !owned || tier != license.TierBasic {
		t.Errorf("entitlement = (%s, %v), want (basic, true)", tier, owned)
	}
}

func TestAuthorizeFileClasses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Gated")
	recordSale(t, env, "premium@example.com", b.ID, license.TierPremium)
	recordSale(t, env, "basic@example.com", b.ID, license.TierBasic)
	recordSale(t, env, "owner@example.com", b.ID, license.TierExclusive)

	tests := []struct {
		name  string
		buyer string
		class license.FileClass
		want  bool
	}{
		{"preview is public", "stranger@example.com", license.FilePreview, true},
		{"cover is public", "stranger@example.com", license.FileCover, true},
		{"basic cannot fetch wav", "basic@example.com", license.FileLossless, false},
		{"premium fetches wav", "premium@example.com", license.FileLossless, true},
		{"premium cannot fetch stems", "premium@example.com", license.FileStems, false},
		{"exclusive fetches stems", "owner@example.com", license.FileStems, true},
		{"stranger cannot fetch wav", "stranger@example.com", license.FileLossless, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.engine.Authorize(ctx, tt.buyer, b.ID, tt.class)
			if err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if got != tt.want {
				t.Errorf("Authorize(%s, %s) = %v, want %v", tt.buyer, tt.class, got, tt.want)
			}
		})
	}
}

func TestAuthorizeContractTiers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Contracted")
	recordSale(t, env, "premium@example.com", b.ID, license.TierPremium)

	tests := []struct {
		name     string
		buyer    string
		contract license.Tier
		want     bool
	}{
		{"own tier", "premium@example.com", license.TierPremium, true},
		{"tier below", "premium@example.com", license.TierBasic, true},
		{"tier above", "premium@example.com", license.TierExclusive, false},
		{"no purchase at all", "stranger@example.com", license.TierBasic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.engine.AuthorizeContract(ctx, tt.buyer, b.ID, tt.contract)
			if err != nil {
				t.Fatalf("AuthorizeContract: %v", err)
			}
			if got != tt.want {
				t.Errorf("AuthorizeContract(%s, %s) = %v, want %v", tt.buyer, tt.contract, got, tt.want)
			}
		})
	}
}
