package beatstore_test

import (
	"context"
	"errors"
	"testing"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/provider"
	"github.com/stereohaus/beatstore/store/memory"
	"github.com/stereohaus/beatstore/types"
)

func TestCreatePaymentIntentAppliesDiscount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Discounted")
	if err := env.engine.SetDiscount(ctx, b.ID, 20); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}

	// Client sends the pre-discount base; the charge is recomputed from the
	// stored discount.
	res, err := env.engine.CreatePaymentIntent(ctx, beatstore.IntentRequest{
		BeatID:     b.ID,
		Tier:       license.TierBasic,
		Amount:     types.USD(1000),
		BuyerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}

	if want := types.USD(800); !res.FinalAmount.Equal(want) {
		t.Errorf("FinalAmount = %v, want %v", res.FinalAmount, want)
	}
	if res.IntentID == "" || res.ClientSecret == "" {
		t.Errorf("intent id / client secret missing: %+v", res)
	}
}

func TestCreatePaymentIntentRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Gone")
	if err := env.store.MarkSoldExclusive(ctx, b.ID, "first@example.com", b.CreatedAt); err != nil {
		t.Fatalf("MarkSoldExclusive: %v", err)
	}

	tests := []struct {
		name    string
		req     beatstore.IntentRequest
		wantErr error
	}{
		{
			name: "invalid tier",
			req: beatstore.IntentRequest{
				BeatID: b.ID, Tier: license.Tier("gold"), Amount: types.USD(1000),
			},
			wantErr: beatstore.ErrInvalidTier,
		},
		{
			name: "unknown beat",
			req: beatstore.IntentRequest{
				BeatID: id.NewBeatID(), Tier: license.TierBasic, Amount: types.USD(1000),
			},
			wantErr: beatstore.ErrBeatNotFound,
		},
		{
			name: "unavailable beat",
			req: beatstore.IntentRequest{
				BeatID: b.ID, Tier: license.TierBasic, Amount: types.USD(1000),
			},
			wantErr: beatstore.ErrBeatUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.CreatePaymentIntent(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreatePaymentIntent = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfirmPaymentRecordsSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Card Sale")
	res, err := env.engine.CreatePaymentIntent(ctx, beatstore.IntentRequest{
		BeatID: b.ID, Tier: license.TierPremium, Amount: types.USD(2500),
		BuyerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}

	outcome, err := env.engine.ConfirmPayment(ctx, beatstore.ConfirmRequest{
		IntentID: res.IntentID,
		BeatID:   b.ID,
		Tier:     license.TierPremium,
		Buyer:    beatstore.BuyerInfo{Email: "buyer@example.com", Name: "Buyer"},
	})
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if outcome.Exclusive {
		t.Error("premium sale reported exclusive")
	}
	if !outcome.Amount.Equal(types.USD(2500)) {
		t.Errorf("Amount = %v, want $25.00", outcome.Amount)
	}

	// Sale counter bumped, entitlement resolvable from the ledger.
	got, err := env.store.GetBeat(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBeat: %v", err)
	}
	if got.Sales != 1 {
		t.Errorf("Sales = %d, want 1", got.Sales)
	}
	tier, owned, err := env.engine.ResolveEntitlement(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ResolveEntitlement: %v", err)
	}
	if !owned || tier != license.TierPremium {
		t.Errorf("entitlement = (%s, %v), want (premium, true)", tier, owned)
	}
}

func TestConfirmPaymentReplayReturnsOriginal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Replayed")
	res, err := env.engine.CreatePaymentIntent(ctx, beatstore.IntentRequest{
		BeatID: b.ID, Tier: license.TierBasic, Amount: types.USD(1000),
		BuyerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}

	req := beatstore.ConfirmRequest{
		IntentID: res.IntentID,
		BeatID:   b.ID,
		Tier:     license.TierBasic,
		Buyer:    beatstore.BuyerInfo{Email: "buyer@example.com"},
	}
	first, err := env.engine.ConfirmPayment(ctx, req)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	second, err := env.engine.ConfirmPayment(ctx, req)
	if err != nil {
		t.Fatalf("ConfirmPayment replay: %v", err)
	}

	if first.SaleID.String() != second.SaleID.String() {
		t.Errorf("replay returned new sale: %s vs %s", first.SaleID, second.SaleID)
	}
	sales, err := env.store.ListSalesForBuyerBeat(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ListSalesForBuyerBeat: %v", err)
	}
	if len(sales) != 1 {
		t.Errorf("ledger holds %d records after replay, want 1", len(sales))
	}
}

func TestConfirmPaymentIncomplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Stalled")
	env.intents.status = provider.IntentStatus("requires_payment_method")
	res, err := env.engine.CreatePaymentIntent(ctx, beatstore.IntentRequest{
		BeatID: b.ID, Tier: license.TierBasic, Amount: types.USD(1000),
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}

	_, err = env.engine.ConfirmPayment(ctx, beatstore.ConfirmRequest{
		IntentID: res.IntentID,
		BeatID:   b.ID,
		Tier:     license.TierBasic,
		Buyer:    beatstore.BuyerInfo{Email: "buyer@example.com"},
	})
	if !errors.Is(err, beatstore.ErrPaymentIncomplete) {
		t.Errorf("ConfirmPayment = %v, want ErrPaymentIncomplete", err)
	}

	sales, _ := env.store.ListSalesForBuyerBeat(ctx, "buyer@example.com", b.ID)
	if len(sales) != 0 {
		t.Errorf("ledger holds %d records for incomplete payment, want 0", len(sales))
	}
}

func TestCaptureOrderExclusiveRetiresBeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Exclusive Drop")
	buyer := beatstore.BuyerInfo{Email: "owner@example.com", Name: "Owner"}

	providerRef, err := env.engine.CreateOrder(ctx, beatstore.OrderRequest{
		Items: []beatstore.OrderItem{{BeatID: b.ID, Tier: license.TierExclusive}},
		Buyer: buyer,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	outcome, err := env.engine.CaptureOrder(ctx, providerRef)
	if err != nil {
		t.Fatalf("CaptureOrder: %v", err)
	}
	if len(outcome.SaleIDs) != 1 {
		t.Fatalf("SaleIDs = %d, want 1", len(outcome.SaleIDs))
	}
	if len(outcome.ExclusiveBeats) != 1 || outcome.ExclusiveBeats[0].String() != b.ID.String() {
		t.Errorf("ExclusiveBeats = %v, want [%s]", outcome.ExclusiveBeats, b.ID)
	}

	// The beat leaves the public listing but stays retrievable by id.
	beats, total, err := env.engine.ListBeats(ctx, catalog.ListOpts{})
	if err != nil {
		t.Fatalf("ListBeats: %v", err)
	}
	if total != 0 || len(beats) != 0 {
		t.Errorf("listing shows retired beat: total=%d", total)
	}
	got, err := env.engine.GetBeat(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBeat after exclusive: %v", err)
	}
	if got.IsAvailable || !got.SoldExclusively() {
		t.Errorf("beat not retired: available=%v buyer=%q", got.IsAvailable, got.ExclusiveBuyer)
	}

	// A second exclusive purchase for the same beat cannot start.
	_, err = env.engine.CreateOrder(ctx, beatstore.OrderRequest{
		Items: []beatstore.OrderItem{{BeatID: b.ID, Tier: license.TierExclusive}},
		Buyer: beatstore.BuyerInfo{Email: "late@example.com"},
	})
	if !errors.Is(err, beatstore.ErrBeatUnavailable) {
		t.Errorf("second exclusive CreateOrder = %v, want ErrBeatUnavailable", err)
	}
}

func TestCaptureOrderUsesStoredSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Snapshot")
	if err := env.engine.SetDiscount(ctx, b.ID, 50); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}

	providerRef, err := env.engine.CreateOrder(ctx, beatstore.OrderRequest{
		Items: []beatstore.OrderItem{{BeatID: b.ID, Tier: license.TierBasic}},
		Buyer: beatstore.BuyerInfo{Email: "buyer@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// Price changes between create and capture do not move the charge: the
	// snapshot taken at order time is the source of truth.
	if err := env.engine.SetDiscount(ctx, b.ID, 0); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}

	outcome, err := env.engine.CaptureOrder(ctx, providerRef)
	if err != nil {
		t.Fatalf("CaptureOrder: %v", err)
	}
	if want := types.USD(500); !outcome.Total.Equal(want) {
		t.Errorf("Total = %v, want %v", outcome.Total, want)
	}

	sales, err := env.store.ListSalesForBuyerBeat(ctx, "buyer@example.com", b.ID)
	if err != nil {
		t.Fatalf("ListSalesForBuyerBeat: %v", err)
	}
	if len(sales) != 1 || !sales[0].Amount.Equal(types.USD(500)) {
		t.Errorf("recorded sale = %+v, want one at $5.00", sales)
	}
}

func TestCaptureOrderReplayConverges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b1 := seedBeat(t, env, "Multi One")
	b2 := seedBeat(t, env, "Multi Two")

	providerRef, err := env.engine.CreateOrder(ctx, beatstore.OrderRequest{
		Items: []beatstore.OrderItem{
			{BeatID: b1.ID, Tier: license.TierBasic},
			{BeatID: b2.ID, Tier: license.TierPremium},
		},
		Buyer: beatstore.BuyerInfo{Email: "buyer@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	first, err := env.engine.CaptureOrder(ctx, providerRef)
	if err != nil {
		t.Fatalf("CaptureOrder: %v", err)
	}
	second, err := env.engine.CaptureOrder(ctx, providerRef)
	if err != nil {
		t.Fatalf("CaptureOrder replay: %v", err)
	}

	if len(first.SaleIDs) != 2 || len(second.SaleIDs) != 2 {
		t.Fatalf("SaleIDs = %d then %d, want 2 and 2", len(first.SaleIDs), len(second.SaleIDs))
	}
	for i := range first.SaleIDs {
		if first.SaleIDs[i].String() != second.SaleIDs[i].String() {
			t.Errorf("replay sale %d differs: %s vs %s", i, first.SaleIDs[i], second.SaleIDs[i])
		}
	}

	for _, beatID := range []id.BeatID{b1.ID, b2.ID} {
		sales, err := env.store.ListSalesForBuyerBeat(ctx, "buyer@example.com", beatID)
		if err != nil {
			t.Fatalf("ListSalesForBuyerBeat: %v", err)
		}
		if len(sales) != 1 {
			t.Errorf("beat %s holds %d ledger records after replay, want 1", beatID, len(sales))
		}
	}
}

func TestCreateOrderEmpty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.CreateOrder(context.Background(), beatstore.OrderRequest{
		Buyer: beatstore.BuyerInfo{Email: "buyer@example.com"},
	})
	if !errors.Is(err, beatstore.ErrCartEmpty) {
		t.Errorf("CreateOrder(empty) = %v, want ErrCartEmpty", err)
	}
}

func TestCaptureOrderIncompleteStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Voided")
	providerRef, err := env.engine.CreateOrder(ctx, beatstore.OrderRequest{
		Items: []beatstore.OrderItem{{BeatID: b.ID, Tier: license.TierBasic}},
		Buyer: beatstore.BuyerInfo{Email: "buyer@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	env.orders.status = provider.OrderStatus("VOIDED")
	_, err = env.engine.CaptureOrder(ctx, providerRef)
	if !errors.Is(err, beatstore.ErrPaymentIncomplete) {
		t.Errorf("CaptureOrder = %v, want ErrPaymentIncomplete", err)
	}

	sales, _ := env.store.ListSalesForBuyerBeat(ctx, "buyer@example.com", b.ID)
	if len(sales) != 0 {
		t.Errorf("ledger holds %d records for voided order, want 0", len(sales))
	}
}

func TestPaymentWithoutProviders(t *testing.T) {
	eng := beatstore.New(memory.New())

	_, err := eng.CreatePaymentIntent(context.Background(), beatstore.IntentRequest{})
	if !errors.Is(err, beatstore.ErrProviderNotConfigured) {
		t.Errorf("CreatePaymentIntent = %v, want ErrProviderNotConfigured", err)
	}
	_, err = eng.CreateOrder(context.Background(), beatstore.OrderRequest{
		Items: []beatstore.OrderItem{{Tier: license.TierBasic}},
	})
	if !errors.Is(err, beatstore.ErrProviderNotConfigured) {
		t.Errorf("CreateOrder = %v, want ErrProviderNotConfigured", err)
	}
}
