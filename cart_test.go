package beatstore_test

import (
	"context"
	"errors"
	"testing"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

func TestSaveCartRecomputesPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Repriced")
	if err := env.engine.SetDiscount(ctx, b.ID, 25); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}

	// The client claims a stale price; the saved cart carries the live one.
	c, err := env.engine.SaveCart(ctx, "buyer@example.com", []cart.Item{
		{BeatID: b.ID, Tier: license.TierBasic, Price: types.USD(1)},
	})
	if err != nil {
		t.Fatalf("SaveCart: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("Items = %d, want 1", len(c.Items))
	}
	if want := types.USD(750); !c.Items[0].Price.Equal(want) {
		t.Errorf("item price = %v, want %v", c.Items[0].Price, want)
	}
	if c.Items[0].BeatName != "Repriced" {
		t.Errorf("item name = %q, want the catalog name", c.Items[0].BeatName)
	}
}

func TestSaveCartDropsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	keep := seedBeat(t, env, "Keeper")
	gone := seedBeat(t, env, "Retired")
	if err := env.store.MarkSoldExclusive(ctx, gone.ID, "first@example.com", gone.CreatedAt); err != nil {
		t.Fatalf("MarkSoldExclusive: %v", err)
	}

	c, err := env.engine.SaveCart(ctx, "buyer@example.com", []cart.Item{
		{BeatID: keep.ID, Tier: license.TierBasic},
		{BeatID: gone.ID, Tier: license.TierBasic},
	})
	if err != nil {
		t.Fatalf("SaveCart: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].BeatID.String() != keep.ID.String() {
		t.Errorf("cart = %+v, want only the available beat", c.Items)
	}
}

func TestGetCartRevalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b1 := seedBeat(t, env, "Still There")
	b2 := seedBeat(t, env, "Soon Hidden")

	if _, err := env.engine.SaveCart(ctx, "buyer@example.com", []cart.Item{
		{BeatID: b1.ID, Tier: license.TierBasic},
		{BeatID: b2.ID, Tier: license.TierPremium},
	}); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}

	// The beat hides after the cart was written; the next read drops it and
	// rewrites the stored cart.
	if err := env.engine.SetHidden(ctx, b2.ID, true); err != nil {
		t.Fatalf("SetHidden: %v", err)
	}

	c, err := env.engine.GetCart(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].BeatID.String() != b1.ID.String() {
		t.Fatalf("revalidated cart = %+v, want only the visible beat", c.Items)
	}

	stored, err := env.store.GetCart(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("store GetCart: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Errorf("stored cart holds %d items after revalidation, want 1", len(stored.Items))
	}
}

func TestGetCartMissingIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.engine.GetCart(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(c.Items) != 0 {
		t.Errorf("fresh cart holds %d items, want 0", len(c.Items))
	}
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Two Tiers")
	if _, err := env.engine.SaveCart(ctx, "buyer@example.com", []cart.Item{
		{BeatID: b.ID, Tier: license.TierBasic},
		{BeatID: b.ID, Tier: license.TierPremium},
	}); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}

	c, err := env.engine.RemoveCartItem(ctx, "buyer@example.com", b.ID, license.TierBasic)
	if err != nil {
		t.Fatalf("RemoveCartItem: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Tier != license.TierPremium {
		t.Errorf("cart after removal = %+v, want the premium line only", c.Items)
	}
}

func TestSaveCartInvalidTier(t *testing.T) {
	env := newTestEnv(t)
	b := seedBeat(t, env, "Bad Tier")

	_, err := env.engine.SaveCart(context.Background(), "buyer@example.com", []cart.Item{
		{BeatID: b.ID, Tier: license.Tier("platinum")},
	})
	if !errors.Is(err, beatstore.ErrInvalidTier) {
		t.Errorf("SaveCart = %v, want ErrInvalidTier", err)
	}
}
