package beatstore

import (
	"context"
	"errors"

	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

// ──────────────────────────────────────────────────
// Cart
// ──────────────────────────────────────────────────

// SaveCart upserts the buyer's cart. Item prices are recomputed from the
// live catalog so a stale client price never survives a save.
func (e *Engine) SaveCart(ctx context.Context, buyerEmail string, items []cart.Item) (*cart.Cart, error) {
	c, err := e.store.GetCart(ctx, buyerEmail)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		c = &cart.Cart{
			Entity:     types.NewEntity(),
			ID:         id.NewCartID(),
			BuyerEmail: buyerEmail,
		}
	}

	fresh := make([]cart.Item, 0, len(items))
	for _, item := range items {
		if !item.Tier.Valid() {
			return nil, ErrInvalidTier
		}
		b, err := e.store.GetBeat(ctx, item.BeatID)
		if err != nil {
			return nil, err
		}
		if !b.IsAvailable || b.IsHidden {
			continue
		}
		fresh = append(fresh, cart.Item{
			BeatID:    b.ID,
			BeatName:  b.Name,
			CoverFile: b.CoverFile,
			Tier:      item.Tier,
			Price:     b.FinalPrice(item.Tier),
		})
	}

	c.Items = fresh
	c.Touch()
	if err := e.store.SaveCart(ctx, c); err != nil {
		return nil, err
	}

	e.plugins.EmitCartSaved(ctx, c)
	return c, nil
}

// GetCart returns the buyer's cart revalidated against the catalog: items
// referencing hidden or unavailable beats are silently dropped, and when
// anything was dropped the stored cart is rewritten to match.
func (e *Engine) GetCart(ctx context.Context, buyerEmail string) (*cart.Cart, error) {
	c, err := e.store.GetCart(ctx, buyerEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &cart.Cart{
				Entity:     types.NewEntity(),
				ID:         id.NewCartID(),
				BuyerEmail: buyerEmail,
			}, nil
		}
		return nil, err
	}

	kept := make([]cart.Item, 0, len(c.Items))
	for _, item := range c.Items {
		b, err := e.store.GetBeat(ctx, item.BeatID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !b.IsAvailable || b.IsHidden {
			continue
		}
		kept = append(kept, item)
	}

	if len(kept) != len(c.Items) {
		c.Items = kept
		c.Touch()
		if err := e.store.SaveCart(ctx, c); err != nil {
			return nil, err
		}
		e.plugins.EmitCartSaved(ctx, c)
	}

	return c, nil
}

// RemoveCartItem drops one beat+tier line from the buyer's cart.
func (e *Engine) RemoveCartItem(ctx context.Context, buyerEmail string, beatID id.BeatID, tier license.Tier) (*cart.Cart, error) {
	c, err := e.store.GetCart(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}

	if c.RemoveItem(beatID, tier) {
		c.Touch()
		if err := e.store.SaveCart(ctx, c); err != nil {
			return nil, err
		}
		e.plugins.EmitCartSaved(ctx, c)
	}
	return c, nil
}

// ClearCart empties the buyer's cart.
func (e *Engine) ClearCart(ctx context.Context, buyerEmail string) error {
	return e.store.ClearCart(ctx, buyerEmail)
}
