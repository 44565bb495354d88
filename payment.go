package beatstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/notify"
	"github.com/stereohaus/beatstore/order"
	"github.com/stereohaus/beatstore/provider"
	"github.com/stereohaus/beatstore/sale"
	"github.com/stereohaus/beatstore/types"
)

// BuyerInfo identifies the purchaser on confirm/capture. Email is the
// entitlement key; the rest are receipt fields.
type BuyerInfo struct {
	Email       string
	Name        string
	Phone       string
	AccountType string
	PromoOptIn  bool
}

// IntentRequest asks for a card payment intent. Amount is the pre-discount
// base; the charge amount is always recomputed from the beat's live
// discount.
type IntentRequest struct {
	BeatID     id.BeatID
	Tier       license.Tier
	Amount     types.Money
	BuyerEmail string
}

// IntentResult carries what the client needs to complete a card payment.
type IntentResult struct {
	IntentID     string
	ClientSecret string
	FinalAmount  types.Money
}

// ConfirmRequest finalizes a card payment. IntentID is client-asserted and
// re-verified against the provider before anything is recorded.
type ConfirmRequest struct {
	IntentID string
	BeatID   id.BeatID
	Tier     license.Tier
	Buyer    BuyerInfo
}

// SaleOutcome reports a recorded purchase. Exclusive changes client-facing
// messaging and means the beat left the public catalog.
type SaleOutcome struct {
	SaleID    id.SaleID
	Amount    types.Money
	Exclusive bool
}

// OrderItem is one line of a multi-item purchase request.
type OrderItem struct {
	BeatID id.BeatID
	Tier   license.Tier
}

// OrderRequest asks for a provider order covering multiple items. Prices
// are recomputed server-side per item.
type OrderRequest struct {
	Items []OrderItem
	Buyer BuyerInfo
}

// OrderOutcome reports a captured multi-item purchase.
type OrderOutcome struct {
	SaleIDs        []id.SaleID
	Total          types.Money
	ExclusiveBeats []id.BeatID
}

// ──────────────────────────────────────────────────
// Card flow (intent-based)
// ──────────────────────────────────────────────────

// CreatePaymentIntent opens a card payment for one beat+tier. The final
// amount is the client-supplied base with the beat's live discount applied;
// the client amount is never trusted as the charge itself.
func (e *Engine) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	if e.intents == nil {
		return nil, ErrProviderNotConfigured
	}
	if !req.Tier.Valid() {
		return nil, ErrInvalidTier
	}

	b, err := e.store.GetBeat(ctx, req.BeatID)
	if err != nil {
		return nil, err
	}
	if !b.IsAvailable {
		return nil, ErrBeatUnavailable
	}

	final := req.Amount
	if b.DiscountPercent > 0 {
		final = final.PercentOff(b.DiscountPercent)
	}

	intent, err := e.intents.CreateIntent(ctx, provider.CreateIntentRequest{
		Amount:       final,
		Description:  fmt.Sprintf("%s - %s license", b.Name, req.Tier),
		ReceiptEmail: req.BuyerEmail,
		Metadata: map[string]string{
			"beat_id": req.BeatID.String(),
			"tier":    req.Tier.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("payment intent created",
		"beat_id", req.BeatID.String(),
		"tier", req.Tier.String(),
		"amount", final.Amount,
		"discount", b.DiscountPercent,
	)

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		FinalAmount:  final,
	}, nil
}

// ConfirmPayment records the sale for a confirmed card payment. The intent
// is re-read from the provider and the sale is written only when the
// provider reports succeeded. A replayed confirm for the same intent and
// tier returns the originally recorded outcome instead of appending a
// duplicate.
func (e *Engine) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*SaleOutcome, error) {
	if e.intents == nil {
		return nil, ErrProviderNotConfigured
	}
	if !req.Tier.Valid() {
		return nil, ErrInvalidTier
	}

	intent, err := e.intents.GetIntent(ctx, req.IntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != provider.IntentSucceeded {
		e.plugins.EmitPaymentFailed(ctx, req.IntentID, ErrPaymentIncomplete)
		return nil, ErrPaymentIncomplete
	}

	// Replay: an existing ledger record for this intent+tier is the
	// authoritative outcome.
	if existing, err := e.store.GetSaleByProviderRef(ctx, req.IntentID, req.Tier.String()); err == nil {
		return &SaleOutcome{
			SaleID:    existing.ID,
			Amount:    existing.Amount,
			Exclusive: existing.Tier == license.TierExclusive,
		}, nil
	} else if !errors.Is(err, ErrSaleNotFound) {
		return nil, err
	}

	b, err := e.store.GetBeat(ctx, req.BeatID)
	if err != nil {
		return nil, err
	}

	rec := &sale.Sale{
		Entity:      types.NewEntity(),
		ID:          id.NewSaleID(),
		ProviderRef: req.IntentID,
		Provider:    "stripe",
		BeatID:      b.ID,
		BeatName:    b.Name,
		Tier:        req.Tier,
		BuyerEmail:  req.Buyer.Email,
		BuyerName:   req.Buyer.Name,
		BuyerPhone:  req.Buyer.Phone,
		AccountType: req.Buyer.AccountType,
		PromoOptIn:  req.Buyer.PromoOptIn,
		Amount:      intent.Amount,
		Status:      sale.StatusSucceeded,
	}
	if err := e.store.RecordSale(ctx, rec); err != nil {
		return nil, err
	}
	e.plugins.EmitSaleRecorded(ctx, rec)

	e.settleAfterSale(ctx, rec)

	e.notifyReceipt(ctx, req.Buyer, []notify.ReceiptItem{{
		BeatName: b.Name,
		Tier:     req.Tier.String(),
		Price:    intent.Amount,
	}}, intent.Amount)

	return &SaleOutcome{
		SaleID:    rec.ID,
		Amount:    intent.Amount,
		Exclusive: req.Tier == license.TierExclusive,
	}, nil
}

// ──────────────────────────────────────────────────
// Order flow (multi-item)
// ──────────────────────────────────────────────────

// CreateOrder opens a provider order for a multi-item purchase and
// persists the item snapshot the capture step will consume. Item prices
// are recomputed server-side from the live catalog.
func (e *Engine) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	if e.orders == nil {
		return "", ErrProviderNotConfigured
	}
	if len(req.Items) == 0 {
		return "", ErrCartEmpty
	}

	var snapshots []order.ItemSnapshot
	var units []provider.PurchaseUnit
	var total types.Money
	for i, item := range req.Items {
		if !item.Tier.Valid() {
			return "", ErrInvalidTier
		}
		b, err := e.store.GetBeat(ctx, item.BeatID)
		if err != nil {
			return "", err
		}
		if !b.IsAvailable {
			return "", ErrBeatUnavailable
		}

		price := b.FinalPrice(item.Tier)
		snapshots = append(snapshots, order.ItemSnapshot{
			BeatID:   b.ID,
			BeatName: b.Name,
			Tier:     item.Tier,
			Price:    price,
		})
		units = append(units, provider.PurchaseUnit{
			Amount:      price,
			Description: fmt.Sprintf("%s - %s license", b.Name, item.Tier),
			Reference:   b.ID.String(),
		})
		if i == 0 {
			total = price
		} else {
			total = total.Add(price)
		}
	}

	providerRef, err := e.orders.CreateOrder(ctx, units)
	if err != nil {
		return "", err
	}

	po := &order.PendingOrder{
		Entity:      types.NewEntity(),
		ID:          id.NewPendingOrderID(),
		ProviderRef: providerRef,
		Provider:    "paypal",
		Items:       snapshots,
		Total:       total,
		BuyerEmail:  req.Buyer.Email,
		BuyerName:   req.Buyer.Name,
		BuyerPhone:  req.Buyer.Phone,
		Status:      order.StatusCreated,
	}
	if err := e.store.CreatePendingOrder(ctx, po); err != nil {
		return "", err
	}

	e.plugins.EmitOrderCreated(ctx, po)
	e.logger.Info("pending order created",
		"provider_ref", providerRef,
		"items", len(snapshots),
		"total", total.Amount,
	)

	return providerRef, nil
}

// CaptureOrder captures a provider order and records one sale per
// snapshotted item. The stored snapshot is the source of truth; a
// client-resubmitted item list is never consulted. Items whose provider
// ref and tier already appear in the ledger are skipped, so a retried
// capture converges on the original outcome.
func (e *Engine) CaptureOrder(ctx context.Context, providerRef string) (*OrderOutcome, error) {
	if e.orders == nil {
		return nil, ErrProviderNotConfigured
	}

	status, err := e.orders.CaptureOrder(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	if status != provider.OrderCompleted {
		e.plugins.EmitPaymentFailed(ctx, providerRef, ErrPaymentIncomplete)
		return nil, ErrPaymentIncomplete
	}

	po, err := e.store.GetPendingOrder(ctx, providerRef)
	if err != nil {
		return nil, err
	}

	buyer := BuyerInfo{Email: po.BuyerEmail, Name: po.BuyerName, Phone: po.BuyerPhone}
	outcome := &OrderOutcome{Total: po.Total}
	var receiptItems []notify.ReceiptItem

	for _, item := range po.Items {
		if existing := e.findRecordedSale(ctx, buyer.Email, item.BeatID, providerRef, item.Tier); existing != nil {
			outcome.SaleIDs = append(outcome.SaleIDs, existing.ID)
			if item.Tier == license.TierExclusive {
				outcome.ExclusiveBeats = append(outcome.ExclusiveBeats, item.BeatID)
			}
			continue
		}

		rec := &sale.Sale{
			Entity:      types.NewEntity(),
			ID:          id.NewSaleID(),
			ProviderRef: providerRef,
			Provider:    po.Provider,
			BeatID:      item.BeatID,
			BeatName:    item.BeatName,
			Tier:        item.Tier,
			BuyerEmail:  buyer.Email,
			BuyerName:   buyer.Name,
			BuyerPhone:  buyer.Phone,
			Amount:      item.Price,
			Status:      sale.StatusSucceeded,
		}
		if err := e.store.RecordSale(ctx, rec); err != nil {
			return nil, err
		}
		e.plugins.EmitSaleRecorded(ctx, rec)
		e.settleAfterSale(ctx, rec)

		outcome.SaleIDs = append(outcome.SaleIDs, rec.ID)
		if item.Tier == license.TierExclusive {
			outcome.ExclusiveBeats = append(outcome.ExclusiveBeats, item.BeatID)
		}
		receiptItems = append(receiptItems, notify.ReceiptItem{
			BeatName: item.BeatName,
			Tier:     item.Tier.String(),
			Price:    item.Price,
		})
	}

	if err := e.store.CompletePendingOrder(ctx, providerRef); err != nil {
		return nil, err
	}
	po.Status = order.StatusCompleted
	e.plugins.EmitOrderCaptured(ctx, po)

	if len(receiptItems) > 0 {
		e.notifyReceipt(ctx, buyer, receiptItems, po.Total)
	}

	return outcome, nil
}

// findRecordedSale looks for an existing ledger record for one order item,
// so retried captures skip items already settled.
func (e *Engine) findRecordedSale(ctx context.Context, buyerEmail string, beatID id.BeatID, providerRef string, tier license.Tier) *sale.Sale {
	sales, err := e.store.ListSalesForBuyerBeat(ctx, buyerEmail, beatID)
	if err != nil {
		return nil
	}
	for _, s := range sales {
		if s.ProviderRef == providerRef && s.Tier == tier {
			return s
		}
	}
	return nil
}

// settleAfterSale applies the catalog side-effects of a recorded sale:
// sale counter increment, exclusive retirement, entitlement cache
// invalidation. The ledger record is already durable; failures here leave
// the catalog transiently stale and are logged, not returned.
func (e *Engine) settleAfterSale(ctx context.Context, rec *sale.Sale) {
	if err := e.store.IncrementSales(ctx, rec.BeatID, 1); err != nil {
		e.logger.Error("failed to increment sale counter",
			"beat_id", rec.BeatID.String(),
			"error", err,
		)
	}

	if rec.Tier == license.TierExclusive {
		if err := e.store.MarkSoldExclusive(ctx, rec.BeatID, rec.BuyerEmail, time.Now().UTC()); err != nil {
			if errors.Is(err, ErrExclusiveSold) {
				e.logger.Warn("beat already sold exclusively",
					"beat_id", rec.BeatID.String(),
					"buyer", rec.BuyerEmail,
				)
			} else {
				e.logger.Error("failed to mark exclusive sale",
					"beat_id", rec.BeatID.String(),
					"error", err,
				)
			}
		} else {
			e.plugins.EmitExclusiveSold(ctx, rec.BeatID.String(), rec.BuyerEmail)
		}
	}

	if err := e.store.InvalidateTier(ctx, rec.BuyerEmail, rec.BeatID); err != nil {
		e.logger.Warn("failed to invalidate entitlement cache",
			"beat_id", rec.BeatID.String(),
			"buyer", rec.BuyerEmail,
			"error", err,
		)
	}
}

// notifyReceipt sends the purchase confirmation email. Best-effort:
// failures are logged and surfaced to plugins, never to the caller.
func (e *Engine) notifyReceipt(ctx context.Context, buyer BuyerInfo, items []notify.ReceiptItem, total types.Money) {
	err := e.notifier.PurchaseReceipt(ctx, notify.Receipt{
		BuyerEmail: buyer.Email,
		BuyerName:  buyer.Name,
		Items:      items,
		Total:      total,
	})
	if err != nil {
		e.logger.Warn("failed to send purchase receipt",
			"buyer", buyer.Email,
			"error", err,
		)
		e.plugins.EmitNotifyFailed(ctx, "purchase_receipt", buyer.Email, err)
	}
}

// ──────────────────────────────────────────────────
// Ledger reads
// ──────────────────────────────────────────────────

// ListSales returns the newest sales, for the admin dashboard.
func (e *Engine) ListSales(ctx context.Context, limit int) ([]*sale.Sale, error) {
	return e.store.ListSales(ctx, limit)
}

// ListPurchases returns a buyer's purchase history, newest first.
func (e *Engine) ListPurchases(ctx context.Context, buyerEmail string) ([]*sale.Sale, error) {
	return e.store.ListSalesForBuyer(ctx, buyerEmail)
}
