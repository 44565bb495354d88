package order

import (
	"context"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusCompleted Status = "completed"
)

// ItemSnapshot freezes one cart line at order-creation time. Capture reads
// the snapshot back instead of trusting a client-resubmitted item list.
type ItemSnapshot struct {
	BeatID   id.BeatID    `json:"beat_id"`
	BeatName string       `json:"beat_name"`
	Tier     license.Tier `json:"tier"`
	Price    types.Money  `json:"price"`
}

// PendingOrder links a provider-issued order id to the intended purchase.
// It is consumed exactly once: capture transitions it to completed and a
// completed order is never replayed.
type PendingOrder struct {
	types.Entity
	ID          id.PendingOrderID `json:"id"`
	ProviderRef string            `json:"provider_ref"` // provider order id
	Provider    string            `json:"provider"`
	Items       []ItemSnapshot    `json:"items"`
	Total       types.Money       `json:"total"`
	BuyerEmail  string            `json:"buyer_email"`
	BuyerName   string            `json:"buyer_name,omitempty"`
	BuyerPhone  string            `json:"buyer_phone,omitempty"`
	Status      Status            `json:"status"`
}

type Store interface {
	Create(ctx context.Context, o *PendingOrder) error
	GetByProviderRef(ctx context.Context, providerRef string) (*PendingOrder, error)
	MarkCompleted(ctx context.Context, providerRef string) error
}
