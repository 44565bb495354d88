// Package provider defines the contracts the engine uses to talk to
// payment providers. Providers confirm that money moved; the sale ledger
// remains the system's own record of entitlement.
package provider

import (
	"context"

	"github.com/stereohaus/beatstore/types"
)

// IntentStatus is the provider-reported state of a card payment intent.
// The engine only ever acts on IntentSucceeded; everything else is treated
// as payment-incomplete.
type IntentStatus string

const IntentSucceeded IntentStatus = "succeeded"

// Intent is a card payment in the intent/confirm flow.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	Amount       types.Money
}

type CreateIntentRequest struct {
	Amount       types.Money
	Description  string
	ReceiptEmail string
	Metadata     map[string]string
}

// Intents is the card (intent-based) payment flow.
type Intents interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	// GetIntent re-reads the intent from the provider. Confirmation always
	// goes through this call; a client-asserted status is never trusted.
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
}

// OrderStatus is the provider-reported state of a multi-item order.
type OrderStatus string

const OrderCompleted OrderStatus = "COMPLETED"

// PurchaseUnit is one line of a multi-item order.
type PurchaseUnit struct {
	Amount      types.Money
	Description string
	Reference   string
}

// Orders is the multi-item (order-based) payment flow.
type Orders interface {
	// CreateOrder registers the order with the provider and returns the
	// provider's order id.
	CreateOrder(ctx context.Context, units []PurchaseUnit) (string, error)
	// CaptureOrder captures an approved order and returns the provider's
	// final status.
	CaptureOrder(ctx context.Context, orderID string) (OrderStatus, error)
}
