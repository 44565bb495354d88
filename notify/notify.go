// Package notify defines the best-effort notification contract. The engine
// logs delivery failures and never fails an operation because an email did
// not go out.
package notify

import (
	"context"

	"github.com/stereohaus/beatstore/types"
)

// Receipt describes a completed purchase for the buyer's confirmation
// email.
type Receipt struct {
	BuyerEmail string
	BuyerName  string
	Items      []ReceiptItem
	Total      types.Money
}

type ReceiptItem struct {
	BeatName string
	Tier     string
	Price    types.Money
}

// BeatRequest is a custom-beat commission inquiry forwarded to the studio
// inbox.
type BeatRequest struct {
	Name    string
	Email   string
	Genre   string
	BPM     string
	Mood    string
	Details string
}

type Notifier interface {
	VerificationCode(ctx context.Context, email, code string) error
	PasswordReset(ctx context.Context, email, resetURL string) error
	PurchaseReceipt(ctx context.Context, r Receipt) error
	BeatRequest(ctx context.Context, r BeatRequest) error
}

// Noop discards every notification. Used when no notifier is configured.
type Noop struct{}

func (Noop) VerificationCode(context.Context, string, string) error { return nil }
func (Noop) PasswordReset(context.Context, string, string) error    { return nil }
func (Noop) PurchaseReceipt(context.Context, Receipt) error         { return nil }
func (Noop) BeatRequest(context.Context, BeatRequest) error         { return nil }
