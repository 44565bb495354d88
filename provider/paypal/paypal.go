// Package paypal implements the multi-item order flow on the PayPal
// Orders v2 API.
package paypal

import (
	"context"
	"fmt"
	"strings"

	"github.com/plutov/paypal/v4"

	"github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/provider"
)

// Provider wraps an explicitly constructed PayPal client. When credentials
// are absent the provider is constructed unconfigured and every call fails
// with ErrProviderNotConfigured, so the rest of the engine keeps working
// without PayPal.
type Provider struct {
	client *paypal.Client
}

// New builds a provider against the live or sandbox API. Empty credentials
// yield an unconfigured provider rather than an error.
func New(clientID, secret string, live bool) (*Provider, error) {
	if clientID == "" || secret == "" {
		return &Provider{}, nil
	}
	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}
	c, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, fmt.Errorf("paypal: new client: %w", err)
	}
	return &Provider{client: c}, nil
}

// NewWithClient injects a pre-built client.
func NewWithClient(c *paypal.Client) *Provider {
	return &Provider{client: c}
}

// Configured reports whether credentials were supplied.
func (p *Provider) Configured() bool {
	return p.client != nil
}

func (p *Provider) CreateOrder(ctx context.Context, units []provider.PurchaseUnit) (string, error) {
	if p.client == nil {
		return "", beatstore.ErrProviderNotConfigured
	}
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return "", fmt.Errorf("paypal: access token: %w", err)
	}

	purchaseUnits := make([]paypal.PurchaseUnitRequest, 0, len(units))
	for _, u := range units {
		purchaseUnits = append(purchaseUnits, paypal.PurchaseUnitRequest{
			ReferenceID: u.Reference,
			Description: u.Description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(u.Amount.Currency),
				Value:    u.Amount.FormatMajor(),
			},
		})
	}

	ord, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, purchaseUnits, nil, nil)
	if err != nil {
		return "", fmt.Errorf("paypal: create order: %w", err)
	}
	return ord.ID, nil
}

func (p *Provider) CaptureOrder(ctx context.Context, orderID string) (provider.OrderStatus, error) {
	if p.client == nil {
		return "", beatstore.ErrProviderNotConfigured
	}
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return "", fmt.Errorf("paypal: access token: %w", err)
	}

	res, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", fmt.Errorf("paypal: capture order %s: %w", orderID, err)
	}
	return provider.OrderStatus(res.Status), nil
}
