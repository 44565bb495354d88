// Package stripe implements the card intent flow on the Stripe API.
package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/stereohaus/beatstore/provider"
	"github.com/stereohaus/beatstore/types"
)

// Provider wraps an explicitly constructed Stripe client. The client is
// injected at engine construction; no package-level key or global client is
// used.
type Provider struct {
	api *client.API
}

func New(apiKey string) *Provider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Provider{api: api}
}

// NewWithClient injects a pre-built client, used by tests and by callers
// that configure backends themselves.
func NewWithClient(api *client.API) *Provider {
	return &Provider{api: api}
}

func (p *Provider) CreateIntent(_ context.Context, req provider.CreateIntentRequest) (*provider.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Amount),
		Currency: stripe.String(strings.ToLower(req.Amount.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}
	return fromPaymentIntent(pi), nil
}

func (p *Provider) GetIntent(_ context.Context, intentID string) (*provider.Intent, error) {
	pi, err := p.api.PaymentIntents.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: get intent %s: %w", intentID, err)
	}
	return fromPaymentIntent(pi), nil
}

func fromPaymentIntent(pi *stripe.PaymentIntent) *provider.Intent {
	return &provider.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       provider.IntentStatus(pi.Status),
		Amount:       types.NewMoney(pi.Amount, strings.ToLower(string(pi.Currency))),
	}
}
