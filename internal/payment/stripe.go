// Package payment wraps the hosted payment-intent provider. The server only
// forwards amounts and relays client secrets; intent confirmation and 3-D
// Secure run entirely on the provider's side.
package payment

import (
	"context"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

type Provider interface {
	// CreateIntent takes an amount in major currency units and returns the
	// intent's client secret.
	CreateIntent(ctx context.Context, amount float64, userID int) (string, error)
}

type StripeProvider struct{}

var _ Provider = (*StripeProvider)(nil)

func NewStripe(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount float64, userID int) (string, error) {
	params := &stripe.PaymentIntentParams{
		// Major to minor units (paise).
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(string(stripe.CurrencyINR)),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.Itoa(userID))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
