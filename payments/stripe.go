// Package payments implements library.PaymentGateway on Stripe.
package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"library-service/library"
)

// intentCreator is the slice of the Stripe client Stripe uses.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Stripe creates card payment intents with the account's secret key.
type Stripe struct {
	intents intentCreator
}

var (
	_ library.PaymentGateway = (*Stripe)(nil)
	_ library.ErrorDescriber = (*Stripe)(nil)
)

func NewStripe(secretKey string) *Stripe {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{intents: sc.PaymentIntents}
}

func (s *Stripe) CreateIntent(ctx context.Context, req library.IntentRequest) (*library.PaymentIntent, error) {
	pi, err := s.intents.New(intentParams(ctx, req))
	if err != nil {
		return nil, err
	}
	return &library.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// DescribeError returns the human-readable message of a Stripe API error,
// or "" for anything else.
func (s *Stripe) DescribeError(err error) string {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return serr.Msg
	}
	return ""
}

func intentParams(ctx context.Context, req library.IntentRequest) *stripe.PaymentIntentParams {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	params.Context = ctx
	return params
}
