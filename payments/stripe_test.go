package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"library-service/library"
)

type fakeIntents struct {
	got *stripe.PaymentIntentParams
	pi  *stripe.PaymentIntent
	err error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = params
	return f.pi, f.err
}

func TestCreateIntent(t *testing.T) {
	fake := &fakeIntents{pi: &stripe.PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret_x",
		Amount:       500,
		Currency:     stripe.CurrencyUSD,
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}}
	gw := &Stripe{intents: fake}

	ctx := context.Background()
	intent, err := gw.CreateIntent(ctx, library.IntentRequest{Amount: 500, Currency: "usd", ReceiptEmail: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, &library.PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret_x",
		Amount:       500,
		Currency:     "usd",
		Status:       "requires_payment_method",
	}, intent)

	require.NotNil(t, fake.got)
	assert.Equal(t, int64(500), *fake.got.Amount)
	assert.Equal(t, "usd", *fake.got.Currency)
	assert.Equal(t, []*string{stripe.String("card")}, fake.got.PaymentMethodTypes)
	assert.Equal(t, "a@example.com", *fake.got.ReceiptEmail)
	assert.Equal(t, ctx, fake.got.Context)
}

func TestCreateIntentWithoutReceipt(t *testing.T) {
	params := intentParams(context.Background(), library.IntentRequest{Amount: 1, Currency: "eur"})
	assert.Nil(t, params.ReceiptEmail)
}

func TestCreateIntentKeepsStripeError(t *testing.T) {
	declined := &stripe.Error{Msg: "Your card was declined.", Code: stripe.ErrorCodeCardDeclined, HTTPStatusCode: 402}
	gw := &Stripe{intents: &fakeIntents{err: declined}}

	_, err := gw.CreateIntent(context.Background(), library.IntentRequest{Amount: 1, Currency: "usd"})
	var serr *stripe.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, stripe.ErrorCodeCardDeclined, serr.Code)
	assert.Equal(t, 402, serr.HTTPStatusCode)
	assert.Equal(t, "Your card was declined.", gw.DescribeError(err))

	plain := errors.New("dial tcp: timeout")
	gw = &Stripe{intents: &fakeIntents{err: plain}}
	_, err = gw.CreateIntent(context.Background(), library.IntentRequest{Amount: 1, Currency: "usd"})
	assert.Same(t, plain, err)
	assert.Empty(t, gw.DescribeError(err))
}

func TestPaymentServiceWrapsStripeError(t *testing.T) {
	declined := &stripe.Error{Msg: "Your card was declined.", Code: stripe.ErrorCodeCardDeclined, HTTPStatusCode: 402}
	svc := library.NewPaymentService(nil, &Stripe{intents: &fakeIntents{err: declined}}, logrus.New())

	_, err := svc.CreatePaymentIntent(context.Background(), library.PaymentInfoRequest{Amount: 100, Currency: "usd"})
	require.ErrorIs(t, err, library.ErrUpstream)
	assert.ErrorIs(t, err, declined)
	var serr *stripe.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, stripe.ErrorCodeCardDeclined, serr.Code)
	assert.Equal(t, "Your card was declined.", err.Error())
}

func TestNewStripe(t *testing.T) {
	gw := NewStripe("sk_test_123")
	require.NotNil(t, gw.intents)
}
