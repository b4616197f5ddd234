package library

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error) {
	args := m.Called(ctx, req)
	if intent, ok := args.Get(0).(*PaymentIntent); ok {
		return intent, args.Error(1)
	}
	return nil, args.Error(1)
}

func newPaymentService(t *testing.T, gw PaymentGateway) (*PaymentService, *Database) {
	t.Helper()
	db := tempDB(t)
	return NewPaymentService(db, gw, logrus.New()), db
}

func TestCreatePaymentIntent(t *testing.T) {
	gw := new(mockGateway)
	svc, _ := newPaymentService(t, gw)

	want := &PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret", Amount: 350, Currency: "usd", Status: "requires_payment_method"}
	gw.On("CreateIntent", mock.Anything, IntentRequest{Amount: 350, Currency: "usd", ReceiptEmail: alice}).Return(want, nil).Once()

	got, err := svc.CreatePaymentIntent(context.Background(), PaymentInfoRequest{Amount: 350, Currency: "USD", ReceiptEmail: alice})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	gw.AssertExpectations(t)
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	gw := new(mockGateway)
	svc, _ := newPaymentService(t, gw)
	declined := errors.New("card_declined")
	gw.On("CreateIntent", mock.Anything, mock.Anything).Return(nil, declined).Once()

	_, err := svc.CreatePaymentIntent(context.Background(), PaymentInfoRequest{Amount: 100, Currency: "usd"})
	require.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, declined)
	assert.Equal(t, "card_declined", err.Error())
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	gw := new(mockGateway)
	svc, _ := newPaymentService(t, gw)

	_, err := svc.CreatePaymentIntent(context.Background(), PaymentInfoRequest{Amount: 0, Currency: "usd"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.CreatePaymentIntent(context.Background(), PaymentInfoRequest{Amount: 10})
	assert.ErrorIs(t, err, ErrInvalid)
	gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestCreatePaymentIntentWithoutGateway(t *testing.T) {
	svc, _ := newPaymentService(t, nil)
	_, err := svc.CreatePaymentIntent(context.Background(), PaymentInfoRequest{Amount: 10, Currency: "usd"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestStripePayment(t *testing.T) {
	svc, db := newPaymentService(t, nil)
	ctx := context.Background()
	_, err := db.InsertPayment(ctx, &Payment{UserEmail: alice, Amount: 12})
	require.NoError(t, err)

	require.NoError(t, svc.StripePayment(ctx, alice))

	p, err := svc.FindPayment(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, p.Amount)
}

func TestStripePaymentMissing(t *testing.T) {
	svc, _ := newPaymentService(t, nil)

	err := svc.StripePayment(context.Background(), alice)
	require.ErrorIs(t, err, ErrMissingPaymentInfo)
	assert.Equal(t, "Payment information is missing", err.Error())

	_, err = svc.FindPayment(context.Background(), alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettledFeesUnblockCheckout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.addBook(t, "After Paying", 1, 1)
	_, err := env.db.InsertPayment(ctx, &Payment{UserEmail: alice, Amount: 2})
	require.NoError(t, err)

	_, err = env.mgr.Books.CheckoutBook(ctx, alice, b.ID)
	require.ErrorIs(t, err, ErrNotAvailable)

	require.NoError(t, env.mgr.Payments.StripePayment(ctx, alice))
	_, err = env.mgr.Books.CheckoutBook(ctx, alice, b.ID)
	assert.NoError(t, err)
}
