package library

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// PaymentGateway creates client-confirmable payment intents.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)
}

// ErrorDescriber is implemented by gateways whose errors carry a shorter
// caller-facing message than their Error text.
type ErrorDescriber interface {
	DescribeError(err error) string
}

// PaymentService settles overdue fees through the gateway.
type PaymentService struct {
	store   Store
	gateway PaymentGateway
	log     logrus.FieldLogger
}

func NewPaymentService(store Store, gateway PaymentGateway, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, log: log}
}

// CreatePaymentIntent asks the gateway for an intent the client confirms.
// Gateway failures come back as Upstream errors wrapping the gateway's error.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req PaymentInfoRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, newError(KindInvalid, "Payment amount must be positive")
	}
	if strings.TrimSpace(req.Currency) == "" {
		return nil, newError(KindInvalid, "Payment currency is required")
	}
	if s.gateway == nil {
		return nil, newError(KindUpstream, "Payment gateway is not configured")
	}

	intent, err := s.gateway.CreateIntent(ctx, IntentRequest{
		Amount:       req.Amount,
		Currency:     strings.ToLower(req.Currency),
		ReceiptEmail: req.ReceiptEmail,
	})
	if err != nil {
		uerr := &Error{Kind: KindUpstream, Err: err}
		if d, ok := s.gateway.(ErrorDescriber); ok {
			uerr.Msg = d.DescribeError(err)
		}
		return nil, uerr
	}
	return intent, nil
}

// StripePayment marks userEmail's fees as paid once the client-side charge
// has succeeded.
func (s *PaymentService) StripePayment(ctx context.Context, userEmail string) error {
	err := s.store.InTx(ctx, func(q Queries) error {
		payment, err := q.FindPayment(ctx, userEmail)
		if err != nil {
			return err
		}
		if payment == nil {
			return newError(KindMissingPaymentInfo, "Payment information is missing")
		}
		payment.Amount = 0
		return q.UpdatePayment(ctx, payment)
	})
	if err != nil {
		return err
	}
	s.log.WithField("user", userEmail).Info("fees settled")
	return nil
}

// FindPayment returns userEmail's fee balance or a NotFound error.
func (s *PaymentService) FindPayment(ctx context.Context, userEmail string) (*Payment, error) {
	p, err := s.store.FindPayment(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, newError(KindNotFound, "Payment not found")
	}
	return p, nil
}
