package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/gateway"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
)

// PaymentService creates gateway payment intents and serves payment history.
type PaymentService struct {
	gateway  gateway.Gateway
	payments PaymentStore
	currency string
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewPaymentService creates a new PaymentService charging in currency.
func NewPaymentService(gw gateway.Gateway, payments PaymentStore, currency string, m *metrics.Metrics, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		gateway:  gw,
		payments: payments,
		currency: currency,
		metrics:  m,
		log:      log.With().Str("component", "payment_service").Logger(),
	}
}

// CreateIntent asks the gateway for a payment intent of price, given as a
// decimal string in major units. The gateway is called at most once.
func (s *PaymentService) CreateIntent(ctx context.Context, email, price string) (*gateway.Intent, error) {
	amount, err := ToMinorUnits(price)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, invalidField("price", "price must be greater than zero")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, amount, s.currency)
	s.metrics.ObservePaymentIntent(err == nil)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Int64("amount", amount).Msg("payment intent failed")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.log.Info().Str("email", email).Int64("amount", amount).Str("intent_id", intent.ID).Msg("payment intent created")
	return intent, nil
}

// History returns the payments of email, newest first. An empty email yields
// an empty history.
func (s *PaymentService) History(ctx context.Context, email string) ([]model.Payment, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return []model.Payment{}, nil
	}
	return s.payments.ListByEmail(ctx, email)
}
