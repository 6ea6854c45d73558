// Package gateway creates payment intents with an external payment provider.
package gateway

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/summercamp/camp-backend/internal/config"
)

var (
	// ErrMissingKey is returned by New when no provider secret is configured.
	ErrMissingKey = errors.New("payment secret key is not configured")
	// ErrUnsupportedCurrency is returned when a provider cannot charge in the
	// requested currency.
	ErrUnsupportedCurrency = errors.New("currency is not supported by the payment provider")
	// ErrUnsupportedAmount is returned when an amount cannot be charged exactly.
	ErrUnsupportedAmount = errors.New("amount cannot be charged by the payment provider")
)

// Intent is a provider-side payment intent. ClientSecret is handed to the
// client verbatim to complete the payment.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Gateway creates payment intents. amount is in minor units.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
}

// New builds the gateway selected by cfg.PaymentProvider.
func New(cfg *config.Config) (Gateway, error) {
	if cfg.PaymentSecretKey == "" {
		return nil, ErrMissingKey
	}

	switch cfg.PaymentProvider {
	case config.PaymentProviderStripe:
		return NewStripe(cfg.PaymentSecretKey), nil
	case config.PaymentProviderMidtrans:
		if cfg.PaymentCurrency != MidtransCurrency {
			return nil, fmt.Errorf("%w: midtrans charges %s, got %q", ErrUnsupportedCurrency, MidtransCurrency, cfg.PaymentCurrency)
		}
		return NewMidtrans(cfg.PaymentSecretKey, cfg.MidtransProduction), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}
}
