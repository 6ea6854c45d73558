package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransCurrency is the only currency Snap transactions are charged in.
const MidtransCurrency = "idr"

// Midtrans creates Snap transactions. The Snap token plays the role of the
// client secret.
type Midtrans struct {
	client snap.Client
}

// NewMidtrans creates a Midtrans gateway against sandbox or production.
func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	m := &Midtrans{}
	m.client.New(serverKey, env)
	return m
}

// CreatePaymentIntent opens a Snap transaction. Only rupiah are accepted and
// the amount must be a whole number of rupiah, since Snap takes gross amounts
// without a fractional part.
func (m *Midtrans) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if currency != MidtransCurrency {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	gross, err := midtransGrossAmount(amount)
	if err != nil {
		return nil, err
	}

	orderID := "camp-" + uuid.NewString()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}

	resp, merr := m.client.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans snap transaction: %w", merr)
	}

	return &Intent{
		ID:           orderID,
		ClientSecret: resp.Token,
		Amount:       amount,
		Currency:     currency,
	}, nil
}

// midtransGrossAmount converts minor units (sen) to whole rupiah.
func midtransGrossAmount(amount int64) (int64, error) {
	if amount < 100 || amount%100 != 0 {
		return 0, fmt.Errorf("%w: %d sen is not a whole, positive number of rupiah", ErrUnsupportedAmount, amount)
	}
	return amount / 100, nil
}
