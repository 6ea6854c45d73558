package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summercamp/camp-backend/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		want     any
		wantErr  error
		anyError bool
	}{
		{
			name: "stripe charges any currency",
			cfg:  config.Config{PaymentProvider: config.PaymentProviderStripe, PaymentSecretKey: "sk_test", PaymentCurrency: "usd"},
			want: &Stripe{},
		},
		{
			name: "midtrans charges rupiah",
			cfg:  config.Config{PaymentProvider: config.PaymentProviderMidtrans, PaymentSecretKey: "SB-Mid-server", PaymentCurrency: "idr"},
			want: &Midtrans{},
		},
		{
			name:    "midtrans rejects dollars",
			cfg:     config.Config{PaymentProvider: config.PaymentProviderMidtrans, PaymentSecretKey: "SB-Mid-server", PaymentCurrency: "usd"},
			wantErr: ErrUnsupportedCurrency,
		},
		{
			name:    "missing key",
			cfg:     config.Config{PaymentProvider: config.PaymentProviderStripe, PaymentCurrency: "usd"},
			wantErr: ErrMissingKey,
		},
		{
			name:     "unknown provider",
			cfg:      config.Config{PaymentProvider: "paypal", PaymentSecretKey: "key", PaymentCurrency: "usd"},
			anyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := New(&tt.cfg)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, gw)
			case tt.anyError:
				assert.Error(t, err)
				assert.Nil(t, gw)
			default:
				require.NoError(t, err)
				assert.IsType(t, tt.want, gw)
			}
		})
	}
}

func TestMidtransGrossAmount(t *testing.T) {
	gross, err := midtransGrossAmount(15_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), gross)

	gross, err = midtransGrossAmount(100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gross)

	for _, amount := range []int64{0, 50, 99, 12_345} {
		_, err := midtransGrossAmount(amount)
		assert.ErrorIs(t, err, ErrUnsupportedAmount, amount)
	}
}

func TestMidtransRejectsForeignCurrency(t *testing.T) {
	m := NewMidtrans("SB-Mid-server", false)

	_, err := m.CreatePaymentIntent(context.Background(), 5_000, "usd")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = m.CreatePaymentIntent(context.Background(), 12_345, MidtransCurrency)
	assert.ErrorIs(t, err, ErrUnsupportedAmount)
}
