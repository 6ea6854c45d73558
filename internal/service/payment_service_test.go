package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summercamp/camp-backend/internal/gateway"
	"github.com/summercamp/camp-backend/internal/gateway/mocks"
	"github.com/summercamp/camp-backend/internal/repository/memory"
	"github.com/summercamp/camp-backend/internal/service"
	"go.uber.org/mock/gomock"
)

func TestCreateIntentConvertsToMinorUnits(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	m := newMetrics()
	svc := service.NewPaymentService(gw, memory.New().Payments(), "usd", m, nop)

	gw.EXPECT().
		CreatePaymentIntent(gomock.Any(), int64(4999), "usd").
		Return(&gateway.Intent{ID: "pi_1", ClientSecret: "pi_1_secret_abc", Amount: 4999, Currency: "usd"}, nil).
		Times(1)

	intent, err := svc.CreateIntent(context.Background(), student, "49.99")
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_abc", intent.ClientSecret)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentIntents.WithLabelValues("ok")))
}

func TestCreateIntentGatewayFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	m := newMetrics()
	svc := service.NewPaymentService(gw, memory.New().Payments(), "usd", m, nop)

	gw.EXPECT().
		CreatePaymentIntent(gomock.Any(), int64(1000), "usd").
		Return(nil, errors.New("card_declined")).
		Times(1)

	_, err := svc.CreateIntent(context.Background(), student, "10")
	assert.ErrorIs(t, err, service.ErrGateway)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentIntents.WithLabelValues("error")))
}

func TestCreateIntentRejectsBadPriceWithoutCallingGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	svc := service.NewPaymentService(gw, memory.New().Payments(), "usd", nil, nop)

	for _, price := range []string{"0", "0.001", "-5", "ten"} {
		_, err := svc.CreateIntent(context.Background(), student, price)
		assert.ErrorIs(t, err, service.ErrValidation, price)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := memory.New()
	svc := service.NewPaymentService(nil, store.Payments(), "usd", nil, nop)
	ctx := context.Background()

	history, err := svc.History(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, history)

	class := seedClass(t, store, "approved", 5)
	item := seedCartItem(t, store, student, class)
	enroll := service.NewEnrollmentService(store, store.Payments(), store.Carts(), store.Classes(), nil, nil, nop)
	_, err = enroll.Enroll(ctx, service.EnrollInput{Email: student, TransactionID: "pi_a", CartItemID: item.ID, Amount: "49.99"})
	require.NoError(t, err)

	other := seedClass(t, store, "approved", 5)
	item2 := seedCartItem(t, store, student, other)
	_, err = enroll.Enroll(ctx, service.EnrollInput{Email: student, TransactionID: "pi_b", CartItemID: item2.ID, Amount: "49.99"})
	require.NoError(t, err)

	history, err = svc.History(ctx, student)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "pi_b", history[0].TransactionID)
	assert.Equal(t, class.Name, history[1].ClassName)
}
