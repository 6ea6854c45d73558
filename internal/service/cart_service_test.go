package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository/memory"
	"github.com/summercamp/camp-backend/internal/service"
)

func newCartService() (*service.CartService, *memory.Store) {
	store := memory.New()
	return service.NewCartService(store.Carts(), store.Classes(), store.Payments(), nop), store
}

func TestCartAddListRemove(t *testing.T) {
	svc, store := newCartService()
	ctx := context.Background()
	class := seedClass(t, store, model.ClassStatusApproved, 5)

	item, err := svc.Add(ctx, "Sam@Example.com", class.ID)
	require.NoError(t, err)
	assert.Equal(t, student, item.Email)
	assert.Equal(t, class.Name, item.Name)
	assert.Equal(t, 49.99, item.Price)

	items, err := svc.List(ctx, student)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)

	err = svc.Remove(ctx, "someone@example.com", item.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, svc.Remove(ctx, student, item.ID))
	assert.ErrorIs(t, svc.Remove(ctx, student, item.ID), service.ErrNotFound)
}

func TestCartRejectsDuplicatesAndUnapproved(t *testing.T) {
	svc, store := newCartService()
	ctx := context.Background()
	approved := seedClass(t, store, model.ClassStatusApproved, 5)
	pending := seedClass(t, store, model.ClassStatusPending, 5)

	_, err := svc.Add(ctx, student, approved.ID)
	require.NoError(t, err)

	_, err = svc.Add(ctx, student, approved.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyInCart)

	_, err = svc.Add(ctx, student, pending.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Add(ctx, student, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCartRejectsPaidClass(t *testing.T) {
	svc, store := newCartService()
	ctx := context.Background()
	class := seedClass(t, store, model.ClassStatusApproved, 5)
	require.NoError(t, store.Payments().Create(ctx, &model.Payment{
		Email: student, TransactionID: "pi_old", ClassID: class.ID, Amount: 49.99,
	}))

	_, err := svc.Add(ctx, student, class.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyEnrolled)
}

func TestCartListWithoutEmail(t *testing.T) {
	svc, _ := newCartService()
	items, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
