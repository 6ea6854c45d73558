package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository/memory"
	"github.com/summercamp/camp-backend/internal/service"
)

const student = "sam@example.com"

type EnrollmentSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	cache   *fakeCache
	metrics *metrics.Metrics
	svc     *service.EnrollmentService
}

func TestEnrollmentSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentSuite))
}

func (s *EnrollmentSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.cache = newFakeCache()
	s.metrics = newMetrics()
	s.svc = service.NewEnrollmentService(
		s.store,
		s.store.Payments(),
		s.store.Carts(),
		s.store.Classes(),
		s.cache,
		s.metrics,
		nop,
	)
}

func (s *EnrollmentSuite) enroll(txID string, item *model.CartItem) (*model.Enrollment, error) {
	return s.svc.Enroll(s.ctx, service.EnrollInput{
		Email:         student,
		TransactionID: txID,
		CartItemID:    item.ID,
		Amount:        "49.99",
	})
}

func (s *EnrollmentSuite) class(id uuid.UUID) *model.Class {
	c, err := s.store.Classes().GetByID(s.ctx, id)
	s.Require().NoError(err)
	return c
}

func (s *EnrollmentSuite) TestEnrollRecordsPaymentAndTakesSeat() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 10)
	item := seedCartItem(s.T(), s.store, student, class)

	out, err := s.enroll("pi_1", item)
	s.Require().NoError(err)

	s.Equal(item.ID, out.DeletedCartItem)
	s.Equal("pi_1", out.Payment.TransactionID)
	s.Equal(49.99, out.Payment.Amount)
	s.Equal(class.ID, out.Payment.ClassID)
	s.Equal(9, out.Class.AvailableSeats)
	s.Equal(1, out.Class.Students)

	s.Equal(1, s.store.PaymentCount())
	s.Equal(0, s.store.CartCount())
	s.Equal(9, s.class(class.ID).AvailableSeats)
	s.Equal(1, s.cache.invalidations)
	s.Equal(1, s.cache.refreshes)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues(metrics.EnrollmentEnrolled)))
}

func (s *EnrollmentSuite) TestDuplicateTransactionIsRejectedWithoutWrites() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 10)
	item := seedCartItem(s.T(), s.store, student, class)

	_, err := s.enroll("pi_dup", item)
	s.Require().NoError(err)

	_, err = s.enroll("pi_dup", item)
	s.ErrorIs(err, service.ErrAlreadyProcessed)

	s.Equal(1, s.store.PaymentCount())
	c := s.class(class.ID)
	s.Equal(9, c.AvailableSeats)
	s.Equal(1, c.Students)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues(metrics.EnrollmentDuplicate)))
}

func (s *EnrollmentSuite) TestFullClassRollsBackEverything() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 0)
	item := seedCartItem(s.T(), s.store, student, class)

	_, err := s.enroll("pi_full", item)
	s.ErrorIs(err, service.ErrClassFull)

	s.Equal(0, s.store.PaymentCount())
	s.Equal(1, s.store.CartCount())
	c := s.class(class.ID)
	s.Equal(0, c.AvailableSeats)
	s.Equal(0, c.Students)
	s.Zero(s.cache.invalidations)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues(metrics.EnrollmentFull)))

	// The transaction ID was not consumed by the failed attempt.
	_, err = s.store.Payments().GetByTransactionID(s.ctx, "pi_full")
	s.Error(err)
}

func (s *EnrollmentSuite) TestStoreFailureAfterPaymentRollsBack() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 5)
	item := seedCartItem(s.T(), s.store, student, class)
	boom := errors.New("connection reset")
	s.store.Fail("classes.ReserveSeat", boom)

	_, err := s.enroll("pi_boom", item)
	s.ErrorIs(err, boom)
	s.NotErrorIs(err, service.ErrClassFull)

	s.Equal(0, s.store.PaymentCount())
	s.Equal(1, s.store.CartCount())
	s.Equal(5, s.class(class.ID).AvailableSeats)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues(metrics.EnrollmentError)))
}

func (s *EnrollmentSuite) TestMissingCartItem() {
	_, err := s.svc.Enroll(s.ctx, service.EnrollInput{
		Email:         student,
		TransactionID: "pi_missing",
		CartItemID:    uuid.New(),
		Amount:        "10",
	})
	s.ErrorIs(err, service.ErrNotFound)
	s.Equal(0, s.store.PaymentCount())
}

func (s *EnrollmentSuite) TestCartItemOfAnotherUser() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 5)
	item := seedCartItem(s.T(), s.store, "someone@example.com", class)

	_, err := s.enroll("pi_foreign", item)
	s.ErrorIs(err, service.ErrForbidden)
	s.Equal(1, s.store.CartCount())
	s.Equal(0, s.store.PaymentCount())
}

func (s *EnrollmentSuite) TestInvalidInput() {
	class := seedClass(s.T(), s.store, model.ClassStatusApproved, 5)
	item := seedCartItem(s.T(), s.store, student, class)

	_, err := s.enroll("", item)
	s.ErrorIs(err, service.ErrValidation)

	_, err = s.svc.Enroll(s.ctx, service.EnrollInput{
		Email: student, TransactionID: "pi_x", CartItemID: item.ID, Amount: "-3",
	})
	s.ErrorIs(err, service.ErrValidation)
	s.Equal(1, s.store.CartCount())
}

func TestEnrollConcurrentSeatsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := service.NewEnrollmentService(store, store.Payments(), store.Carts(), store.Classes(), nil, nil, nop)

	class := seedClass(t, store, model.ClassStatusApproved, 3)
	const buyers = 8
	items := make([]*model.CartItem, buyers)
	for i := range items {
		items[i] = seedCartItem(t, store, emailN(i), class)
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Enroll(ctx, service.EnrollInput{
				Email:         emailN(i),
				TransactionID: "pi_" + emailN(i),
				CartItemID:    items[i].ID,
				Amount:        "49.99",
			})
		}(i)
	}
	wg.Wait()

	var ok, full int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrClassFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, buyers-3, full)

	c, err := store.Classes().GetByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.AvailableSeats)
	assert.Equal(t, 3, c.Students)
	assert.Equal(t, 3, store.PaymentCount())
}

func emailN(i int) string {
	return "buyer" + string(rune('a'+i)) + "@example.com"
}
