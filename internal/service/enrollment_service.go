package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
)

// EnrollmentService turns a confirmed gateway payment into an enrollment.
// Recording the payment, emptying the cart slot and taking the seat happen
// in one transaction; the transaction ID makes the operation idempotent.
type EnrollmentService struct {
	tx       TxRunner
	payments PaymentStore
	carts    CartStore
	classes  ClassStore
	cache    CatalogCache
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	tx TxRunner,
	payments PaymentStore,
	carts CartStore,
	classes ClassStore,
	cache CatalogCache,
	m *metrics.Metrics,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		tx:       tx,
		payments: payments,
		carts:    carts,
		classes:  classes,
		cache:    cache,
		metrics:  m,
		log:      log.With().Str("component", "enrollment_service").Logger(),
	}
}

// EnrollInput is a completed gateway payment for one cart item.
type EnrollInput struct {
	Email         string
	TransactionID string
	CartItemID    uuid.UUID
	Amount        string
}

// Enroll records the payment, removes the cart item and takes one seat of
// its class. A transaction ID that was already consumed returns
// ErrAlreadyProcessed without writing anything. Any failure rolls back
// every step.
func (s *EnrollmentService) Enroll(ctx context.Context, in EnrollInput) (*model.Enrollment, error) {
	email := NormalizeEmail(in.Email)
	if in.TransactionID == "" {
		return nil, invalidField("transaction_id", "transaction_id is required")
	}
	amount, err := ParsePrice(in.Amount)
	if err != nil {
		return nil, err
	}

	var out model.Enrollment
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.payments.GetByTransactionID(ctx, in.TransactionID); err == nil {
			return ErrAlreadyProcessed
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup transaction: %w", err)
		}

		item, err := s.carts.GetByID(ctx, in.CartItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get cart item: %w", err)
		}
		if item.Email != email {
			return ErrForbidden
		}

		p := &model.Payment{
			Email:         email,
			TransactionID: in.TransactionID,
			CartItemID:    item.ID,
			ClassID:       item.ClassID,
			ClassName:     item.Name,
			Amount:        amount,
		}
		if err := s.payments.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyProcessed
			}
			return fmt.Errorf("record payment: %w", err)
		}

		if err := s.carts.Delete(ctx, item.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete cart item: %w", err)
		}

		class, err := reserveSeat(ctx, s.classes, item.ClassID)
		if err != nil {
			return err
		}

		out = model.Enrollment{Payment: *p, DeletedCartItem: item.ID, Class: *class}
		return nil
	})

	s.metrics.ObserveEnrollment(enrollmentResult(err))
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			s.log.Info().Str("transaction_id", in.TransactionID).Msg("duplicate payment ignored")
		}
		return nil, err
	}

	s.log.Info().
		Str("email", email).
		Str("transaction_id", in.TransactionID).
		Str("class_id", out.Class.ID.String()).
		Int("available_seats", out.Class.AvailableSeats).
		Msg("enrollment completed")

	invalidateCatalog(ctx, s.cache, s.log)
	return &out, nil
}

func enrollmentResult(err error) string {
	switch {
	case err == nil:
		return metrics.EnrollmentEnrolled
	case errors.Is(err, ErrAlreadyProcessed):
		return metrics.EnrollmentDuplicate
	case errors.Is(err, ErrClassFull):
		return metrics.EnrollmentFull
	case errors.Is(err, ErrNotFound):
		return metrics.EnrollmentNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrValidation):
		return metrics.EnrollmentRejected
	default:
		return metrics.EnrollmentError
	}
}
