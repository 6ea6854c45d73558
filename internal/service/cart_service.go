package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
)

// CartService manages per-user pending class selections.
type CartService struct {
	carts    CartStore
	classes  ClassStore
	payments PaymentStore
	log      zerolog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts CartStore, classes ClassStore, payments PaymentStore, log zerolog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		classes:  classes,
		payments: payments,
		log:      log.With().Str("component", "cart_service").Logger(),
	}
}

// List returns the cart of email. An empty email yields an empty cart.
func (s *CartService) List(ctx context.Context, email string) ([]model.CartItem, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return []model.CartItem{}, nil
	}
	return s.carts.ListByEmail(ctx, email)
}

// Add puts an approved class into the cart of email.
func (s *CartService) Add(ctx context.Context, email string, classID uuid.UUID) (*model.CartItem, error) {
	email = NormalizeEmail(email)

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class.Status != model.ClassStatusApproved {
		return nil, ErrNotFound
	}

	paid, err := s.payments.ExistsForClass(ctx, email, classID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if paid {
		return nil, ErrAlreadyEnrolled
	}

	it := &model.CartItem{
		Email:          email,
		ClassID:        class.ID,
		Name:           class.Name,
		Image:          class.Image,
		InstructorName: class.InstructorName,
		Price:          class.Price,
	}
	if err := s.carts.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInCart
		}
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	s.log.Debug().Str("email", email).Str("class_id", classID.String()).Msg("class added to cart")
	return it, nil
}

// Remove deletes a cart item owned by email.
func (s *CartService) Remove(ctx context.Context, email string, id uuid.UUID) error {
	it, err := s.carts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get cart item: %w", err)
	}
	if it.Email != NormalizeEmail(email) {
		return ErrForbidden
	}

	if err := s.carts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}
