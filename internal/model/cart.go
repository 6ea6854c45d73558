package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a pending, unpaid class selection owned by one user.
// The class fields are joined in for listing and are not stored on the row.
type CartItem struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	ClassID        uuid.UUID `json:"class_id"`
	Name           string    `json:"name,omitempty"`
	Image          string    `json:"image,omitempty"`
	InstructorName string    `json:"instructor_name,omitempty"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

// AddCartItemRequest is the payload for POST /carts. Email is optional and,
// when present, must match the authenticated identity.
type AddCartItemRequest struct {
	ClassID string `json:"class_id" binding:"required,uuid"`
	Email   string `json:"email" binding:"omitempty,email"`
}
