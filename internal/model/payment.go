package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Payment is the append-only record of a consumed gateway transaction.
type Payment struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	TransactionID string    `json:"transaction_id"`
	CartItemID    uuid.UUID `json:"cart_item_id"`
	ClassID       uuid.UUID `json:"class_id"`
	ClassName     string    `json:"class_name,omitempty"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreatePaymentRequest is the payload for POST /payments.
type CreatePaymentRequest struct {
	TransactionID string      `json:"transaction_id" binding:"required,min=1,max=255"`
	CartItemID    string      `json:"cart_item_id" binding:"required,uuid"`
	Price         json.Number `json:"price" binding:"required,decimal"`
	Email         string      `json:"email" binding:"omitempty,email"`
}

// CreatePaymentIntentRequest is the payload for POST /create-payment-intent.
type CreatePaymentIntentRequest struct {
	Price json.Number `json:"price" binding:"required,decimal"`
}

// Enrollment is the combined outcome of a completed payment.
type Enrollment struct {
	Payment         Payment   `json:"payment"`
	DeletedCartItem uuid.UUID `json:"deleted_cart_item_id"`
	Class           Class     `json:"class"`
}
