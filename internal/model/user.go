package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an entry of the role directory, keyed by email.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterUserRequest is sent by the client on first sign-in.
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	PhotoURL string `json:"photo_url" binding:"omitempty,url,max=1024"`
}

// TokenRequest is the payload for credential issuance.
type TokenRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
