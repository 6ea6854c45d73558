package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/response"
	"github.com/summercamp/camp-backend/internal/service"
	"github.com/summercamp/camp-backend/internal/validator"
)

// AuthHandler issues credentials.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// IssueToken godoc
// POST /jwt
// Signs a credential for the given email. Identity proof happens at the
// client's identity provider before this call.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req model.TokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, expiresAt, err := h.authService.GenerateToken(req.Email)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
