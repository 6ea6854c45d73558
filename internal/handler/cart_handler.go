package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/middleware"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/response"
	"github.com/summercamp/camp-backend/internal/service"
	"github.com/summercamp/camp-backend/internal/validator"
)

// CartHandler serves the caller's cart.
type CartHandler struct {
	cartService *service.CartService
	log         zerolog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *service.CartService, log zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log.With().Str("component", "cart_handler").Logger(),
	}
}

// ListCart godoc
// GET /carts?email=
// Lists the cart of the caller. No email yields an empty list.
func (h *CartHandler) ListCart(c *gin.Context) {
	items, err := h.cartService.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// AddToCart godoc
// POST /carts
// Adds an approved class to the caller's cart.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req model.AddCartItemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	email := middleware.IdentityEmail(c)
	if req.Email != "" && service.NormalizeEmail(req.Email) != email {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	item, err := h.cartService.Add(c.Request.Context(), email, classID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

// RemoveFromCart godoc
// DELETE /carts/:id
// Removes an item from the caller's cart.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), middleware.IdentityEmail(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted_id": id})
}
