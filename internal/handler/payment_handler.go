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

// PaymentHandler serves payment intents, payment completion and history.
type PaymentHandler struct {
	paymentService    *service.PaymentService
	enrollmentService *service.EnrollmentService
	log               zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	paymentService *service.PaymentService,
	enrollmentService *service.EnrollmentService,
	log zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:    paymentService,
		enrollmentService: enrollmentService,
		log:               log.With().Str("component", "payment_handler").Logger(),
	}
}

// CreatePaymentIntent godoc
// POST /create-payment-intent
// Requests a payment intent from the gateway and returns its client secret.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req model.CreatePaymentIntentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), middleware.IdentityEmail(c), req.Price.String())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"amount":       intent.Amount,
		"currency":     intent.Currency,
	})
}

// CompletePayment godoc
// POST /payments
// Records a completed payment and enrolls the caller in the paid class.
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	email := middleware.IdentityEmail(c)
	if req.Email != "" && service.NormalizeEmail(req.Email) != email {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	cartItemID, err := uuid.Parse(req.CartItemID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), service.EnrollInput{
		Email:         email,
		TransactionID: req.TransactionID,
		CartItemID:    cartItemID,
		Amount:        req.Price.String(),
	})
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, enrollment)
}

// ListPayments godoc
// GET /payments?email=
// Lists the caller's payments, newest first. No email yields an empty list.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.History(c.Request.Context(), c.Query("email"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}
