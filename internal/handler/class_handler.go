package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/middleware"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/response"
	"github.com/summercamp/camp-backend/internal/service"
	"github.com/summercamp/camp-backend/internal/validator"
)

// ClassHandler serves the catalog: public listings, instructor authoring and
// admin moderation.
type ClassHandler struct {
	classService *service.ClassService
	log          zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		log:          log.With().Str("component", "class_handler").Logger(),
	}
}

// ListApproved godoc
// GET /classes
// Lists approved classes.
func (h *ClassHandler) ListApproved(c *gin.Context) {
	h.listing(c, service.ListingApproved)
}

// ListPopular godoc
// GET /popularClasses
// Lists the six approved classes with the most students.
func (h *ClassHandler) ListPopular(c *gin.Context) {
	h.listing(c, service.ListingPopular)
}

// ListLatest godoc
// GET /latestClasses
// Lists the six most recently created approved classes.
func (h *ClassHandler) ListLatest(c *gin.Context) {
	h.listing(c, service.ListingLatest)
}

func (h *ClassHandler) listing(c *gin.Context, name string) {
	classes, err := h.classService.Listing(c.Request.Context(), name)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// ListAll godoc
// GET /pendingClasses
// Lists every class regardless of status for moderation.
func (h *ClassHandler) ListAll(c *gin.Context) {
	classes, err := h.classService.ListAll(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// ListMine godoc
// GET /myClasses?email=
// Lists the classes owned by an instructor. No email yields an empty list.
func (h *ClassHandler) ListMine(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Success(c, http.StatusOK, gin.H{"classes": []model.Class{}})
		return
	}

	classes, err := h.classService.ListByInstructor(c.Request.Context(), email)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClass godoc
// POST /add-class
// Creates a pending class owned by the caller.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), middleware.IdentityEmail(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// ApproveClass godoc
// PATCH /class/approved/:id
// Moves a pending class to approved.
func (h *ClassHandler) ApproveClass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.Approve(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DenyClass godoc
// PATCH /class/deny/:id
// Moves a pending class to denied.
func (h *ClassHandler) DenyClass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.Deny(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// UpdateClass godoc
// PATCH /updateClasses/:id
// Updates price and available seats of a class the caller owns.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, _ := middleware.IdentityRole(c)
	class, err := h.classService.UpdatePriceAndSeats(c.Request.Context(), middleware.IdentityEmail(c), role, id, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// AdjustSeats godoc
// PATCH /all-classes/seats/:id
// Takes one seat and adds one student, refusing when the class is full.
func (h *ClassHandler) AdjustSeats(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.AdjustSeats(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}
