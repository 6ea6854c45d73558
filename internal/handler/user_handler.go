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

// UserHandler serves registration and the role directory.
type UserHandler struct {
	userService *service.UserService
	log         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.With().Str("component", "user_handler").Logger(),
	}
}

// ListUsers godoc
// GET /users
// Lists every registered user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// RegisterUser godoc
// POST /users
// Records a user on first sign-in. Repeated calls return the existing user with 200.
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req model.RegisterUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, created, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"user": user, "created": created})
}

// ListInstructors godoc
// GET /instructors
// Lists the instructors shown on the public page.
func (h *UserHandler) ListInstructors(c *gin.Context) {
	users, err := h.userService.Instructors(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instructors": users})
}

// MakeAdmin godoc
// PATCH /users/admin/:id
// Grants the admin role.
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	h.setRole(c, model.RoleAdmin)
}

// MakeInstructor godoc
// PATCH /users/instructor/:id
// Grants the instructor role.
func (h *UserHandler) MakeInstructor(c *gin.Context) {
	h.setRole(c, model.RoleInstructor)
}

func (h *UserHandler) setRole(c *gin.Context, role model.Role) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), id, role)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	h.log.Info().
		Str("by", middleware.IdentityEmail(c)).
		Str("user_id", id.String()).
		Str("role", string(role)).
		Msg("role granted")
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// IsAdmin godoc
// GET /users/admin/:email
// Reports whether the caller is an admin. Asking about anyone else yields false.
func (h *UserHandler) IsAdmin(c *gin.Context) {
	h.hasRole(c, model.RoleAdmin, "admin")
}

// IsInstructor godoc
// GET /users/instructor/:email
// Reports whether the caller is an instructor. Asking about anyone else yields false.
func (h *UserHandler) IsInstructor(c *gin.Context) {
	h.hasRole(c, model.RoleInstructor, "instructor")
}

func (h *UserHandler) hasRole(c *gin.Context, role model.Role, key string) {
	if service.NormalizeEmail(c.Param("email")) != middleware.IdentityEmail(c) {
		response.Success(c, http.StatusOK, gin.H{key: false})
		return
	}

	ok, err := h.userService.HasRole(c.Request.Context(), middleware.IdentityEmail(c), role)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{key: ok})
}
