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

// InstructorsShown is the number of instructors on the public instructors page.
const InstructorsShown = 6

// UserService is the role directory: it registers users and answers role queries.
type UserService struct {
	users UserStore
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates the user on first sign-in. An existing user is returned
// unchanged with created == false.
func (s *UserService) Register(ctx context.Context, req model.RegisterUserRequest) (*model.User, bool, error) {
	email := NormalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	u := &model.User{
		Email:    email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Role:     model.RoleNone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent sign-in for the same email.
			existing, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, fmt.Errorf("lookup user after conflict: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("email", email).Msg("user registered")
	return u, true, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Instructors returns the instructors shown on the public page.
func (s *UserService) Instructors(ctx context.Context) ([]model.User, error) {
	return s.users.ListByRole(ctx, model.RoleInstructor, InstructorsShown)
}

// RoleOf returns the current role of email. Unknown users have RoleNone.
// It always reads the store so role changes apply to the very next request.
func (s *UserService) RoleOf(ctx context.Context, email string) (model.Role, error) {
	return s.users.GetRoleByEmail(ctx, NormalizeEmail(email))
}

// HasRole reports whether email currently holds exactly role.
func (s *UserService) HasRole(ctx context.Context, email string, role model.Role) (bool, error) {
	current, err := s.RoleOf(ctx, email)
	if err != nil {
		return false, err
	}
	return current == role, nil
}

// SetRole changes the role of the user with the given ID.
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, invalidField("role", "unknown role")
	}

	u, err := s.users.SetRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set role: %w", err)
	}

	s.log.Info().Str("user_id", id.String()).Str("role", string(role)).Msg("role changed")
	return u, nil
}

// GrantByEmail sets the role of email, registering the user if needed.
// Used by the bootstrap CLI to create the first admin.
func (s *UserService) GrantByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, invalidField("email", "email is required")
	}
	if !role.Valid() {
		return nil, invalidField("role", "unknown role")
	}
	return s.users.SetRoleByEmail(ctx, email, role)
}
