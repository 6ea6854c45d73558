package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summercamp/camp-backend/internal/model"
)

const userColumns = `id, email, name, photo_url, role, created_at, updated_at`

// UserRepository is the role directory: one row and one role per email.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhotoURL, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	u.Role = model.ParseRole(role)
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetRoleByEmail returns the stored role for email, or RoleNone when the user is unknown.
func (r *UserRepository) GetRoleByEmail(ctx context.Context, email string) (model.Role, error) {
	var role string
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT role FROM users WHERE email = $1`, email).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RoleNone, nil
		}
		return model.RoleNone, err
	}
	return model.ParseRole(role), nil
}

// List retrieves all users, oldest first.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

// ListByRole retrieves up to limit users with the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role model.Role, limit int) ([]model.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at LIMIT $2`, role, limit)
}

func (r *UserRepository) query(ctx context.Context, sql string, args ...any) ([]model.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user. A second insert for the same email returns ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleNone
	}
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (email, name, photo_url, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PhotoURL, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

// SetRole changes the role of the user with the given ID.
func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING `+userColumns, role, id))
}

// SetRoleByEmail changes the role of the user with the given email, creating it if absent.
func (r *UserRepository) SetRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (email, role) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = CURRENT_TIMESTAMP
		 RETURNING `+userColumns, email, role))
}
