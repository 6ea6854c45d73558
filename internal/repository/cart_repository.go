package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summercamp/camp-backend/internal/model"
)

// CartRepository handles per-user cart data access.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

const cartSelect = `SELECT ci.id, ci.email, ci.class_id, c.name, c.image, c.instructor_name, c.price, ci.created_at
	FROM carts ci
	JOIN classes c ON c.id = ci.class_id`

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	it := &model.CartItem{}
	err := row.Scan(&it.ID, &it.Email, &it.ClassID, &it.Name, &it.Image, &it.InstructorName, &it.Price, &it.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return it, nil
}

// GetByID retrieves a cart item with its class fields.
func (r *CartRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	return scanCartItem(conn(ctx, r.pool).QueryRow(ctx, cartSelect+` WHERE ci.id = $1`, id))
}

// ListByEmail retrieves the cart of one user, oldest selection first.
func (r *CartRepository) ListByEmail(ctx context.Context, email string) ([]model.CartItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, cartSelect+` WHERE ci.email = $1 ORDER BY ci.created_at`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// Create inserts a cart item. The same class twice in one cart returns ErrDuplicate.
func (r *CartRepository) Create(ctx context.Context, it *model.CartItem) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO carts (email, class_id) VALUES ($1, $2)
		 RETURNING id, created_at`,
		it.Email, it.ClassID,
	).Scan(&it.ID, &it.CreatedAt)
	return translate(err)
}

// Delete removes a cart item by its ID. It returns ErrNotFound when nothing was deleted.
func (r *CartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
