package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summercamp/camp-backend/internal/model"
)

// PaymentRepository handles the append-only payment ledger.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentSelect = `SELECT p.id, p.email, p.transaction_id, p.cart_item_id, p.class_id,
	COALESCE(c.name, ''), p.amount, p.created_at
	FROM payments p
	LEFT JOIN classes c ON c.id = p.class_id`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(&p.ID, &p.Email, &p.TransactionID, &p.CartItemID, &p.ClassID, &p.ClassName, &p.Amount, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetByTransactionID retrieves the payment that consumed a gateway transaction.
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	return scanPayment(conn(ctx, r.pool).QueryRow(ctx, paymentSelect+` WHERE p.transaction_id = $1`, transactionID))
}

// ExistsForClass reports whether email already paid for classID.
func (r *PaymentRepository) ExistsForClass(ctx context.Context, email string, classID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE email = $1 AND class_id = $2)`, email, classID,
	).Scan(&exists)
	return exists, err
}

// Create appends a payment. A reused transaction ID returns ErrDuplicate.
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO payments (email, transaction_id, cart_item_id, class_id, amount)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		p.Email, p.TransactionID, p.CartItemID, p.ClassID, p.Amount,
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err)
}

// ListByEmail retrieves the payment history of one user, newest first.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]model.Payment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, paymentSelect+` WHERE p.email = $1 ORDER BY p.created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
