package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/summercamp/camp-backend/internal/model"
)

// UserStore is the role directory persistence used by UserService.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetRoleByEmail(ctx context.Context, email string) (model.Role, error)
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role, limit int) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
	SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	SetRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error)
}

// ClassStore is the catalog persistence.
type ClassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	List(ctx context.Context, q model.ClassQuery) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ClassStatus) (*model.Class, error)
	UpdatePriceAndSeats(ctx context.Context, id uuid.UUID, price float64, seats int) (*model.Class, error)
	ReserveSeat(ctx context.Context, id uuid.UUID) (*model.Class, error)
}

// CartStore is the per-user cart persistence.
type CartStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error)
	ListByEmail(ctx context.Context, email string) ([]model.CartItem, error)
	Create(ctx context.Context, it *model.CartItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentStore is the append-only payment ledger.
type PaymentStore interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	ExistsForClass(ctx context.Context, email string, classID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *model.Payment) error
	ListByEmail(ctx context.Context, email string) ([]model.Payment, error)
}

// TxRunner runs fn atomically. Store calls made with the ctx passed to fn
// take part in the same transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogCache holds pre-rendered public class listings.
// A miss is reported as ok == false with a nil error. StoreListing writes
// only while the generation is still gen, so a listing read before an
// Invalidate is dropped instead of cached.
type CatalogCache interface {
	GetListing(ctx context.Context, name string) (classes []model.Class, ok bool, err error)
	Generation(ctx context.Context) (int64, error)
	StoreListing(ctx context.Context, name string, gen int64, classes []model.Class) (stored bool, err error)
	Invalidate(ctx context.Context) error
	RequestRefresh(ctx context.Context) error
}
