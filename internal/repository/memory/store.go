// Package memory provides in-memory implementations of the service stores.
// They mirror the PostgreSQL repositories closely enough for unit tests,
// including unique constraints and transactional rollback.
//
// Writes made outside RunInTx wait for any running transaction to finish, so
// a rollback never discards them. Reads are not isolated and may observe a
// transaction's uncommitted writes.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
)

// Store holds every table. Use the accessor methods to get typed stores.
type Store struct {
	txMu sync.Mutex // held by RunInTx and by writes outside it
	mu   sync.Mutex

	users    map[uuid.UUID]model.User
	classes  map[uuid.UUID]model.Class
	carts    map[uuid.UUID]model.CartItem
	payments map[uuid.UUID]model.Payment

	clock  time.Time
	faults map[string]error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]model.User),
		classes:  make(map[uuid.UUID]model.Class),
		carts:    make(map[uuid.UUID]model.CartItem),
		payments: make(map[uuid.UUID]model.Payment),
		clock:    time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		faults:   make(map[string]error),
	}
}

// Users returns the user store.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Classes returns the class store.
func (s *Store) Classes() *ClassStore { return &ClassStore{s: s} }

// Carts returns the cart store.
func (s *Store) Carts() *CartStore { return &CartStore{s: s} }

// Payments returns the payment store.
func (s *Store) Payments() *PaymentStore { return &PaymentStore{s: s} }

// Fail makes the named operation (e.g. "classes.ReserveSeat") return err
// until cleared with a nil err.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

type txKey struct{}

// RunInTx runs fn and restores every table if it returns an error or panics.
// A call made from inside fn joins the running transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lockWrite blocks a write made outside a transaction until no transaction
// is running. The returned func releases it.
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

type snapshot struct {
	users    map[uuid.UUID]model.User
	classes  map[uuid.UUID]model.Class
	carts    map[uuid.UUID]model.CartItem
	payments map[uuid.UUID]model.Payment
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users:    cloneMap(s.users),
		classes:  cloneMap(s.classes),
		carts:    cloneMap(s.carts),
		payments: cloneMap(s.payments),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.classes = snap.classes
	s.carts = snap.carts
	s.payments = snap.payments
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// tick advances the fake clock so creation order is strict. Caller holds mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// fault returns the injected error for op. Caller holds mu.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

// ─── Users ─────────────────────────────────────────────────────────────

// UserStore is the in-memory role directory.
type UserStore struct{ s *Store }

func (u *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fault("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, usr := range u.s.users {
		if usr.Email == email {
			return &usr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &usr, nil
}

func (u *UserStore) GetRoleByEmail(ctx context.Context, email string) (model.Role, error) {
	u.s.mu.Lock()
	err := u.s.fault("users.GetRoleByEmail")
	u.s.mu.Unlock()
	if err != nil {
		return model.RoleNone, err
	}

	usr, err := u.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.RoleNone, nil
		}
		return model.RoleNone, err
	}
	return model.ParseRole(string(usr.Role)), nil
}

func (u *UserStore) List(_ context.Context) ([]model.User, error) {
	return u.filter(func(model.User) bool { return true }, 0), nil
}

func (u *UserStore) ListByRole(_ context.Context, role model.Role, limit int) ([]model.User, error) {
	return u.filter(func(usr model.User) bool { return usr.Role == role }, limit), nil
}

func (u *UserStore) filter(keep func(model.User) bool, limit int) []model.User {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	out := []model.User{}
	for _, usr := range u.s.users {
		if keep(usr) {
			out = append(out, usr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (u *UserStore) Create(ctx context.Context, usr *model.User) error {
	defer u.s.lockWrite(ctx)()
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == usr.Email {
			return repository.ErrDuplicate
		}
	}
	if usr.Role == "" {
		usr.Role = model.RoleNone
	}
	usr.ID = uuid.New()
	usr.CreatedAt = u.s.tick()
	usr.UpdatedAt = usr.CreatedAt
	u.s.users[usr.ID] = *usr
	return nil
}

func (u *UserStore) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	defer u.s.lockWrite(ctx)()
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	usr.Role = role
	usr.UpdatedAt = u.s.tick()
	u.s.users[id] = usr
	return &usr, nil
}

func (u *UserStore) SetRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	existing, err := u.GetByEmail(ctx, email)
	if err == nil {
		return u.SetRole(ctx, existing.ID, role)
	}
	usr := &model.User{Email: email, Role: role}
	if err := u.Create(ctx, usr); err != nil {
		return nil, err
	}
	return usr, nil
}

// ─── Classes ───────────────────────────────────────────────────────────

// ClassStore is the in-memory catalog.
type ClassStore struct{ s *Store }

func (c *ClassStore) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.fault("classes.GetByID"); err != nil {
		return nil, err
	}
	cl, ok := c.s.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cl, nil
}

func (c *ClassStore) List(_ context.Context, q model.ClassQuery) ([]model.Class, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.fault("classes.List"); err != nil {
		return nil, err
	}

	out := []model.Class{}
	for _, cl := range c.s.classes {
		if q.Status != "" && cl.Status != q.Status {
			continue
		}
		if q.InstructorEmail != "" && cl.InstructorEmail != q.InstructorEmail {
			continue
		}
		out = append(out, cl)
	}

	sort.Slice(out, func(i, j int) bool {
		switch q.Sort {
		case model.ClassSortMostStudents:
			if out[i].Students != out[j].Students {
				return out[i].Students > out[j].Students
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case model.ClassSortNewest:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (c *ClassStore) Create(ctx context.Context, cl *model.Class) error {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cl.ID = uuid.New()
	cl.CreatedAt = c.s.tick()
	cl.UpdatedAt = cl.CreatedAt
	c.s.classes[cl.ID] = *cl
	return nil
}

func (c *ClassStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ClassStatus) (*model.Class, error) {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cl, ok := c.s.classes[id]
	if !ok || cl.Status != from {
		return nil, repository.ErrNotFound
	}
	cl.Status = to
	cl.UpdatedAt = c.s.tick()
	c.s.classes[id] = cl
	return &cl, nil
}

func (c *ClassStore) UpdatePriceAndSeats(ctx context.Context, id uuid.UUID, price float64, seats int) (*model.Class, error) {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cl, ok := c.s.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cl.Price = price
	cl.AvailableSeats = seats
	cl.UpdatedAt = c.s.tick()
	c.s.classes[id] = cl
	return &cl, nil
}

func (c *ClassStore) ReserveSeat(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.fault("classes.ReserveSeat"); err != nil {
		return nil, err
	}
	cl, ok := c.s.classes[id]
	if !ok || cl.AvailableSeats <= 0 {
		return nil, repository.ErrNotFound
	}
	cl.AvailableSeats--
	cl.Students++
	cl.UpdatedAt = c.s.tick()
	c.s.classes[id] = cl
	return &cl, nil
}

// ─── Carts ─────────────────────────────────────────────────────────────

// CartStore is the in-memory cart table joined with classes on read.
type CartStore struct{ s *Store }

// joined fills class fields the way the SQL join does. Caller holds mu.
func (c *CartStore) joined(it model.CartItem) (model.CartItem, bool) {
	cl, ok := c.s.classes[it.ClassID]
	if !ok {
		return it, false
	}
	it.Name = cl.Name
	it.Image = cl.Image
	it.InstructorName = cl.InstructorName
	it.Price = cl.Price
	return it, true
}

func (c *CartStore) GetByID(_ context.Context, id uuid.UUID) (*model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	it, ok := c.s.carts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	it, ok = c.joined(it)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (c *CartStore) ListByEmail(_ context.Context, email string) ([]model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range c.s.carts {
		if it.Email != email {
			continue
		}
		if it, ok := c.joined(it); ok {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *CartStore) Create(ctx context.Context, it *model.CartItem) error {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, existing := range c.s.carts {
		if existing.Email == it.Email && existing.ClassID == it.ClassID {
			return repository.ErrDuplicate
		}
	}
	it.ID = uuid.New()
	it.CreatedAt = c.s.tick()
	c.s.carts[it.ID] = model.CartItem{ID: it.ID, Email: it.Email, ClassID: it.ClassID, CreatedAt: it.CreatedAt}
	return nil
}

func (c *CartStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer c.s.lockWrite(ctx)()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.carts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.s.carts, id)
	return nil
}

// ─── Payments ──────────────────────────────────────────────────────────

// PaymentStore is the in-memory payment ledger.
type PaymentStore struct{ s *Store }

func (p *PaymentStore) GetByTransactionID(_ context.Context, transactionID string) (*model.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, pay := range p.s.payments {
		if pay.TransactionID == transactionID {
			return &pay, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p *PaymentStore) ExistsForClass(_ context.Context, email string, classID uuid.UUID) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, pay := range p.s.payments {
		if pay.Email == email && pay.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (p *PaymentStore) Create(ctx context.Context, pay *model.Payment) error {
	defer p.s.lockWrite(ctx)()
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fault("payments.Create"); err != nil {
		return err
	}
	for _, existing := range p.s.payments {
		if existing.TransactionID == pay.TransactionID {
			return repository.ErrDuplicate
		}
	}
	pay.ID = uuid.New()
	pay.CreatedAt = p.s.tick()
	p.s.payments[pay.ID] = *pay
	return nil
}

func (p *PaymentStore) ListByEmail(_ context.Context, email string) ([]model.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := []model.Payment{}
	for _, pay := range p.s.payments {
		if pay.Email != email {
			continue
		}
		if cl, ok := p.s.classes[pay.ClassID]; ok {
			pay.ClassName = cl.Name
		}
		out = append(out, pay)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─── Test helpers ──────────────────────────────────────────────────────

// PaymentCount returns the number of recorded payments.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// CartCount returns the number of cart items across all users.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
