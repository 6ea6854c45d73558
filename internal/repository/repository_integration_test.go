//go:build integration

package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
	"github.com/summercamp/camp-backend/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool

	tx       *repository.TxManager
	users    *repository.UserRepository
	classes  *repository.ClassRepository
	carts    *repository.CartRepository
	payments *repository.PaymentRepository
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("summer_camp"),
		tcpostgres.WithUsername("camp"),
		tcpostgres.WithPassword("camp_secret"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)

	schema, err := os.ReadFile("../../migrations/000001_init_schema.up.sql")
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, string(schema))
	s.Require().NoError(err)

	s.tx = repository.NewTxManager(s.pool)
	s.users = repository.NewUserRepository(s.pool)
	s.classes = repository.NewClassRepository(s.pool)
	s.carts = repository.NewCartRepository(s.pool)
	s.payments = repository.NewPaymentRepository(s.pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE payments, carts, classes, users`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) approvedClass(seats int) *model.Class {
	c := &model.Class{
		Name:            "Watercolor Basics",
		InstructorName:  "Ivy",
		InstructorEmail: "ivy@example.com",
		Status:          model.ClassStatusApproved,
		Price:           49.99,
		AvailableSeats:  seats,
	}
	s.Require().NoError(s.classes.Create(context.Background(), c))
	return c
}

func (s *PostgresSuite) TestUsers() {
	ctx := context.Background()

	role, err := s.users.GetRoleByEmail(ctx, "nobody@example.com")
	s.Require().NoError(err)
	s.Equal(model.RoleNone, role)

	u := &model.User{Email: "sam@example.com", Name: "Sam", Role: model.RoleNone}
	s.Require().NoError(s.users.Create(ctx, u))
	s.NotEmpty(u.ID)

	err = s.users.Create(ctx, &model.User{Email: "sam@example.com", Role: model.RoleNone})
	s.ErrorIs(err, repository.ErrDuplicate)

	_, err = s.users.SetRole(ctx, u.ID, model.RoleInstructor)
	s.Require().NoError(err)

	granted, err := s.users.SetRoleByEmail(ctx, "root@example.com", model.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, granted.Role)

	instructors, err := s.users.ListByRole(ctx, model.RoleInstructor, 6)
	s.Require().NoError(err)
	s.Len(instructors, 1)
	s.Equal("sam@example.com", instructors[0].Email)
}

func (s *PostgresSuite) TestClassStatusTransition() {
	ctx := context.Background()
	c := &model.Class{Name: "Pottery", InstructorEmail: "ivy@example.com", Status: model.ClassStatusPending, Price: 20, AvailableSeats: 3}
	s.Require().NoError(s.classes.Create(ctx, c))

	approved, err := s.classes.TransitionStatus(ctx, c.ID, model.ClassStatusPending, model.ClassStatusApproved)
	s.Require().NoError(err)
	s.Equal(model.ClassStatusApproved, approved.Status)

	_, err = s.classes.TransitionStatus(ctx, c.ID, model.ClassStatusPending, model.ClassStatusDenied)
	s.ErrorIs(err, repository.ErrNotFound)

	listed, err := s.classes.List(ctx, model.ClassQuery{Status: model.ClassStatusApproved})
	s.Require().NoError(err)
	s.Len(listed, 1)
	s.InDelta(20.0, listed[0].Price, 0.001)
}

func (s *PostgresSuite) TestReserveSeatStopsAtZero() {
	ctx := context.Background()
	c := s.approvedClass(1)

	reserved, err := s.classes.ReserveSeat(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(0, reserved.AvailableSeats)
	s.Equal(1, reserved.Students)

	_, err = s.classes.ReserveSeat(ctx, c.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestCartAndPayments() {
	ctx := context.Background()
	c := s.approvedClass(5)

	it := &model.CartItem{Email: "sam@example.com", ClassID: c.ID}
	s.Require().NoError(s.carts.Create(ctx, it))
	s.ErrorIs(s.carts.Create(ctx, &model.CartItem{Email: "sam@example.com", ClassID: c.ID}), repository.ErrDuplicate)

	items, err := s.carts.ListByEmail(ctx, "sam@example.com")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("Watercolor Basics", items[0].Name)
	s.InDelta(49.99, items[0].Price, 0.001)

	p := &model.Payment{Email: "sam@example.com", TransactionID: "pi_1", CartItemID: it.ID, ClassID: c.ID, Amount: 49.99}
	s.Require().NoError(s.payments.Create(ctx, p))
	s.ErrorIs(s.payments.Create(ctx, &model.Payment{
		Email: "sam@example.com", TransactionID: "pi_1", CartItemID: it.ID, ClassID: c.ID, Amount: 49.99,
	}), repository.ErrDuplicate)

	paid, err := s.payments.ExistsForClass(ctx, "sam@example.com", c.ID)
	s.Require().NoError(err)
	s.True(paid)

	s.Require().NoError(s.carts.Delete(ctx, it.ID))
	s.ErrorIs(s.carts.Delete(ctx, it.ID), repository.ErrNotFound)
}

func (s *PostgresSuite) TestRunInTxRollsBack() {
	ctx := context.Background()
	c := s.approvedClass(5)
	boom := errors.New("boom")

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.classes.ReserveSeat(ctx, c.ID); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.classes.GetByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(5, got.AvailableSeats)
	s.Equal(0, got.Students)
}

func (s *PostgresSuite) TestConcurrentEnrollmentNeverOversells() {
	ctx := context.Background()
	const seats, buyers = 3, 8
	c := s.approvedClass(seats)

	enrollments := service.NewEnrollmentService(s.tx, s.payments, s.carts, s.classes, nil,
		metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	inputs := make([]service.EnrollInput, buyers)
	for i := range inputs {
		email := string(rune('a'+i)) + "@example.com"
		it := &model.CartItem{Email: email, ClassID: c.ID}
		s.Require().NoError(s.carts.Create(ctx, it))
		inputs[i] = service.EnrollInput{Email: email, TransactionID: "pi_" + email, CartItemID: it.ID, Amount: "49.99"}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		enrolled int
		full     int
	)
	for _, in := range inputs {
		wg.Add(1)
		go func(in service.EnrollInput) {
			defer wg.Done()
			_, err := enrollments.Enroll(ctx, in)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				enrolled++
			case errors.Is(err, service.ErrClassFull):
				full++
			}
		}(in)
	}
	wg.Wait()

	s.Equal(seats, enrolled)
	s.Equal(buyers-seats, full)

	got, err := s.classes.GetByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(0, got.AvailableSeats)
	s.Equal(seats, got.Students)
}
