package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summercamp/camp-backend/internal/model"
)

const classColumns = `id, name, image, instructor_name, instructor_email, status,
	price, available_seats, students, created_at, updated_at`

// ClassRepository handles catalog data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row pgx.Row) (*model.Class, error) {
	c := &model.Class{}
	var status string
	err := row.Scan(&c.ID, &c.Name, &c.Image, &c.InstructorName, &c.InstructorEmail, &status,
		&c.Price, &c.AvailableSeats, &c.Students, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	c.Status = model.ClassStatus(status)
	return c, nil
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return scanClass(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
}

// List retrieves classes matching q.
func (r *ClassRepository) List(ctx context.Context, q model.ClassQuery) ([]model.Class, error) {
	var (
		where []string
		args  []any
	)
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.InstructorEmail != "" {
		args = append(args, q.InstructorEmail)
		where = append(where, fmt.Sprintf("instructor_email = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + classColumns + ` FROM classes`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	switch q.Sort {
	case model.ClassSortMostStudents:
		sb.WriteString(" ORDER BY students DESC, created_at")
	case model.ClassSortNewest:
		sb.WriteString(" ORDER BY created_at DESC")
	default:
		sb.WriteString(" ORDER BY created_at")
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := conn(ctx, r.pool).Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

// Create inserts a new class. Status and students are taken from c as given.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO classes (name, image, instructor_name, instructor_email, status, price, available_seats, students)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Image, c.InstructorName, c.InstructorEmail, c.Status, c.Price, c.AvailableSeats, c.Students,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

// TransitionStatus moves a class from one status to another in a single
// conditional statement. It returns ErrNotFound when no class with that ID is
// in the from status; callers distinguish "missing" from "wrong status".
func (r *ClassRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ClassStatus) (*model.Class, error) {
	return scanClass(conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE classes SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = $3
		 RETURNING `+classColumns, to, id, from))
}

// UpdatePriceAndSeats overwrites the price and remaining seats of a class.
func (r *ClassRepository) UpdatePriceAndSeats(ctx context.Context, id uuid.UUID, price float64, seats int) (*model.Class, error) {
	return scanClass(conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE classes SET price = $1, available_seats = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3
		 RETURNING `+classColumns, price, seats, id))
}

// ReserveSeat atomically takes one seat and counts one more student.
// It returns ErrNotFound when the class is missing or has no seat left.
func (r *ClassRepository) ReserveSeat(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return scanClass(conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE classes
		 SET available_seats = available_seats - 1,
		     students = students + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND available_seats > 0
		 RETURNING `+classColumns, id))
}
