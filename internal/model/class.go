package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClassStatus is the approval state of a class.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// CanTransitionTo reports whether an admin may move a class from s to next.
// Only pending classes can be decided; approved and denied are terminal.
func (s ClassStatus) CanTransitionTo(next ClassStatus) bool {
	return s == ClassStatusPending && (next == ClassStatusApproved || next == ClassStatusDenied)
}

// Class is a catalog entry owned by an instructor.
type Class struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Image           string      `json:"image"`
	InstructorName  string      `json:"instructor_name"`
	InstructorEmail string      `json:"instructor_email"`
	Status          ClassStatus `json:"status"`
	Price           float64     `json:"price"`
	AvailableSeats  int         `json:"available_seats"`
	Students        int         `json:"students"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreateClassRequest is the payload for POST /add-class.
// Numbers may arrive as JSON numbers or numeric strings.
type CreateClassRequest struct {
	Name           string      `json:"name" binding:"required,min=2,max=200"`
	Image          string      `json:"image" binding:"omitempty,url,max=1024"`
	InstructorName string      `json:"instructor_name" binding:"omitempty,max=200"`
	Price          json.Number `json:"price" binding:"required,decimal"`
	AvailableSeats json.Number `json:"available_seats" binding:"required,decimal"`
}

// UpdateClassRequest is the payload for PATCH /updateClasses/:id.
type UpdateClassRequest struct {
	Price          json.Number `json:"price" binding:"required,decimal"`
	AvailableSeats json.Number `json:"available_seats" binding:"required,decimal"`
}

// ClassSort selects the ordering of a class listing.
type ClassSort string

const (
	ClassSortOldest       ClassSort = "oldest"
	ClassSortNewest       ClassSort = "newest"
	ClassSortMostStudents ClassSort = "most_students"
)

// ClassQuery filters a class listing. Zero values mean "no filter";
// a zero Limit returns every matching class.
type ClassQuery struct {
	Status          ClassStatus
	InstructorEmail string
	Sort            ClassSort
	Limit           int
}
