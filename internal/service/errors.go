package service

import (
	"errors"
	"sort"
	"strings"
)

// Business errors. Handlers map these onto response codes with errors.Is;
// anything else is treated as a store failure.
var (
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyProcessed  = errors.New("transaction already processed")
	ErrAlreadyEnrolled   = errors.New("already enrolled in class")
	ErrAlreadyInCart     = errors.New("class already in cart")
	ErrClassFull         = errors.New("class has no available seats")
	ErrInvalidTransition = errors.New("invalid class status transition")
	ErrValidation        = errors.New("validation failed")
	ErrGateway           = errors.New("payment gateway error")
)

// ValidationError carries field-level messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
