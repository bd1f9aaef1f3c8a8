package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateID         = errors.New("duplicate_id")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)

// ValidationError lists offending fields by wire name -> failed rule.
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
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
