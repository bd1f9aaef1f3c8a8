package booking

import (
	"errors"

	"shecare/internal/domain"
)

var (
	ErrValidation          = domain.ErrValidation
	ErrNotFound            = domain.ErrNotFound
	ErrDuplicateID         = domain.ErrDuplicateID
	ErrInvalidTransition   = domain.ErrInvalidTransition
	ErrConcurrencyConflict = domain.ErrConcurrencyConflict

	ErrForbidden = errors.New("forbidden")
)
