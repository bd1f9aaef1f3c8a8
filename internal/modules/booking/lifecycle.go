package booking

import (
	"context"
	"fmt"

	"shecare/internal/domain"
)

// Engine applies status transitions against the store. It only looks at the
// transition table and the record version, never at appointment times.
type Engine struct {
	store BookingStore
}

func NewEngine(store BookingStore) *Engine {
	return &Engine{store: store}
}

type TransitionOptions struct {
	// ExpectedVersion, when > 0, must match the stored version.
	ExpectedVersion int64
	// Authorize runs on the loaded booking before any state check.
	Authorize func(b *domain.Booking) error
}

type TransitionResult struct {
	Booking *domain.Booking
	From    domain.BookingStatus
}

func (e *Engine) Transition(ctx context.Context, id int64, target domain.BookingStatus, opts TransitionOptions) (*TransitionResult, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError("status", "oneof")
	}

	current, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Authorize != nil {
		if err := opts.Authorize(current); err != nil {
			return nil, err
		}
	}

	if opts.ExpectedVersion > 0 && opts.ExpectedVersion != current.Version {
		return nil, fmt.Errorf("booking %d at version %d, caller expected %d: %w",
			id, current.Version, opts.ExpectedVersion, domain.ErrConcurrencyConflict)
	}

	if !current.Status.CanTransitionTo(target) {
		return nil, &domain.TransitionError{From: current.Status, To: target}
	}

	updated, err := e.store.Update(ctx, id, current.Version, domain.BookingPatch{Status: target})
	if err != nil {
		return nil, err
	}
	return &TransitionResult{Booking: updated, From: current.Status}, nil
}
