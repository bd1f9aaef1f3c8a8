package booking

import (
	"context"

	"shecare/internal/domain"
	"shecare/internal/events"
)

// BookingStore is the persistence the booking module needs.
type BookingStore interface {
	Append(ctx context.Context, b *domain.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByProviderName(ctx context.Context, name string) ([]domain.Booking, error)
	ListByPatientEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Update(ctx context.Context, id, expectedVersion int64, patch domain.BookingPatch) (*domain.Booking, error)
}

// EventPublisher receives an event after every committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event) error
}
