// Package events carries booking domain events from the service layer to
// interested listeners such as the admin realtime feed.
package events

import (
	"context"
	"sync"
	"time"

	"shecare/internal/domain"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

// Event is the payload published for every accepted booking mutation.
type Event struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	BookingID    int64                `json:"bookingId"`
	ProviderName string               `json:"providerName"`
	PatientEmail string               `json:"patientEmail,omitempty"`
	FromStatus   domain.BookingStatus `json:"fromStatus,omitempty"`
	ToStatus     domain.BookingStatus `json:"toStatus"`
	Booking      *domain.Booking      `json:"booking,omitempty"`
	OccurredAt   time.Time            `json:"occurredAt"`
}

var nowFunc = time.Now

func BookingCreated(b *domain.Booking) Event {
	return newEvent(TypeBookingCreated, b, "")
}

func StatusChanged(b *domain.Booking, from domain.BookingStatus) Event {
	return newEvent(TypeBookingStatusChanged, b, from)
}

func newEvent(typ string, b *domain.Booking, from domain.BookingStatus) Event {
	snapshot := *b
	return Event{
		ID:           uuid.NewString(),
		Type:         typ,
		BookingID:    b.ID,
		ProviderName: b.ProviderName,
		PatientEmail: b.PatientEmail,
		FromStatus:   from,
		ToStatus:     b.Status,
		Booking:      &snapshot,
		OccurredAt:   nowFunc().UTC(),
	}
}

// Publisher is implemented by every bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type Handler func(Event)

// LocalBus fans events out to in-process subscribers synchronously.
type LocalBus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

func (b *LocalBus) Publish(_ context.Context, evt Event) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
	return nil
}

// Multi publishes to each publisher in order and returns the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}
