package domain

import (
	"time"

	"shecare/internal/pkg/validator"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// DefaultPreferredLanguage is what the booking form preselects.
const DefaultPreferredLanguage = "English"

// Lifecycle edges. Admins drive every transition; cancelled and completed are terminal.
//
//	pending -> confirmed -> completed
//	pending -> cancelled
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted},
	BookingCancelled: {},
	BookingCompleted: {},
}

func BookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(bookingTransitions[s]) == 0
}

func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID int64 `json:"id"`

	// provider snapshot taken when the booking was made
	ProviderName  string `json:"providerName" validate:"required"`
	ProviderType  string `json:"providerType"`
	ProviderPhone string `json:"providerPhone"`

	PatientName  string `json:"patientName" validate:"required"`
	PatientPhone string `json:"patientPhone" validate:"required"`
	PatientEmail string `json:"patientEmail"`

	AppointmentDate string `json:"appointmentDate" validate:"required"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`

	ServiceType       string `json:"serviceType" validate:"required"`
	Reason            string `json:"reason,omitempty"`
	PreferredLanguage string `json:"preferredLanguage"`

	Status    BookingStatus `json:"status"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Validate checks the fields a booking cannot be stored without.
func (b *Booking) Validate() error {
	if fields := validator.Validate(b); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// BookingPatch is the mutable part of a booking.
type BookingPatch struct {
	Status BookingStatus
}
