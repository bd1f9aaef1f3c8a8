package booking

import "shecare/internal/domain"

// CreateBookingRequest is the public booking form. Presence checks happen in
// the domain so the error details list every missing field at once.
type CreateBookingRequest struct {
	ProviderName      string `json:"providerName"`
	ProviderType      string `json:"providerType"`
	ProviderPhone     string `json:"providerPhone"`
	PatientName       string `json:"patientName"`
	PatientPhone      string `json:"patientPhone"`
	PatientEmail      string `json:"patientEmail"`
	AppointmentDate   string `json:"appointmentDate"`
	AppointmentTime   string `json:"appointmentTime"`
	ServiceType       string `json:"serviceType"`
	Reason            string `json:"reason"`
	PreferredLanguage string `json:"preferredLanguage"`
}

type UpdateStatusRequest struct {
	Status  domain.BookingStatus `json:"status" binding:"required"`
	Version int64                `json:"version"`
}

// statusAll is the dashboard's "no status filter" value.
const statusAll domain.BookingStatus = "all"

// ListQuery narrows a list after the scoped store read.
type ListQuery struct {
	Status domain.BookingStatus `form:"status"`
	Search string               `form:"q"`
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}
