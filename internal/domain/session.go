package domain

const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// Session is what an upstream identity collaborator vouches for. The core
// uses the values verbatim as scoping keys.
type Session struct {
	Email        string
	Role         string
	ProviderName string
}

func (s Session) IsAdmin() bool   { return s.Role == RoleAdmin && s.ProviderName != "" }
func (s Session) IsPatient() bool { return s.Role == RolePatient && s.Email != "" }

// CanView reports whether the session may read the booking.
func (s Session) CanView(b *Booking) bool {
	if b == nil {
		return false
	}
	if s.IsAdmin() {
		return b.ProviderName == s.ProviderName
	}
	if s.IsPatient() {
		return b.PatientEmail == s.Email
	}
	return false
}
