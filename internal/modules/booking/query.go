package booking

import (
	"strings"

	"shecare/internal/domain"
)

func applyQuery(rows []domain.Booking, q ListQuery) []domain.Booking {
	if q.Status == "" && strings.TrimSpace(q.Search) == "" {
		return rows
	}

	term := strings.TrimSpace(q.Search)
	out := make([]domain.Booking, 0, len(rows))
	for _, b := range rows {
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		if term != "" && !matchesSearch(b, term, q.Search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// matchesSearch folds case for name, email and service. The phone is matched
// against the raw term so partial numbers with spaces still work.
func matchesSearch(b domain.Booking, term, raw string) bool {
	lower := strings.ToLower(term)
	for _, field := range []string{b.PatientName, b.PatientEmail, b.ServiceType} {
		if strings.Contains(strings.ToLower(field), lower) {
			return true
		}
	}
	return strings.Contains(b.PatientPhone, raw)
}

func tally(rows []domain.Booking) Stats {
	st := Stats{Total: len(rows)}
	for _, b := range rows {
		switch b.Status {
		case domain.BookingPending:
			st.Pending++
		case domain.BookingConfirmed:
			st.Confirmed++
		case domain.BookingCompleted:
			st.Completed++
		case domain.BookingCancelled:
			st.Cancelled++
		}
	}
	return st
}
