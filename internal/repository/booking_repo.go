package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shecare/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type BookingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db, now: time.Now}
}

type bookingModel struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProviderName      string    `gorm:"column:provider_name;not null;index"`
	ProviderType      string    `gorm:"column:provider_type"`
	ProviderPhone     string    `gorm:"column:provider_phone"`
	PatientName       string    `gorm:"column:patient_name;not null"`
	PatientPhone      string    `gorm:"column:patient_phone;not null"`
	PatientEmail      string    `gorm:"column:patient_email;index"`
	AppointmentDate   string    `gorm:"column:appointment_date;not null"`
	AppointmentTime   string    `gorm:"column:appointment_time;not null"`
	ServiceType       string    `gorm:"column:service_type;not null"`
	Reason            *string   `gorm:"column:reason;type:text"`
	PreferredLanguage string    `gorm:"column:preferred_language"`
	Status            string    `gorm:"column:status;not null;index"`
	Version           int64     `gorm:"column:version;not null;default:1"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var reason string
	if m.Reason != nil {
		reason = *m.Reason
	}

	return &domain.Booking{
		ID:                m.ID,
		ProviderName:      m.ProviderName,
		ProviderType:      m.ProviderType,
		ProviderPhone:     m.ProviderPhone,
		PatientName:       m.PatientName,
		PatientPhone:      m.PatientPhone,
		PatientEmail:      m.PatientEmail,
		AppointmentDate:   m.AppointmentDate,
		AppointmentTime:   m.AppointmentTime,
		ServiceType:       m.ServiceType,
		Reason:            reason,
		PreferredLanguage: m.PreferredLanguage,
		Status:            domain.BookingStatus(m.Status),
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var reason *string
	if b.Reason != "" {
		v := b.Reason
		reason = &v
	}

	return bookingModel{
		ID:                b.ID,
		ProviderName:      b.ProviderName,
		ProviderType:      b.ProviderType,
		ProviderPhone:     b.ProviderPhone,
		PatientName:       b.PatientName,
		PatientPhone:      b.PatientPhone,
		PatientEmail:      b.PatientEmail,
		AppointmentDate:   b.AppointmentDate,
		AppointmentTime:   b.AppointmentTime,
		ServiceType:       b.ServiceType,
		Reason:            reason,
		PreferredLanguage: b.PreferredLanguage,
		Status:            string(b.Status),
		Version:           b.Version,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// Append inserts a new booking and returns its id. A zero ID lets the
// database assign the next one; a caller-chosen ID must be unused.
func (r *BookingRepository) Append(ctx context.Context, b *domain.Booking) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	m := toBookingModel(b)
	m.Version = 1
	if m.Status == "" {
		m.Status = string(domain.BookingPending)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.ID != 0 {
			var cnt int64
			if err := tx.Model(&bookingModel{}).Where("id = ?", m.ID).Count(&cnt).Error; err != nil {
				return err
			}
			if cnt > 0 {
				return domain.ErrDuplicateID
			}
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return 0, fmt.Errorf("booking %d: %w", m.ID, domain.ErrDuplicateID)
		}
		return 0, fmt.Errorf("bookings: append: %w", err)
	}

	*b = *toDomainBooking(m)
	return m.ID, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("bookings: get %d: %w", id, tx.Error)
	}
	return toDomainBooking(m), nil
}

// ListByProviderName returns the provider's bookings in insertion order.
// The match is exact: no case folding, no trimming.
func (r *BookingRepository) ListByProviderName(ctx context.Context, name string) ([]domain.Booking, error) {
	return r.listWhere(ctx, "provider_name = ?", name)
}

// ListByPatientEmail returns the patient's bookings in insertion order.
// The match is exact and case-sensitive; an empty email matches nothing.
func (r *BookingRepository) ListByPatientEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	if email == "" {
		return []domain.Booking{}, nil
	}
	return r.listWhere(ctx, "patient_email = ?", email)
}

func (r *BookingRepository) listWhere(ctx context.Context, query string, arg any) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// Update applies patch if the stored version still equals expectedVersion.
// The compare-and-swap happens in a single UPDATE, so of two writers holding
// the same version exactly one wins; the other gets ErrConcurrencyConflict.
func (r *BookingRepository) Update(ctx context.Context, id, expectedVersion int64, patch domain.BookingPatch) (*domain.Booking, error) {
	updates := map[string]any{
		"version":    gorm.Expr("version + 1"),
		"updated_at": r.now().UTC(),
	}
	if patch.Status != "" {
		updates["status"] = string(patch.Status)
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if tx.Error != nil {
		return nil, fmt.Errorf("bookings: update %d: %w", id, tx.Error)
	}

	if tx.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("booking %d at version %d: %w", id, expectedVersion, domain.ErrConcurrencyConflict)
	}

	return r.GetByID(ctx, id)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, domain.ErrDuplicateID) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
