package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shecare/internal/database"
	"shecare/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "repo_test.db"))
	require.NoError(t, err, "failed to open sqlite db")
	require.NoError(t, Migrate(db), "failed to migrate db")
	return db
}

func newBooking(provider, email string) *domain.Booking {
	return &domain.Booking{
		ProviderName:      provider,
		ProviderType:      "clinic",
		ProviderPhone:     "031 000 0000",
		PatientName:       "Thandi Mthembu",
		PatientPhone:      "082 555 0101",
		PatientEmail:      email,
		AppointmentDate:   "2026-11-02",
		AppointmentTime:   "09:00",
		ServiceType:       "Prenatal Care",
		Reason:            "first visit",
		PreferredLanguage: "isiZulu",
		Status:            domain.BookingPending,
	}
}

func TestBookingRepository_AppendAndGet(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	b := newBooking("Clinic A", "a@x.com")
	id, err := repo.Append(ctx, b)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, int64(1), b.Version)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Clinic A", got.ProviderName)
	assert.Equal(t, "a@x.com", got.PatientEmail)
	assert.Equal(t, "first visit", got.Reason)
	assert.Equal(t, "isiZulu", got.PreferredLanguage)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestBookingRepository_AppendAssignsDistinctIDs(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		id, err := repo.Append(ctx, newBooking("Clinic A", "a@x.com"))
		require.NoError(t, err)
		assert.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
}

func TestBookingRepository_AppendDuplicateID(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	first := newBooking("Clinic A", "a@x.com")
	first.ID = 42
	_, err := repo.Append(ctx, first)
	require.NoError(t, err)

	dup := newBooking("Clinic B", "b@x.com")
	dup.ID = 42
	_, err = repo.Append(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	got, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Clinic A", got.ProviderName)
}

func TestBookingRepository_AppendValidation(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))

	b := newBooking("", "a@x.com")
	b.PatientPhone = ""
	_, err := repo.Append(context.Background(), b)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "providerName")
	assert.Contains(t, verr.Fields, "patientPhone")

	rows, err := repo.ListByPatientEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBookingRepository_GetNotFound(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_ListByProviderName(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	a1, _ := repo.Append(ctx, newBooking("Clinic A", "a@x.com"))
	_, _ = repo.Append(ctx, newBooking("Clinic B", "a@x.com"))
	a2, _ := repo.Append(ctx, newBooking("Clinic A", "b@x.com"))
	_, _ = repo.Append(ctx, newBooking("clinic a", "c@x.com"))

	rows, err := repo.ListByProviderName(ctx, "Clinic A")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a1, rows[0].ID)
	assert.Equal(t, a2, rows[1].ID)

	rows, err = repo.ListByProviderName(ctx, "Clinic C")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBookingRepository_ListByPatientEmailIsCaseSensitive(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	mine, _ := repo.Append(ctx, newBooking("Clinic A", "a@x.com"))
	_, _ = repo.Append(ctx, newBooking("Clinic A", "A@x.com"))
	_, _ = repo.Append(ctx, newBooking("Clinic A", ""))

	rows, err := repo.ListByPatientEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine, rows[0].ID)

	rows, err = repo.ListByPatientEmail(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBookingRepository_UpdateBumpsVersion(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Append(ctx, newBooking("Clinic A", "a@x.com"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, id, 1, domain.BookingPatch{Status: domain.BookingConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Clinic A", updated.ProviderName)
}

func TestBookingRepository_UpdateStaleVersion(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Append(ctx, newBooking("Clinic A", "a@x.com"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, id, 1, domain.BookingPatch{Status: domain.BookingConfirmed})
	require.NoError(t, err)

	_, err = repo.Update(ctx, id, 1, domain.BookingPatch{Status: domain.BookingCancelled})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestBookingRepository_UpdateNotFound(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))

	_, err := repo.Update(context.Background(), 7, 1, domain.BookingPatch{Status: domain.BookingConfirmed})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
