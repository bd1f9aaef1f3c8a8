package main

import (
	"context"
	"log"

	"shecare/internal/config"
	"shecare/internal/database"
	"shecare/internal/domain"
	"shecare/internal/modules/admin"
	"shecare/internal/modules/booking"
	pkglogger "shecare/internal/pkg/logger"
	"shecare/internal/repository"

	"go.uber.org/zap"
)

const (
	demoProvider = "Durban Women's Health Clinic"
	demoEmail    = "admin@durbanwomensclinic.co.za"
	demoPassword = "admin123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if cfg.IsProdLike() {
		log.Fatal("refusing to seed demo data in ", cfg.AppEnv)
	}
	logger, err := pkglogger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	ctx := context.Background()

	email, password, provider := demoEmail, demoPassword, demoProvider
	if cfg.HasBootstrapAdmin() {
		email, password, provider = cfg.AdminEmail, cfg.AdminPassword, cfg.AdminProviderName
	}

	adminSvc := admin.NewService(repository.NewAdminAccountRepository(db), nil, cfg.JWTTTL, logger)
	if _, err := adminSvc.EnsureAccount(ctx, email, password, provider); err != nil {
		log.Fatal("admin account:", err)
	}

	bookings := booking.NewService(repository.NewBookingRepository(db), nil, nil, logger)

	// ================== BOOKINGS ==================
	samples := []struct {
		req    booking.CreateBookingRequest
		status []domain.BookingStatus
	}{
		{
			req: booking.CreateBookingRequest{
				ProviderName: provider, ProviderType: "clinic", ProviderPhone: "031 555 0100",
				PatientName: "Thandi Mthembu", PatientPhone: "082 555 0101", PatientEmail: "thandi@example.co.za",
				AppointmentDate: "2026-11-02", AppointmentTime: "09:00", ServiceType: "Prenatal Care",
				Reason: "First trimester check-up", PreferredLanguage: "isiZulu",
			},
		},
		{
			req: booking.CreateBookingRequest{
				ProviderName: provider, ProviderType: "clinic", ProviderPhone: "031 555 0100",
				PatientName: "Aisha Naidoo", PatientPhone: "083 555 0102", PatientEmail: "aisha@example.co.za",
				AppointmentDate: "2026-11-03", AppointmentTime: "11:30", ServiceType: "Cervical Screening",
			},
			status: []domain.BookingStatus{domain.BookingConfirmed},
		},
		{
			req: booking.CreateBookingRequest{
				ProviderName: provider, ProviderType: "clinic", ProviderPhone: "031 555 0100",
				PatientName: "Lerato Khumalo", PatientPhone: "084 555 0103",
				AppointmentDate: "2026-10-20", AppointmentTime: "14:00", ServiceType: "Family Planning",
				PreferredLanguage: "Sesotho",
			},
			status: []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCompleted},
		},
		{
			req: booking.CreateBookingRequest{
				ProviderName: provider, ProviderType: "clinic", ProviderPhone: "031 555 0100",
				PatientName: "Megan van Wyk", PatientPhone: "072 555 0104", PatientEmail: "megan@example.co.za",
				AppointmentDate: "2026-11-05", AppointmentTime: "08:15", ServiceType: "Breast Examination",
				PreferredLanguage: "Afrikaans",
			},
			status: []domain.BookingStatus{domain.BookingCancelled},
		},
	}

	actor := domain.Session{Email: email, Role: domain.RoleAdmin, ProviderName: provider}
	for _, s := range samples {
		b, err := bookings.CreateBooking(ctx, s.req)
		if err != nil {
			log.Fatal("create booking:", err)
		}
		for _, st := range s.status {
			if _, err := bookings.SetStatus(ctx, actor, b.ID, st, 0); err != nil {
				log.Fatal("set status:", err)
			}
		}
	}

	logger.Info("seed complete",
		zap.String("admin", email),
		zap.String("provider", provider),
		zap.Int("bookings", len(samples)),
	)
}
