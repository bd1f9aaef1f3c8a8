package booking

import (
	"context"
	"errors"
	"time"

	"shecare/internal/domain"
	"shecare/internal/events"
	"shecare/internal/observability/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var bookingTracer = otel.Tracer("shecare.modules.booking")

type Service struct {
	store     BookingStore
	engine    *Engine
	publisher EventPublisher
	metrics   *metrics.BookingMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the booking operations. publisher, m and logger may be nil.
func NewService(store BookingStore, publisher EventPublisher, m *metrics.BookingMetrics, logger *zap.Logger) *Service {
	if store == nil {
		panic("booking: store required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		engine:    NewEngine(store),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(attribute.String("shecare.provider_name", req.ProviderName))

	lang := req.PreferredLanguage
	if lang == "" {
		lang = domain.DefaultPreferredLanguage
	}
	now := s.now().UTC()
	b := &domain.Booking{
		ProviderName:      req.ProviderName,
		ProviderType:      req.ProviderType,
		ProviderPhone:     req.ProviderPhone,
		PatientName:       req.PatientName,
		PatientPhone:      req.PatientPhone,
		PatientEmail:      req.PatientEmail,
		AppointmentDate:   req.AppointmentDate,
		AppointmentTime:   req.AppointmentTime,
		ServiceType:       req.ServiceType,
		Reason:            req.Reason,
		PreferredLanguage: lang,
		Status:            domain.BookingPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Append(ctx, b); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("shecare.booking_id", b.ID))

	s.metrics.ObserveCreated(b.ProviderType)
	s.logger.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.String("provider_name", b.ProviderName),
	)
	s.publish(ctx, events.BookingCreated(b))
	return b, nil
}

func (s *Service) ListBookingsForProvider(ctx context.Context, providerName string, q ListQuery) ([]domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.list_provider")
	defer span.End()

	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListByProviderName(ctx, providerName)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return applyQuery(rows, q), nil
}

func (s *Service) ListBookingsForPatient(ctx context.Context, patientEmail string, q ListQuery) ([]domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.list_patient")
	defer span.End()

	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}
	// search is an admin dashboard feature
	q.Search = ""
	rows, err := s.store.ListByPatientEmail(ctx, patientEmail)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return applyQuery(rows, q), nil
}

// SetStatus moves a booking along the lifecycle on behalf of an admin whose
// provider owns it. expectedVersion 0 skips the caller-side version check.
func (s *Service) SetStatus(ctx context.Context, actor domain.Session, id int64, target domain.BookingStatus, expectedVersion int64) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.set_status")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("shecare.booking_id", id),
		attribute.String("shecare.target_status", string(target)),
	)

	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var from domain.BookingStatus
	res, err := s.engine.Transition(ctx, id, target, TransitionOptions{
		ExpectedVersion: expectedVersion,
		Authorize: func(b *domain.Booking) error {
			from = b.Status
			if b.ProviderName != actor.ProviderName {
				return ErrForbidden
			}
			return nil
		},
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTransition(string(from), string(target), transitionResult(err))
		return nil, err
	}

	s.metrics.ObserveTransition(string(res.From), string(target), "ok")
	s.logger.Info("booking status changed",
		zap.Int64("booking_id", id),
		zap.String("from", string(res.From)),
		zap.String("to", string(target)),
		zap.String("admin", actor.Email),
	)
	s.publish(ctx, events.StatusChanged(res.Booking, res.From))
	return res.Booking, nil
}

// GetBooking returns a booking the viewer may see. Bookings outside the
// viewer's scope are reported as not found.
func (s *Service) GetBooking(ctx context.Context, viewer domain.Session, id int64) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.get")
	defer span.End()

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanView(b) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) ProviderStats(ctx context.Context, providerName string) (Stats, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.stats")
	defer span.End()

	rows, err := s.store.ListByProviderName(ctx, providerName)
	if err != nil {
		span.RecordError(err)
		return Stats{}, err
	}
	return tally(rows), nil
}

// publish runs after the write committed, so a failure is only logged.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("publish booking event failed",
			zap.String("type", evt.Type),
			zap.Int64("booking_id", evt.BookingID),
			zap.Error(err),
		)
	}
}

// normalizeQuery maps the dashboard's "all" status to no filter.
func normalizeQuery(q ListQuery) (ListQuery, error) {
	if q.Status == statusAll {
		q.Status = ""
	}
	if q.Status != "" && !q.Status.IsValid() {
		return q, domain.NewValidationError("status", "oneof")
	}
	return q, nil
}

func transitionResult(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "invalid_target"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
