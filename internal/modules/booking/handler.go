package booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"shecare/internal/domain"
	"shecare/internal/middleware"
	"shecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the booking form endpoint. mw runs before the
// handler (the server passes the per-IP rate limiter).
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/bookings", append(mw, h.CreateBooking)...)
}

// RegisterSessionRoutes expects rg to already run JWTAuth.
func (h *Handler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me/bookings", middleware.PatientOnly(), h.ListMyBookings)
	rg.GET("/bookings/:id", middleware.PatientOrAdmin(), h.GetBooking)
}

// RegisterAdminRoutes expects rg to already run JWTAuth and AdminOnly.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("", h.ListProviderBookings)
		bookings.GET("/stats", h.ProviderStats)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.PATCH("/:id/confirm", h.setStatusTo(domain.BookingConfirmed))
		bookings.PATCH("/:id/cancel", h.setStatusTo(domain.BookingCancelled))
		bookings.PATCH("/:id/complete", h.setStatusTo(domain.BookingCompleted))
	}
}

// CreateBooking
// @Summary   Book an appointment
// @Tags      Bookings
// @Param     request body CreateBookingRequest true "Booking form"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]interface{}
// @Failure   429 {object} map[string]interface{}
// @Router    /bookings [POST]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create booking")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}

	session := middleware.CurrentSession(c)
	rows, err := h.service.ListBookingsForPatient(c.Request.Context(), session.Email, q)
	if err != nil {
		writeError(c, err, "Failed to load bookings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows, "count": len(rows)})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		writeError(c, err, "Failed to load booking")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// ListProviderBookings
// @Summary   Bookings for the admin's provider
// @Tags      Admin
// @Security  BearerAuth
// @Param     status query string false "pending|confirmed|cancelled|completed"
// @Param     q      query string false "search patient name, email, phone or service"
// @Router    /admin/bookings [GET]
func (h *Handler) ListProviderBookings(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}

	session := middleware.CurrentSession(c)
	rows, err := h.service.ListBookingsForProvider(c.Request.Context(), session.ProviderName, q)
	if err != nil {
		writeError(c, err, "Failed to load bookings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows, "count": len(rows)})
}

func (h *Handler) ProviderStats(c *gin.Context) {
	session := middleware.CurrentSession(c)
	st, err := h.service.ProviderStats(c.Request.Context(), session.ProviderName)
	if err != nil {
		writeError(c, err, "Failed to load stats")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": st})
}

// UpdateStatus
// @Summary   Change a booking status
// @Tags      Admin
// @Security  BearerAuth
// @Param     request body UpdateStatusRequest true "Target status and optional version"
// @Success   200 {object} map[string]interface{}
// @Failure   409 {object} map[string]interface{} "Invalid transition or stale version"
// @Router    /admin/bookings/{id}/status [PATCH]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body",
			map[string]string{"status": "required"})
		return
	}

	h.applyStatus(c, id, req.Status, req.Version)
}

func (h *Handler) setStatusTo(target domain.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}

		var body struct {
			Version int64 `json:"version"`
		}
		// the body is optional; chunked requests report ContentLength -1
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
				return
			}
		}

		h.applyStatus(c, id, target, body.Version)
	}
}

func (h *Handler) applyStatus(c *gin.Context, id int64, target domain.BookingStatus, version int64) {
	b, err := h.service.SetStatus(c.Request.Context(), middleware.CurrentSession(c), id, target, version)
	if err != nil {
		writeError(c, err, "Failed to update booking")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id",
			map[string]string{"id": "numeric"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	var verr *domain.ValidationError
	var terr *domain.TransitionError

	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking data", verr.Fields)
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking data")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.As(err, &terr):
		response.ErrorWithDetails(c, http.StatusConflict, "INVALID_STATUS_TRANSITION",
			"Booking cannot move from "+string(terr.From)+" to "+string(terr.To),
			gin.H{"from": terr.From, "to": terr.To})
	case errors.Is(err, ErrConcurrencyConflict):
		response.Error(c, http.StatusConflict, "CONCURRENCY_CONFLICT", "Booking was modified by someone else, reload and retry")
	case errors.Is(err, ErrDuplicateID):
		response.Error(c, http.StatusConflict, "DUPLICATE_ID", "Booking id already exists")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another provider")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
