package admin

import (
	"errors"
	"net/http"

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

// RegisterRoutes mounts login on public and the session check on admin,
// which must already run JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	if public != nil {
		public.POST("/admin/login", h.Login)
	}
	if admin != nil {
		admin.GET("/me", h.Me)
	}
}

// Login
// @Summary   Admin login
// @Tags      Admin
// @Param     request body LoginRequest true "Credentials"
// @Success   200 {object} map[string]interface{}
// @Failure   401 {object} map[string]interface{}
// @Router    /admin/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	s := middleware.CurrentSession(c)
	response.Success(c, http.StatusOK, MeResponse{Email: s.Email, Role: s.Role, ProviderName: s.ProviderName})
}
