package realtime

import (
	"net/http"

	"shecare/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler accepts upgrades from the allowed browser origins. Requests
// without an Origin header (non-browser clients) are accepted.
func NewHandler(hub *Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes expects admin to already run JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/bookings/ws", h.Connect)
}

func (h *Handler) Connect(c *gin.Context) {
	session := middleware.CurrentSession(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.ServeWS(conn, session.ProviderName, session.Email)
}
