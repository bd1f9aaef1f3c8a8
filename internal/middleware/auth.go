package middleware

import (
	"net/http"
	"strings"

	"shecare/internal/domain"
	"shecare/internal/pkg/jwt"
	"shecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// JWTAuth verifies the bearer token and stores the caller's session. Browsers
// cannot set headers on a websocket upgrade, so an access_token query
// parameter is accepted when the header is absent.
func JWTAuth(jwtSvc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if code != "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		session := domain.Session{
			Email:        claims.Email,
			Role:         claims.Role,
			ProviderName: claims.ProviderName,
		}
		c.Set(sessionKey, session)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("provider_name", claims.ProviderName)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if qt := c.Query("access_token"); qt != "" {
			return qt, "", ""
		}
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), "", ""
}

// CurrentSession returns the session JWTAuth stored, or a zero Session.
func CurrentSession(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}
