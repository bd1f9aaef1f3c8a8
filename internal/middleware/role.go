package middleware

import (
	"net/http"

	"shecare/internal/domain"
	"shecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user has one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// AdminOnly requires the admin role and a provider to scope the admin to.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAdmin() {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		c.Next()
	}
}

func PatientOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsPatient() {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Patient access required")
			return
		}
		c.Next()
	}
}

func PatientOrAdmin() gin.HandlerFunc {
	return RequireRole(domain.RolePatient, domain.RoleAdmin)
}
