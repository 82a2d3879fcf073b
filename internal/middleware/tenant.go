package middleware

import (
	"github.com/gin-gonic/gin"

	"fieldpilot/internal/domain"
)

// TenantGuard ensures a complete caller is present: tenant, user and a known
// role. It runs after AuthMiddleware.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			abortUnauthorized(c, "tenant context required")
			return
		}
		if !domain.ValidUserRoles[actor.Role] {
			abortForbidden(c, "FORBIDDEN", "unknown role")
			return
		}
		c.Next()
	}
}
