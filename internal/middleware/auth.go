package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/service"
)

const (
	// ContextKeyActor holds the service.Actor resolved from the access token.
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

func abortForbidden(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// AuthMiddleware validates the bearer access token and resolves the caller.
// Downstream middleware and handlers read the caller with GetActor; a token
// that names no tenant or user is rejected here rather than left for them.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		if claims.TenantID == uuid.Nil || claims.UserID == uuid.Nil {
			abortUnauthorized(c, "token does not identify a tenant user")
			return
		}

		SetActor(c, service.Actor{TenantID: claims.TenantID, UserID: claims.UserID, Role: claims.Role})
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// SetActor stores the caller on the request context.
func SetActor(c *gin.Context, actor service.Actor) {
	c.Set(ContextKeyActor, actor)
}

// GetActor returns the caller resolved by AuthMiddleware.
func GetActor(c *gin.Context) (service.Actor, error) {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return service.Actor{}, domain.ErrUnauthorized
	}
	actor, ok := val.(service.Actor)
	if !ok || actor.TenantID == uuid.Nil || actor.UserID == uuid.Nil {
		return service.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}

// RequireRole lets the request through only when the caller has one of roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			abortForbidden(c, "FORBIDDEN", "role not found in context")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abortForbidden(c, "INSUFFICIENT_ROLE", "insufficient role for this action")
	}
}

// RequireManager allows owners and admins only.
func RequireManager() gin.HandlerFunc {
	return RequireRole(domain.RoleOwner, domain.RoleAdmin)
}
