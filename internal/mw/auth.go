package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-backend/internal/auth"
)

const (
	actorKey       = "actor_id"
	permissionsKey = "permissions"
)

// PermissionSource resolves the permissions granted to a user.
type PermissionSource interface {
	Permissions(ctx context.Context, userID int64) ([]string, error)
}

// Authenticate validates the bearer token and stores the acting user and their
// permissions on the context.
func Authenticate(tokens auth.TokenService, perms PermissionSource, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			log.Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		granted, err := perms.Permissions(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Error("failed to load permissions", zap.Int64("user_id", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred."})
			return
		}

		set := make(map[string]struct{}, len(granted))
		for _, p := range granted {
			set[p] = struct{}{}
		}
		c.Set(actorKey, claims.UserID)
		c.Set(permissionsKey, set)
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the authenticated user holds permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasPermission(c, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the authenticated user holds permission.
func HasPermission(c *gin.Context, permission string) bool {
	v, ok := c.Get(permissionsKey)
	if !ok {
		return false
	}
	set, ok := v.(map[string]struct{})
	if !ok {
		return false
	}
	_, granted := set[permission]
	return granted
}

// ActorID returns the authenticated user set by Authenticate.
func ActorID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
