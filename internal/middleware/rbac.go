// Package middleware (rbac.go) restricts the admin API to members of an admin
// user group.
//
// Group membership is checked on every request rather than embedded in the
// token, so removing a user from the admin group takes effect immediately.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminChecker tells whether a user belongs to an admin group
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin aborts with 403 unless the actor set by ActorMiddleware is an admin
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		by, ok := Actor(c)
		if !ok || by.ID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), by.ID)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "admin check failed", "user_id", by.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check permissions",
			})
			return
		}

		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
