// Package middleware provides Gin HTTP middleware for the admin API: actor
// extraction, admin authorization, rate limiting, security headers, request
// ids, access logging and metrics.
//
// Ordering is set up in internal/api/router.go:
//
//	Recovery → RequestID → Metrics → Logger → CORS → Security → Actor → RateLimit → RequireAdmin → Handler
//
// RateLimit runs after Actor so authenticated callers are limited per user
// instead of per client address.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/auth"
)

const (
	// ActorKey is the gin.Context key holding the audit.PerformedBy of the caller
	ActorKey = "actor"

	// UserIDKey is the gin.Context key holding the caller's user id
	UserIDKey = "user_id"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// ActorMiddleware requires a valid bearer token and records the caller as
// the actor of every mutation made by the request.
func ActorMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(ActorKey, audit.PerformedBy{ID: claims.Subject, Name: claims.Name})
		c.Next()
	}
}

// Actor returns the caller recorded by ActorMiddleware
func Actor(c *gin.Context) (audit.PerformedBy, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return audit.PerformedBy{}, false
	}
	by, ok := v.(audit.PerformedBy)
	return by, ok
}
