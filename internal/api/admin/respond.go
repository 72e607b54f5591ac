// Package admin implements the HTTP handlers of the admin API. Every mutating
// handler passes the caller recorded by middleware.ActorMiddleware to the
// domain command so the resulting audit entry names who made the change.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
	"github.com/codecentric/c4-genai-suite/backend/internal/middleware"
)

// respondError renders err as {"error": message, "kind": kind}
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(middleware.RequestIDKey),
			"error", err)
	}
	c.JSON(status, gin.H{
		"error": apperr.MessageOf(err),
		"kind":  string(kind),
	})
}

func invalidBody(c *gin.Context, err error) {
	respondError(c, apperr.Validation("invalid request body: %v", err))
}

// actor returns the caller, or renders 401 and reports false
func actor(c *gin.Context) (audit.PerformedBy, bool) {
	by, ok := middleware.Actor(c)
	if !ok || by.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return audit.PerformedBy{}, false
	}
	return by, true
}

// int64Param parses a numeric path parameter, rendering 400 on failure
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, apperr.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}

// pageRequest reads the page and pageSize query parameters
func pageRequest(c *gin.Context) (paging.Request, bool) {
	var req paging.Request
	for name, dst := range map[string]*int{"page": &req.Page, "pageSize": &req.PageSize} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Validation("invalid %s %q", name, raw))
			return paging.Request{}, false
		}
		*dst = n
	}
	return req.Normalize(), true
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}
