// Package api wires together all HTTP routes of the admin backend.
//
// Health routes (/health, /ready, /version) are unauthenticated. Everything under
// /api/v1 requires a bearer token whose subject belongs to an admin user group,
// and every mutation below it is recorded in the audit log by the domain services.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/api/admin"
	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/middleware"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
)

// Version is reported by /version. Overridden at build time via -ldflags.
var Version = "0.1.0"

// Pinger is satisfied by *sql.DB and *sqlx.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	DB      Pinger
	Storage storage.Storage

	Tokens middleware.TokenValidator
	Admins middleware.AdminChecker

	// Limiter applies to every /api/v1 request, UploadLimiter additionally to file uploads.
	// Either may be nil to disable limiting.
	Limiter       middleware.Limiter
	UploadLimiter middleware.Limiter

	Configurations admin.ConfigurationService
	Buckets        admin.BucketService
	Settings       admin.SettingsService
	Users          admin.UserService
	AuditLogs      admin.AuditLogService
}

// BackgroundServices holds resources that must be released during graceful shutdown.
// The caller (cmd/server) calls Shutdown after the HTTP server has drained.
type BackgroundServices struct {
	closers []func() error
}

// OnShutdown registers fn to run during Shutdown. Functions run in reverse order.
func (bg *BackgroundServices) OnShutdown(fn func() error) {
	bg.closers = append(bg.closers, fn)
}

// Shutdown releases everything registered with OnShutdown
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for i := len(bg.closers) - 1; i >= 0; i-- {
		if err := bg.closers[i](); err != nil {
			slog.Warn("background service did not stop cleanly", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORS.AllowedOrigins, cfg.Security.CORS.AllowedMethods))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig(cfg.Security.TLS.Enabled)))

	router.GET("/health", healthCheckHandler(deps.DB))
	router.GET("/ready", readinessHandler(deps.DB, deps.Storage))
	router.GET("/version", versionHandler())

	configurations := admin.NewConfigurationHandlers(deps.Configurations)
	buckets := admin.NewBucketHandlers(deps.Buckets)
	settings := admin.NewSettingsHandlers(deps.Settings)
	users := admin.NewUserHandlers(deps.Users)
	auditLogs := admin.NewAuditLogHandlers(deps.AuditLogs)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.ActorMiddleware(deps.Tokens))
	if deps.Limiter != nil {
		apiV1.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}
	apiV1.Use(middleware.RequireAdmin(deps.Admins))
	{
		apiV1.GET("/configurations", configurations.ListConfigurations)
		apiV1.POST("/configurations", configurations.CreateConfiguration)
		apiV1.GET("/configurations/:id", configurations.GetConfiguration)
		apiV1.PUT("/configurations/:id", configurations.UpdateConfiguration)
		apiV1.DELETE("/configurations/:id", configurations.DeleteConfiguration)
		apiV1.POST("/configurations/import", configurations.ImportConfiguration)
		apiV1.POST("/configurations/duplicate/:id", configurations.DuplicateConfiguration)
		apiV1.GET("/configurations/:id/export", configurations.ExportConfiguration)
		apiV1.GET("/configurations/:id/checkBucketAvailability/:type", configurations.GetBucketAvailability)
		apiV1.GET("/configurations/:id/extensions", configurations.ListExtensions)
		apiV1.POST("/configurations/:id/extensions", configurations.CreateExtension)
		apiV1.PUT("/extensions/:id", configurations.UpdateExtension)
		apiV1.DELETE("/extensions/:id", configurations.DeleteExtension)
		apiV1.GET("/extension-specs", configurations.ListSpecs)

		apiV1.GET("/buckets", buckets.ListBuckets)
		apiV1.POST("/buckets", buckets.CreateBucket)
		apiV1.GET("/buckets/:id", buckets.GetBucket)
		apiV1.PUT("/buckets/:id", buckets.UpdateBucket)
		apiV1.DELETE("/buckets/:id", buckets.DeleteBucket)
		apiV1.GET("/buckets/:id/files", buckets.ListFiles)
		upload := []gin.HandlerFunc{}
		if deps.UploadLimiter != nil {
			upload = append(upload, middleware.RateLimitMiddleware(deps.UploadLimiter))
		}
		apiV1.POST("/buckets/:id/files", append(upload, buckets.UploadFile)...)
		apiV1.GET("/files/:id/content", buckets.DownloadFile)
		apiV1.DELETE("/files/:id", buckets.DeleteFile)

		apiV1.GET("/settings", settings.GetSettings)
		apiV1.PUT("/settings", settings.UpdateSettings)

		apiV1.GET("/users", users.ListUsers)
		apiV1.POST("/users", users.CreateUser)
		apiV1.GET("/users/:id", users.GetUser)
		apiV1.PUT("/users/:id", users.UpdateUser)
		apiV1.DELETE("/users/:id", users.DeleteUser)
		apiV1.GET("/user-groups", users.ListUserGroups)
		apiV1.POST("/user-groups", users.CreateUserGroup)
		apiV1.PUT("/user-groups/:id", users.UpdateUserGroup)
		apiV1.DELETE("/user-groups/:id", users.DeleteUserGroup)

		apiV1.GET("/audit-logs", auditLogs.ListAuditLogs)
		apiV1.GET("/audit-logs/export", auditLogs.ExportAuditLogs)
		apiV1.GET("/audit-logs/:id", auditLogs.GetAuditLog)
	}

	return router
}

// @Summary      Liveness check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func healthCheckHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler also checks the storage backend so that a readiness gate
// fails when uploads would error.
func readinessHandler(db Pinger, objects storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		// known-absent key: exercises credentials and connectivity without writing
		if _, err := objects.Exists(c.Request.Context(), ".readiness-check"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}
