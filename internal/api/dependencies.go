package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/auth"
	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/crypto"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/auditlog"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/extensions"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/files"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/settings"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/users"
	"github.com/codecentric/c4-genai-suite/backend/internal/jobs"
	"github.com/codecentric/c4-genai-suite/backend/internal/middleware"
	"github.com/codecentric/c4-genai-suite/backend/internal/safego"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"

	// Import storage backends to register them
	_ "github.com/codecentric/c4-genai-suite/backend/internal/storage/azure"
	_ "github.com/codecentric/c4-genai-suite/backend/internal/storage/gcs"
	_ "github.com/codecentric/c4-genai-suite/backend/internal/storage/local"
	_ "github.com/codecentric/c4-genai-suite/backend/internal/storage/minio"
	_ "github.com/codecentric/c4-genai-suite/backend/internal/storage/s3"
)

const rateLimitPrefix = "c4:ratelimit:"

// BuildDependencies connects the repositories, storage backend, audit targets and
// domain services, and starts the stale upload reaper bound to ctx. rdb may be
// nil when Redis is disabled; the audit publisher is then skipped and rate
// limiting falls back to in-process buckets.
func BuildDependencies(ctx context.Context, cfg *config.Config, db *sqlx.DB, rdb *redis.Client) (Dependencies, *BackgroundServices, error) {
	bg := &BackgroundServices{}

	objects, err := storage.NewStorage(cfg)
	if err != nil {
		return Dependencies{}, nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	if ensurer, ok := objects.(storage.BucketEnsurer); ok {
		if err := ensurer.EnsureBucket(ctx); err != nil {
			return Dependencies{}, nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
	}
	slog.Info("initialized storage backend", "backend", cfg.Storage.DefaultBackend)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return Dependencies{}, nil, err
	}

	auditRepo := repositories.NewAuditRepository(db)
	bucketRepo := repositories.NewBucketRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	configurationRepo := repositories.NewConfigurationRepository(db)
	extensionRepo := repositories.NewExtensionRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	userGroupRepo := repositories.NewUserGroupRepository(db)
	userRepo := repositories.NewUserRepository(db)

	auditSvc := audit.NewService(auditRepo)
	shippers, err := audit.NewMultiShipper(cfg.Audit.Shippers)
	if err != nil {
		return Dependencies{}, nil, fmt.Errorf("failed to initialize audit shippers: %w", err)
	}
	if shippers.Len() > 0 {
		auditSvc.WithTarget("shippers", shippers)
	}
	if rdb != nil {
		auditSvc.WithTarget("redis", audit.NewRedisPublisher(rdb, cfg.Redis.Channel))
	}
	bg.OnShutdown(auditSvc.Close)

	extensionSvc := extensions.NewService(
		configurationRepo,
		extensionRepo,
		userGroupRepo,
		extensions.NewExplorer(extensions.DefaultProviders()...),
		auditSvc,
	).WithBuckets(bucketRepo).WithVersion(Version)
	if cfg.EncryptionKey != "" {
		cipher, err := crypto.NewSecretCipher([]byte(cfg.EncryptionKey))
		if err != nil {
			return Dependencies{}, nil, fmt.Errorf("failed to initialize secret cipher: %w", err)
		}
		extensionSvc.WithCipher(cipher)
	} else {
		slog.Warn("ENCRYPTION_KEY not set, extension secrets are stored unencrypted")
	}

	userSvc := users.NewService(userRepo, userGroupRepo, auditSvc)

	deps := Dependencies{
		DB:             db,
		Storage:        objects,
		Tokens:         tokens,
		Admins:         userSvc,
		Configurations: extensionSvc,
		Buckets:        files.NewService(bucketRepo, fileRepo, extensionRepo, objects, auditSvc),
		Settings:       settings.NewService(settingsRepo, auditSvc),
		Users:          userSvc,
		AuditLogs:      auditlog.NewService(auditRepo),
	}

	reaper := jobs.NewStaleUploadReaper(fileRepo, objects, cfg.Uploads.StaleAfter, cfg.Uploads.ReapInterval)
	safego.Go("stale-upload-reaper", func() { reaper.Start(ctx) })
	bg.OnShutdown(func() error { reaper.Stop(); return nil })

	if cfg.RateLimit.Enabled {
		apiCfg, uploadCfg := limiterConfigs(cfg.RateLimit)
		if rdb != nil {
			deps.Limiter = middleware.NewRedisRateLimiter(rdb, rateLimitPrefix+"api:", apiCfg)
			deps.UploadLimiter = middleware.NewRedisRateLimiter(rdb, rateLimitPrefix+"upload:", uploadCfg)
		} else {
			apiLimiter := middleware.NewRateLimiter(apiCfg)
			uploadLimiter := middleware.NewRateLimiter(uploadCfg)
			bg.OnShutdown(func() error { apiLimiter.Stop(); return nil })
			bg.OnShutdown(func() error { uploadLimiter.Stop(); return nil })
			deps.Limiter = apiLimiter
			deps.UploadLimiter = uploadLimiter
		}
	}

	return deps, bg, nil
}

func limiterConfigs(cfg config.RateLimitConfig) (general, upload middleware.RateLimitConfig) {
	general = middleware.DefaultRateLimitConfig()
	general.RequestsPerMinute, general.BurstSize = cfg.RequestsPerMinute, cfg.Burst
	upload = middleware.UploadRateLimitConfig()
	upload.RequestsPerMinute, upload.BurstSize = cfg.UploadRequestsPerMinute, cfg.UploadBurst
	return general, upload
}
