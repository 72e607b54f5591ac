// Package files implements the bucket commands and the file operations of a
// bucket. Bucket mutations are audited; individual files are not.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
)

// BucketStore persists buckets
type BucketStore interface {
	Get(ctx context.Context, id int64) (*models.Bucket, error)
	List(ctx context.Context) ([]*models.Bucket, error)
	Create(ctx context.Context, b *models.Bucket) error
	Update(ctx context.Context, b *models.Bucket) error
	Delete(ctx context.Context, id int64) error
}

// FileStore persists file rows
type FileStore interface {
	Get(ctx context.Context, id int64) (*models.File, error)
	ListByBucket(ctx context.Context, bucketID int64) ([]*models.File, error)
	CountByBucketAndUser(ctx context.Context, bucketID int64, userID string) (int64, error)
	Create(ctx context.Context, f *models.File) error
	SetUploadStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// ExtensionUsage tells whether an extension refers to a bucket
type ExtensionUsage interface {
	ExistsWithValues(ctx context.Context, values map[string]interface{}) (bool, error)
}

// ObjectStore is the part of storage.Storage the file operations need
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) (*storage.UploadResult, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AuditLogger appends audit entries
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error)
}

// Service runs bucket and file commands
type Service struct {
	buckets    BucketStore
	files      FileStore
	extensions ExtensionUsage
	objects    ObjectStore
	audit      AuditLogger
}

// NewService creates the bucket service
func NewService(buckets BucketStore, files FileStore, extensions ExtensionUsage, objects ObjectStore, auditLogger AuditLogger) *Service {
	return &Service{
		buckets:    buckets,
		files:      files,
		extensions: extensions,
		objects:    objects,
		audit:      auditLogger,
	}
}

func (s *Service) writeAudit(ctx context.Context, entityID, action string, by audit.PerformedBy, snapshot map[string]interface{}) error {
	_, err := s.audit.CreateAuditLog(ctx, audit.CreateAuditLogParams{
		EntityType: models.EntityTypeBucket,
		EntityID:   entityID,
		Action:     action,
		UserID:     by.ID,
		UserName:   by.UserName(),
		Snapshot:   snapshot,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
