package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/patch"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// BucketValues are the editable fields of a bucket. IndexName, Headers and
// PerUserQuota can be cleared with an explicit null.
type BucketValues struct {
	Name                      *string                `json:"name"`
	Type                      *string                `json:"type"`
	Endpoint                  *string                `json:"endpoint"`
	IndexName                 patch.Nullable[string] `json:"indexName"`
	Headers                   patch.Nullable[string] `json:"headers"`
	PerUserQuota              patch.Nullable[int64]  `json:"perUserQuota"`
	AllowedFileNameExtensions *[]string              `json:"allowedFileNameExtensions"`
	FileSizeLimits            *map[string]float64    `json:"fileSizeLimits"`
}

func (v BucketValues) applyTo(b *models.Bucket) {
	patch.Assign(&b.Name, v.Name)
	patch.Assign(&b.Type, v.Type)
	patch.Assign(&b.Endpoint, v.Endpoint)
	v.IndexName.Apply(&b.IndexName)
	v.Headers.Apply(&b.Headers)
	v.PerUserQuota.Apply(&b.PerUserQuota)
	if v.AllowedFileNameExtensions != nil {
		b.AllowedFileNameExtensions = normalizeExtensions(*v.AllowedFileNameExtensions)
	}
	if v.FileSizeLimits != nil {
		b.FileSizeLimits = models.FileSizeLimits(*v.FileSizeLimits)
	}
}

func validateBucket(b *models.Bucket) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperr.Validation("name is required")
	}
	if strings.TrimSpace(b.Endpoint) == "" {
		return apperr.Validation("endpoint is required")
	}
	switch b.Type {
	case models.BucketTypeGeneral, models.BucketTypeUser, models.BucketTypeConversation:
	default:
		return apperr.Validation("invalid bucket type %q", b.Type)
	}
	if b.PerUserQuota != nil && *b.PerUserQuota < 0 {
		return apperr.Validation("perUserQuota must not be negative")
	}
	for ext, limit := range b.FileSizeLimits {
		if limit <= 0 {
			return apperr.Validation("file size limit for %s must be positive", ext)
		}
	}
	return nil
}

// normalizeExtensions lowercases and dot-prefixes file name extensions
func normalizeExtensions(in []string) models.StringList {
	out := make(models.StringList, 0, len(in))
	for _, ext := range in {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// CreateBucket creates a bucket of type general unless another type is given
func (s *Service) CreateBucket(ctx context.Context, values BucketValues, by audit.PerformedBy) (_ *BucketView, err error) {
	defer func() { telemetry.ObserveCommand("CreateBucket", apperr.Outcome(err)) }()

	entity := &models.Bucket{Type: models.BucketTypeGeneral}
	values.applyTo(entity)
	if err := validateBucket(entity); err != nil {
		return nil, err
	}

	if err := s.buckets.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	snapshot, err := BuildBucketSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, strconv.FormatInt(entity.ID, 10), models.AuditActionCreate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildBucket(entity), nil
}

// UpdateBucket applies a partial update
func (s *Service) UpdateBucket(ctx context.Context, id int64, values BucketValues, by audit.PerformedBy) (_ *BucketView, err error) {
	defer func() { telemetry.ObserveCommand("UpdateBucket", apperr.Outcome(err)) }()

	entity, err := s.buckets.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bucket %d not found", id)
	}
	values.applyTo(entity)
	if err := validateBucket(entity); err != nil {
		return nil, err
	}

	if err := s.buckets.Update(ctx, entity); err != nil {
		return nil, notFound(err, "Bucket %d not found", id)
	}

	snapshot, err := BuildBucketSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, strconv.FormatInt(id, 10), models.AuditActionUpdate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildBucket(entity), nil
}

// DeleteBucket removes a bucket that no extension uses. The remote objects of
// its files are removed first; objects that are already gone are skipped and
// any other storage failure aborts before the row is deleted.
func (s *Service) DeleteBucket(ctx context.Context, id int64, by audit.PerformedBy) (err error) {
	defer func() { telemetry.ObserveCommand("DeleteBucket", apperr.Outcome(err)) }()

	entity, err := s.buckets.Get(ctx, id)
	if err != nil {
		return notFound(err, "Bucket %d not found", id)
	}

	used, err := s.extensions.ExistsWithValues(ctx, map[string]interface{}{"bucket": id})
	if err != nil {
		return fmt.Errorf("failed to check bucket usage: %w", err)
	}
	if used {
		return apperr.Validation("Bucket %s cannot be deleted because it is used by one or more extensions.", entity.Name)
	}

	snapshot, err := BuildBucketSnapshot(entity)
	if err != nil {
		return err
	}

	files, err := s.files.ListByBucket(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files {
		if err := s.deleteObject(ctx, f); err != nil {
			return err
		}
	}

	if err := s.buckets.Delete(ctx, id); err != nil {
		return notFound(err, "Bucket %d not found", id)
	}

	return s.writeAudit(ctx, strconv.FormatInt(id, 10), models.AuditActionDelete, by, snapshot)
}

// deleteObject removes the stored contents of f, tolerating missing objects
func (s *Service) deleteObject(ctx context.Context, f *models.File) error {
	key := f.ObjectKey()
	err := s.objects.Delete(ctx, key)
	switch {
	case err == nil:
		telemetry.BucketObjectDeletesTotal.WithLabelValues("deleted").Inc()
		return nil
	case errors.Is(err, storage.ErrNotFound):
		telemetry.BucketObjectDeletesTotal.WithLabelValues("missing").Inc()
		slog.WarnContext(ctx, "file object already missing from storage",
			"bucket_id", f.BucketID, "file_id", f.ID, "key", key)
		return nil
	default:
		return apperr.Remote(fmt.Sprintf("failed to delete file %d from storage", f.ID), err)
	}
}

// ListBuckets returns every bucket
func (s *Service) ListBuckets(ctx context.Context) ([]*BucketView, error) {
	items, err := s.buckets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	out := make([]*BucketView, 0, len(items))
	for _, b := range items {
		out = append(out, BuildBucket(b))
	}
	return out, nil
}

// GetBucket returns one bucket
func (s *Service) GetBucket(ctx context.Context, id int64) (*BucketView, error) {
	b, err := s.buckets.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bucket %d not found", id)
	}
	return BuildBucket(b), nil
}
