package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
)

const megabyte = 1024 * 1024

// generalSizeLimit is the FileSizeLimits key that applies to every extension
// without its own limit
const generalSizeLimit = "general"

// UploadFileParams describes one uploaded document
type UploadFileParams struct {
	BucketID int64
	UserID   string
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

// ListFiles returns the files of a bucket, newest first
func (s *Service) ListFiles(ctx context.Context, bucketID int64) ([]*FileView, error) {
	if _, err := s.buckets.Get(ctx, bucketID); err != nil {
		return nil, notFound(err, "Bucket %d not found", bucketID)
	}
	items, err := s.files.ListByBucket(ctx, bucketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	out := make([]*FileView, 0, len(items))
	for _, f := range items {
		out = append(out, BuildFile(f))
	}
	return out, nil
}

// UploadFile checks the bucket's restrictions, stores the contents and
// records the file. The row is created first so the object key can carry the
// file id; it is removed again when the upload fails.
func (s *Service) UploadFile(ctx context.Context, params UploadFileParams) (*FileView, error) {
	bucket, err := s.buckets.Get(ctx, params.BucketID)
	if err != nil {
		return nil, notFound(err, "Bucket %d not found", params.BucketID)
	}
	if err := checkUpload(bucket, params.FileName, params.Size); err != nil {
		return nil, err
	}

	var userID *string
	if params.UserID != "" {
		userID = &params.UserID
		if bucket.PerUserQuota != nil {
			count, err := s.files.CountByBucketAndUser(ctx, bucket.ID, params.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to count files: %w", err)
			}
			if count >= *bucket.PerUserQuota {
				return nil, apperr.Validation("You have reached the limit of %d files in this bucket.", *bucket.PerUserQuota)
			}
		}
	}

	file := &models.File{
		BucketID:     bucket.ID,
		UserID:       userID,
		FileName:     params.FileName,
		MimeType:     params.MimeType,
		FileSize:     params.Size,
		UploadStatus: models.UploadStatusInProgress,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := s.objects.Upload(ctx, file.ObjectKey(), params.Body, params.Size); err != nil {
		if delErr := s.files.Delete(ctx, file.ID); delErr != nil {
			slog.ErrorContext(ctx, "failed to remove file row after upload error",
				"file_id", file.ID, "error", delErr)
		}
		return nil, apperr.Remote(fmt.Sprintf("failed to upload %s", params.FileName), err)
	}

	if err := s.files.SetUploadStatus(ctx, file.ID, models.UploadStatusSuccessful); err != nil {
		return nil, fmt.Errorf("failed to update upload status: %w", err)
	}
	file.UploadStatus = models.UploadStatusSuccessful

	slog.InfoContext(ctx, "file uploaded", "bucket_id", bucket.ID, "file_id", file.ID, "size", params.Size)
	return BuildFile(file), nil
}

// DeleteFile removes the stored contents and the row of a file
func (s *Service) DeleteFile(ctx context.Context, id int64) error {
	file, err := s.files.Get(ctx, id)
	if err != nil {
		return notFound(err, "File %d not found", id)
	}
	if err := s.deleteObject(ctx, file); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return notFound(err, "File %d not found", id)
	}
	return nil
}

// FileContent is an open download. The caller must close Body.
type FileContent struct {
	File *FileView
	Body io.ReadCloser
}

// DownloadFile opens the stored contents of a file. Files whose upload has
// not completed have no contents yet.
func (s *Service) DownloadFile(ctx context.Context, id int64) (*FileContent, error) {
	file, err := s.files.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "File %d not found", id)
	}
	if file.UploadStatus != models.UploadStatusSuccessful {
		return nil, apperr.NotFound("File %d has no content", id)
	}

	body, err := s.objects.Download(ctx, file.ObjectKey())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.WarnContext(ctx, "file object missing from storage",
			"bucket_id", file.BucketID, "file_id", file.ID, "key", file.ObjectKey())
		return nil, apperr.NotFound("File %d has no content", id)
	case err != nil:
		return nil, apperr.Remote(fmt.Sprintf("failed to download file %d", id), err)
	}
	return &FileContent{File: BuildFile(file), Body: body}, nil
}

func checkUpload(bucket *models.Bucket, fileName string, size int64) error {
	if strings.TrimSpace(fileName) == "" {
		return apperr.Validation("file name is required")
	}
	ext := strings.ToLower(filepath.Ext(fileName))

	if len(bucket.AllowedFileNameExtensions) > 0 {
		allowed := false
		for _, a := range bucket.AllowedFileNameExtensions {
			if a == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.Validation("File type %s is not allowed in bucket %s.", ext, bucket.Name)
		}
	}

	limit, ok := bucket.FileSizeLimits[ext]
	if !ok {
		limit, ok = bucket.FileSizeLimits[generalSizeLimit]
	}
	if ok && float64(size) > limit*megabyte {
		return apperr.Validation("File %s exceeds the size limit of %v MB.", fileName, limit)
	}
	return nil
}
