// Package models - bucket.go defines the Bucket and File models for uploaded documents.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Bucket types
const (
	BucketTypeGeneral      = "general"
	BucketTypeUser         = "user"
	BucketTypeConversation = "conversation"
)

// File upload states
const (
	UploadStatusInProgress = "inProgress"
	UploadStatusSuccessful = "successful"
)

// Bucket is a container of files indexed by an external RAG service.
type Bucket struct {
	ID                        int64          `db:"id"`
	Name                      string         `db:"name"`
	Type                      string         `db:"type"`
	Endpoint                  string         `db:"endpoint"`
	IndexName                 *string        `db:"index_name"`
	Headers                   *string        `db:"headers"`
	PerUserQuota              *int64         `db:"per_user_quota"`
	AllowedFileNameExtensions StringList     `db:"allowed_file_name_extensions"`
	FileSizeLimits            FileSizeLimits `db:"file_size_limits"`
}

// FileSizeLimits maps a file extension (e.g. ".pdf") or "general" to a limit in MB.
type FileSizeLimits map[string]float64

// Scan implements sql.Scanner
func (f *FileSizeLimits) Scan(src interface{}) error {
	*f = nil
	return scanJSON(src, f)
}

// Value implements driver.Valuer
func (f FileSizeLimits) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return valueJSON(map[string]float64(f))
}

// File is one document stored in a bucket.
type File struct {
	ID           int64     `db:"id"`
	BucketID     int64     `db:"bucket_id"`
	UserID       *string   `db:"user_id"`
	FileName     string    `db:"file_name"`
	MimeType     string    `db:"mime_type"`
	FileSize     int64     `db:"file_size"`
	UploadStatus string    `db:"upload_status"`
	CreatedAt    time.Time `db:"created_at"`
}

// ObjectKey is the storage path of the file contents.
func (f *File) ObjectKey() string {
	return FileObjectKey(f.BucketID, f.ID)
}

// FileObjectKey builds the storage path for a file of a bucket.
func FileObjectKey(bucketID, fileID int64) string {
	return fmt.Sprintf("buckets/%d/files/%d", bucketID, fileID)
}
