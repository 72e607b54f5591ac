package files

import (
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// BucketView is the API projection of a bucket
type BucketView struct {
	ID                        int64              `json:"id"`
	Name                      string             `json:"name"`
	Type                      string             `json:"type"`
	Endpoint                  string             `json:"endpoint"`
	IndexName                 *string            `json:"indexName"`
	Headers                   *string            `json:"headers"`
	PerUserQuota              *int64             `json:"perUserQuota"`
	AllowedFileNameExtensions []string           `json:"allowedFileNameExtensions"`
	FileSizeLimits            map[string]float64 `json:"fileSizeLimits"`
}

// BuildBucket projects a stored bucket. Headers are returned as stored so the
// admin UI can edit them.
func BuildBucket(b *models.Bucket) *BucketView {
	extensions := append([]string{}, b.AllowedFileNameExtensions...)
	limits := make(map[string]float64, len(b.FileSizeLimits))
	for k, v := range b.FileSizeLimits {
		limits[k] = v
	}
	return &BucketView{
		ID:                        b.ID,
		Name:                      b.Name,
		Type:                      b.Type,
		Endpoint:                  b.Endpoint,
		IndexName:                 b.IndexName,
		Headers:                   b.Headers,
		PerUserQuota:              b.PerUserQuota,
		AllowedFileNameExtensions: extensions,
		FileSizeLimits:            limits,
	}
}

// BuildBucketSnapshot returns the audit snapshot of a bucket with the headers
// masked
func BuildBucketSnapshot(b *models.Bucket) (map[string]interface{}, error) {
	view := BuildBucket(b)
	if view.Headers != nil && *view.Headers != "" {
		masked := audit.Redacted
		view.Headers = &masked
	}
	return audit.ToSnapshot(view)
}

// FileView is the API projection of a stored file
type FileView struct {
	ID           int64     `json:"id"`
	BucketID     int64     `json:"bucketId"`
	FileName     string    `json:"fileName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	UploadStatus string    `json:"uploadStatus"`
	CreatedAt    time.Time `json:"uploadedAt"`
}

// BuildFile projects a file row
func BuildFile(f *models.File) *FileView {
	return &FileView{
		ID:           f.ID,
		BucketID:     f.BucketID,
		FileName:     f.FileName,
		MimeType:     f.MimeType,
		FileSize:     f.FileSize,
		UploadStatus: f.UploadStatus,
		CreatedAt:    f.CreatedAt,
	}
}
