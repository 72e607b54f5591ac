// buckets.go implements the bucket and file endpoints.
package admin

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/files"
)

// BucketService runs the bucket commands and file operations
type BucketService interface {
	CreateBucket(ctx context.Context, values files.BucketValues, by audit.PerformedBy) (*files.BucketView, error)
	UpdateBucket(ctx context.Context, id int64, values files.BucketValues, by audit.PerformedBy) (*files.BucketView, error)
	DeleteBucket(ctx context.Context, id int64, by audit.PerformedBy) error
	ListBuckets(ctx context.Context) ([]*files.BucketView, error)
	GetBucket(ctx context.Context, id int64) (*files.BucketView, error)

	ListFiles(ctx context.Context, bucketID int64) ([]*files.FileView, error)
	UploadFile(ctx context.Context, params files.UploadFileParams) (*files.FileView, error)
	DownloadFile(ctx context.Context, id int64) (*files.FileContent, error)
	DeleteFile(ctx context.Context, id int64) error
}

// BucketHandlers handles /buckets and /files
type BucketHandlers struct {
	svc BucketService
}

// NewBucketHandlers creates the bucket handlers
func NewBucketHandlers(svc BucketService) *BucketHandlers {
	return &BucketHandlers{svc: svc}
}

// ListBuckets returns all buckets
// GET /api/v1/buckets
func (h *BucketHandlers) ListBuckets(c *gin.Context) {
	items, err := h.svc.ListBuckets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*files.BucketView]{Items: items})
}

// GetBucket returns one bucket
// GET /api/v1/buckets/:id
func (h *BucketHandlers) GetBucket(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetBucket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateBucket creates a bucket
// POST /api/v1/buckets
func (h *BucketHandlers) CreateBucket(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values files.BucketValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.CreateBucket(c.Request.Context(), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateBucket applies a partial update
// PUT /api/v1/buckets/:id
func (h *BucketHandlers) UpdateBucket(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var values files.BucketValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateBucket(c.Request.Context(), id, values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Delete bucket
// @Description  Deletes a bucket with all its files. Fails while an extension refers to the bucket.
// @Tags         Buckets
// @Security     Bearer
// @Param        id  path  int  true  "Bucket ID"
// @Success      204
// @Failure      400  {object}  map[string]interface{}  "Bucket in use"
// @Failure      502  {object}  map[string]interface{}  "File store failure"
// @Router       /api/v1/buckets/{id} [delete]
func (h *BucketHandlers) DeleteBucket(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBucket(c.Request.Context(), id, by); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFiles returns the files of a bucket
// GET /api/v1/buckets/:id/files
func (h *BucketHandlers) ListFiles(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListFiles(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*files.FileView]{Items: items})
}

// UploadFile stores the multipart "file" field in a bucket
// POST /api/v1/buckets/:id/files
func (h *BucketHandlers) UploadFile(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.Validation("file is required"))
		return
	}
	body, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	view, err := h.svc.UploadFile(c.Request.Context(), files.UploadFileParams{
		BucketID: id,
		UserID:   by.ID,
		FileName: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Body:     body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DownloadFile streams the stored contents of a file as an attachment
// GET /api/v1/files/:id/content
func (h *BucketHandlers) DownloadFile(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	content, err := h.svc.DownloadFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer content.Body.Close()

	mimeType := content.File.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": content.File.FileName})
	c.DataFromReader(http.StatusOK, content.File.FileSize, mimeType, content.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// DeleteFile removes a file and its stored object
// DELETE /api/v1/files/:id
func (h *BucketHandlers) DeleteFile(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteFile(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
