// bucket_repository.go implements BucketRepository and FileRepository for document buckets
// and the files stored in them.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const bucketColumns = `id, name, type, endpoint, index_name, headers, per_user_quota,
	allowed_file_name_extensions, file_size_limits`

// BucketRepository handles bucket database operations
type BucketRepository struct {
	db *sqlx.DB
}

// NewBucketRepository creates a new BucketRepository
func NewBucketRepository(db *sqlx.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

// Get returns a bucket by id
func (r *BucketRepository) Get(ctx context.Context, id int64) (*models.Bucket, error) {
	var b models.Bucket
	err := r.db.GetContext(ctx, &b, `SELECT `+bucketColumns+` FROM buckets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all buckets ordered by id
func (r *BucketRepository) List(ctx context.Context) ([]*models.Bucket, error) {
	buckets := make([]*models.Bucket, 0)
	err := r.db.SelectContext(ctx, &buckets, `SELECT `+bucketColumns+` FROM buckets ORDER BY id`)
	return buckets, err
}

// Create inserts a bucket and sets its id
func (r *BucketRepository) Create(ctx context.Context, b *models.Bucket) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO buckets (name, type, endpoint, index_name, headers, per_user_quota,
			allowed_file_name_extensions, file_size_limits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.Name, b.Type, b.Endpoint, b.IndexName, b.Headers, b.PerUserQuota,
		b.AllowedFileNameExtensions, b.FileSizeLimits,
	).Scan(&b.ID)
}

// Update writes all mutable columns of b
func (r *BucketRepository) Update(ctx context.Context, b *models.Bucket) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE buckets SET
			name = $2, type = $3, endpoint = $4, index_name = $5, headers = $6, per_user_quota = $7,
			allowed_file_name_extensions = $8, file_size_limits = $9
		WHERE id = $1`,
		b.ID, b.Name, b.Type, b.Endpoint, b.IndexName, b.Headers, b.PerUserQuota,
		b.AllowedFileNameExtensions, b.FileSizeLimits)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// Delete removes a bucket and, through the cascade, its file rows
func (r *BucketRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM buckets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

const fileColumns = `id, bucket_id, user_id, file_name, mime_type, file_size, upload_status, created_at`

// FileRepository handles file database operations
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Get returns a file by id
func (r *FileRepository) Get(ctx context.Context, id int64) (*models.File, error) {
	var f models.File
	err := r.db.GetContext(ctx, &f, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListByBucket returns the files of a bucket, newest first
func (r *FileRepository) ListByBucket(ctx context.Context, bucketID int64) ([]*models.File, error) {
	files := make([]*models.File, 0)
	err := r.db.SelectContext(ctx, &files,
		`SELECT `+fileColumns+` FROM files WHERE bucket_id = $1 ORDER BY created_at DESC, id DESC`, bucketID)
	return files, err
}

// CountByBucketAndUser returns the number of files a user stored in a bucket
func (r *FileRepository) CountByBucketAndUser(ctx context.Context, bucketID int64, userID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM files WHERE bucket_id = $1 AND user_id = $2`, bucketID, userID)
	return count, err
}

// ListStaleUploads returns files still marked in progress that were created before cutoff
func (r *FileRepository) ListStaleUploads(ctx context.Context, cutoff time.Time) ([]*models.File, error) {
	files := make([]*models.File, 0)
	err := r.db.SelectContext(ctx, &files,
		`SELECT `+fileColumns+` FROM files WHERE upload_status = $1 AND created_at < $2 ORDER BY id`,
		models.UploadStatusInProgress, cutoff)
	return files, err
}

// Create inserts a file and sets its id and creation time
func (r *FileRepository) Create(ctx context.Context, f *models.File) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO files (bucket_id, user_id, file_name, mime_type, file_size, upload_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		f.BucketID, f.UserID, f.FileName, f.MimeType, f.FileSize, f.UploadStatus,
	).Scan(&f.ID, &f.CreatedAt)
}

// SetUploadStatus updates the upload state of a file
func (r *FileRepository) SetUploadStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET upload_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// Delete removes a file row
func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}
