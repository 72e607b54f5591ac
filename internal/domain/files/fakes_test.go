package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
)

type memoryBuckets struct {
	items  map[int64]*models.Bucket
	nextID int64
}

func (m *memoryBuckets) Get(_ context.Context, id int64) (*models.Bucket, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *memoryBuckets) List(_ context.Context) ([]*models.Bucket, error) {
	out := make([]*models.Bucket, 0, len(m.items))
	for _, b := range m.items {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryBuckets) Create(_ context.Context, b *models.Bucket) error {
	m.nextID++
	b.ID = m.nextID
	c := *b
	m.items[b.ID] = &c
	return nil
}

func (m *memoryBuckets) Update(_ context.Context, b *models.Bucket) error {
	if _, ok := m.items[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	c := *b
	m.items[b.ID] = &c
	return nil
}

func (m *memoryBuckets) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryFiles struct {
	items  map[int64]*models.File
	nextID int64
}

func (m *memoryFiles) Get(_ context.Context, id int64) (*models.File, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *f
	return &out, nil
}

func (m *memoryFiles) ListByBucket(_ context.Context, bucketID int64) ([]*models.File, error) {
	var out []*models.File
	for _, f := range m.items {
		if f.BucketID == bucketID {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryFiles) CountByBucketAndUser(_ context.Context, bucketID int64, userID string) (int64, error) {
	var n int64
	for _, f := range m.items {
		if f.BucketID == bucketID && f.UserID != nil && *f.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryFiles) Create(_ context.Context, f *models.File) error {
	m.nextID++
	f.ID = m.nextID
	f.CreatedAt = time.Now()
	c := *f
	m.items[f.ID] = &c
	return nil
}

func (m *memoryFiles) SetUploadStatus(_ context.Context, id int64, status string) error {
	f, ok := m.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.UploadStatus = status
	return nil
}

func (m *memoryFiles) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type usage struct {
	buckets map[int64]bool
}

func (u usage) ExistsWithValues(_ context.Context, values map[string]interface{}) (bool, error) {
	id, ok := values["bucket"].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected filter %v", values)
	}
	return u.buckets[id], nil
}

type memoryObjects struct {
	objects     map[string][]byte
	uploadErr   error
	downloadErr error
	deleteErr   map[string]error
}

func (m *memoryObjects) Upload(_ context.Context, key string, reader io.Reader, _ int64) (*storage.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	return &storage.UploadResult{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryObjects) Download(_ context.Context, key string) (io.ReadCloser, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	if err := m.deleteErr[key]; err != nil {
		return err
	}
	if _, ok := m.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

type recordingAudit struct {
	entries []audit.CreateAuditLogParams
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error) {
	r.entries = append(r.entries, params)
	return &models.AuditLog{ID: int64(len(r.entries)), EntityType: params.EntityType, EntityID: params.EntityID}, nil
}

type fixture struct {
	svc     *Service
	buckets *memoryBuckets
	files   *memoryFiles
	usage   usage
	objects *memoryObjects
	audit   *recordingAudit
}

func newFixture() *fixture {
	f := &fixture{
		buckets: &memoryBuckets{items: map[int64]*models.Bucket{}},
		files:   &memoryFiles{items: map[int64]*models.File{}},
		usage:   usage{buckets: map[int64]bool{}},
		objects: &memoryObjects{objects: map[string][]byte{}, deleteErr: map[string]error{}},
		audit:   &recordingAudit{},
	}
	f.svc = NewService(f.buckets, f.files, f.usage, f.objects, f.audit)
	return f
}

var (
	admin          = audit.PerformedBy{ID: "u1", Name: "Alice"}
	errUnavailable = errors.New("service unavailable")
)

func strPtr(s string) *string { return &s }
