package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/storage"
)

// newTestStorage creates a LocalStorage backed by a temporary directory
func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := New(&config.LocalStorageConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatal("New:", err)
	}
	return s
}

func TestNew_CreatesDirectory(t *testing.T) {
	subDir := filepath.Join(t.TempDir(), "a", "b", "c")
	if _, err := New(&config.LocalStorageConfig{BasePath: subDir}); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(subDir); os.IsNotExist(err) {
		t.Error("New() did not create base directory")
	}
}

func TestNew_MissingBasePath(t *testing.T) {
	if _, err := New(&config.LocalStorageConfig{}); err == nil {
		t.Error("New() = nil error, want error for empty base path")
	}
}

func TestUploadDownload(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	data := "hello bucket"
	result, err := s.Upload(ctx, "buckets/1/files/2", strings.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if result.Key != "buckets/1/files/2" {
		t.Errorf("Key = %q", result.Key)
	}
	if result.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", result.Size, len(data))
	}
	if len(result.Checksum) != 64 {
		t.Errorf("Checksum = %q, want 64 hex chars", result.Checksum)
	}

	rc, err := s.Download(ctx, "buckets/1/files/2")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != data {
		t.Errorf("Download() = %q, want %q", got, data)
	}
}

func TestUpload_ChecksumConsistency(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	r1, err := s.Upload(ctx, "a", strings.NewReader("same"), 4)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := s.Upload(ctx, "b", strings.NewReader("same"), 4)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Checksum != r2.Checksum {
		t.Errorf("checksums differ: %s vs %s", r1.Checksum, r2.Checksum)
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Download(context.Background(), "nonexistent.txt")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "to-delete.txt", strings.NewReader("bye"), 3); err != nil {
		t.Fatal("Upload:", err)
	}
	if err := s.Delete(ctx, "to-delete.txt"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, _ := s.Exists(ctx, "to-delete.txt")
	if exists {
		t.Error("Delete() file still exists after deletion")
	}
}

func TestDelete_NonExistentFile(t *testing.T) {
	s := newTestStorage(t)

	err := s.Delete(context.Background(), "does-not-exist.txt")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_CleansUpEmptyParentDirs(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "sub/leaf.txt", strings.NewReader("x"), 1); err != nil {
		t.Fatal("Upload:", err)
	}
	if err := s.Delete(ctx, "sub/leaf.txt"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.basePath, "sub")); !os.IsNotExist(err) {
		t.Error("Delete() should clean up empty parent directory 'sub'")
	}
}

func TestExists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "missing")
	if err != nil || exists {
		t.Fatalf("Exists(missing) = %v, %v", exists, err)
	}

	if _, err := s.Upload(ctx, "present", strings.NewReader("x"), 1); err != nil {
		t.Fatal(err)
	}
	exists, err = s.Exists(ctx, "present")
	if err != nil || !exists {
		t.Fatalf("Exists(present) = %v, %v", exists, err)
	}
}

func TestKeyEscapingBaseDir(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "../outside", strings.NewReader("x"), 1); err == nil {
		t.Error("Upload() accepted a key outside the base directory")
	}
	if err := s.Delete(ctx, "../../etc/passwd"); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() error = %v, want invalid key error", err)
	}
}
