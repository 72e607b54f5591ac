// Package storage defines the Storage interface implemented by every backend
// that holds bucket file objects.
//
// Backends register themselves with the factory from an init() function in
// their own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (storage.Storage, error) {
//	        return New(&cfg.Storage.MyBackend)
//	    })
//	}
//
// cmd/server blank-imports each backend so that its init() runs.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download and Delete when no object exists under
// the requested key. Backends map their own 404 equivalents onto it.
var ErrNotFound = errors.New("object not found")

// Storage stores file objects under flat, slash separated keys
type Storage interface {
	// Upload stores the reader's content under key
	Upload(ctx context.Context, key string, reader io.Reader, size int64) (*UploadResult, error)

	// Download returns a reader over the object's content
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Missing objects yield ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}

// UploadResult contains information about an uploaded object
type UploadResult struct {
	// Key is the storage key the object was stored under
	Key string

	// Size is the object size in bytes
	Size int64

	// Checksum is the hex SHA256 of the object contents
	Checksum string
}

// BucketEnsurer is implemented by backends that can create their target
// bucket or container on startup.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}
