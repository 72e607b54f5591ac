// Package jobs holds background loops started with the server.
//
// StaleUploadReaper removes files that never left the in-progress upload state,
// which happens when the process dies between creating the file row and storing
// its contents. Rows older than maxAge are treated as abandoned: their object is
// deleted if present, then the row itself.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// StaleUploadStore lists and removes abandoned file rows
type StaleUploadStore interface {
	ListStaleUploads(ctx context.Context, cutoff time.Time) ([]*models.File, error)
	Delete(ctx context.Context, id int64) error
}

// ObjectRemover is the part of storage.Storage the reaper needs
type ObjectRemover interface {
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// StaleUploadReaper periodically deletes uploads stuck in progress.
type StaleUploadReaper struct {
	files    StaleUploadStore
	objects  ObjectRemover
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStaleUploadReaper creates a reaper. Non-positive durations default to
// one hour for maxAge and ten minutes for interval.
func NewStaleUploadReaper(files StaleUploadStore, objects ObjectRemover, maxAge, interval time.Duration) *StaleUploadReaper {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StaleUploadReaper{
		files:    files,
		objects:  objects,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval until ctx is
// cancelled or Stop is called. It blocks.
func (r *StaleUploadReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("stale upload reaper started", "interval", r.interval, "max_age", r.maxAge)
	r.runPass(ctx)

	for {
		select {
		case <-ticker.C:
			r.runPass(ctx)
		case <-r.stopChan:
			slog.Info("stale upload reaper stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals the loop to exit. Safe to call more than once.
func (r *StaleUploadReaper) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *StaleUploadReaper) runPass(ctx context.Context) {
	n, err := r.RunOnce(ctx)
	if err != nil {
		slog.Warn("stale upload reaper: pass failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("stale upload reaper: removed abandoned uploads", "count", n)
	}
}

// RunOnce removes every upload older than maxAge that is still in progress and
// returns how many rows were deleted. A file whose object cannot be removed is
// kept for the next pass.
func (r *StaleUploadReaper) RunOnce(ctx context.Context) (int, error) {
	stale, err := r.files.ListStaleUploads(ctx, r.now().Add(-r.maxAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range stale {
		key := f.ObjectKey()
		exists, err := r.objects.Exists(ctx, key)
		if err != nil {
			slog.Warn("stale upload reaper: cannot check object", "file_id", f.ID, "key", key, "error", err)
			continue
		}
		if exists {
			if err := r.objects.Delete(ctx, key); err != nil {
				slog.Warn("stale upload reaper: cannot delete object", "file_id", f.ID, "key", key, "error", err)
				continue
			}
		}
		if err := r.files.Delete(ctx, f.ID); err != nil {
			slog.Warn("stale upload reaper: cannot delete file row", "file_id", f.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
