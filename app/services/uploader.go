package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/storage"
	"github.com/matjarhq/matjar/pkg/workerpool"
)

// UploadFile is one file offered to the pipeline.
type UploadFile struct {
	Name        string // original filename, source of the stored extension
	ContentType string
	Data        []byte
}

// RejectedFile pairs a refused file with the reason.
type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Uploader validates and stores catalog images. Validation is pure;
// Upload moves bytes and is atomic per batch.
type Uploader struct {
	disk      storage.Disk // nil means "default disk", resolved per call
	dir       string       // media directory inside the store, e.g. "newsmedia"
	pool      *workerpool.Pool
	now       func() time.Time
	maxImages int
	maxBytes  int64
}

// NewUploader builds an uploader writing into dir on the default disk.
// The disk is resolved at upload time so construction works before the
// storage manager has booted.
func NewUploader(dir string) *Uploader {
	return NewUploaderWith(nil, dir, nil)
}

// NewUploaderWith builds an uploader on an explicit disk and clock.
// Tests use this with a MemDisk and a fixed clock.
func NewUploaderWith(disk storage.Disk, dir string, now func() time.Time) *Uploader {
	if now == nil {
		now = time.Now
	}
	return &Uploader{
		disk:      disk,
		dir:       strings.Trim(dir, "/"),
		pool:      workerpool.New(4),
		now:       now,
		maxImages: config.MaxItemImages(),
		maxBytes:  config.MaxImageBytes(),
	}
}

func (u *Uploader) store() storage.Disk {
	if u.disk != nil {
		return u.disk
	}
	return storage.DefaultDisk()
}

// Close releases the upload workers.
func (u *Uploader) Close() {
	u.pool.Shutdown()
}

// Validate checks a batch against the pipeline's rules without touching the
// network. The image cap is a batch-level rule: if existingCount plus the
// whole batch exceeds it, everything is rejected before any per-file check.
// Otherwise files are filtered one by one — non-image MIME types and files
// over the size limit land in rejected, the rest in accepted.
func (u *Uploader) Validate(files []UploadFile, existingCount int) (accepted []UploadFile, rejected []RejectedFile) {
	if existingCount+len(files) > u.maxImages {
		for _, f := range files {
			rejected = append(rejected, RejectedFile{
				Name:   f.Name,
				Reason: fmt.Sprintf("an item can hold at most %d images", u.maxImages),
			})
		}
		return nil, rejected
	}

	for _, f := range files {
		switch {
		case !strings.HasPrefix(f.ContentType, "image/"):
			rejected = append(rejected, RejectedFile{Name: f.Name, Reason: "only image files are allowed"})
		case int64(len(f.Data)) > u.maxBytes:
			rejected = append(rejected, RejectedFile{
				Name:   f.Name,
				Reason: fmt.Sprintf("file exceeds the %d MiB limit", u.maxBytes/(1024*1024)),
			})
		default:
			accepted = append(accepted, f)
		}
	}
	return accepted, rejected
}

// Upload stores every file and returns their public URLs in input order.
// The batch is atomic: if any single store fails, the objects already
// written are removed and the whole call fails with an *UploadError.
// An empty batch returns no URLs and performs no store calls.
func (u *Uploader) Upload(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &UploadError{Err: err}
	}

	keys := make([]string, len(files))
	base := u.now().UnixNano()
	for i, f := range files {
		keys[i] = u.dir + "/" + fmt.Sprintf("%d.%s", base+int64(i), extension(f.Name))
	}

	// Bounded-parallel stores through the worker pool; the batch still
	// succeeds or fails as one unit.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	stored := make([]bool, len(files))

	for i := range files {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := u.store().Put(keys[i], files[i].Data); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			stored[i] = true
			mu.Unlock()
		}
		if err := u.pool.SubmitWait(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		u.rollback(keys, stored)
		metrics.ImageUploads.WithLabelValues("failed").Add(float64(len(files)))
		return nil, &UploadError{Err: errs[0]}
	}

	metrics.ImageUploads.WithLabelValues("success").Add(float64(len(files)))

	urls := make([]string, len(keys))
	for i, key := range keys {
		urls[i] = u.store().URL(key)
	}
	return urls, nil
}

// rollback removes the objects a failed batch managed to store.
func (u *Uploader) rollback(keys []string, stored []bool) {
	for i, ok := range stored {
		if !ok {
			continue
		}
		if err := u.store().Delete(keys[i]); err != nil {
			logger.Warn("uploader: rollback failed to remove object",
				"key", keys[i], "error", err)
		}
	}
}

// extension returns the lowercase filename extension without the dot, or
// "bin" when the name has none.
func extension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}
