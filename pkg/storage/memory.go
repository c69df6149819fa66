package storage

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemDisk is an in-memory Disk. Tests register one with RegisterDisk to keep
// upload and delete flows off the real filesystem.
type MemDisk struct {
	mu    sync.RWMutex
	files map[string][]byte
	mtime map[string]time.Time

	// FailPut / FailDelete make the named paths error, for exercising
	// failure branches.
	FailPut    map[string]bool
	FailDelete map[string]bool

	baseURL string
}

// NewMemDisk creates an empty in-memory disk whose URL method prefixes
// paths with baseURL.
func NewMemDisk(baseURL string) *MemDisk {
	return &MemDisk{
		files:      map[string][]byte{},
		mtime:      map[string]time.Time{},
		FailPut:    map[string]bool{},
		FailDelete: map[string]bool{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (d *MemDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailPut[path] {
		return fmt.Errorf("storage/memory: put %s: forced failure", path)
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	d.files[path] = buf
	d.mtime[path] = time.Now()
	return nil
}

func (d *MemDisk) PutStream(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return d.Put(path, data)
}

func (d *MemDisk) Get(path string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("storage/memory: get %s: not found", path)
	}
	return data, nil
}

func (d *MemDisk) GetStream(path string) (io.ReadCloser, error) {
	data, err := d.Get(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *MemDisk) Exists(path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.files[path]
	return ok
}

func (d *MemDisk) Missing(path string) bool { return !d.Exists(path) }

func (d *MemDisk) Size(path string) (int64, error) {
	data, err := d.Get(path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (d *MemDisk) LastModified(path string) (time.Time, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.mtime[path]
	if !ok {
		return time.Time{}, fmt.Errorf("storage/memory: stat %s: not found", path)
	}
	return t, nil
}

func (d *MemDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *MemDisk) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailDelete[path] {
		return fmt.Errorf("storage/memory: delete %s: forced failure", path)
	}
	delete(d.files, path)
	delete(d.mtime, path)
	return nil
}

func (d *MemDisk) Copy(src, dst string) error {
	data, err := d.Get(src)
	if err != nil {
		return err
	}
	return d.Put(dst, data)
}

func (d *MemDisk) Move(src, dst string) error {
	if err := d.Copy(src, dst); err != nil {
		return err
	}
	return d.Delete(src)
}

func (d *MemDisk) Files(directory string) ([]string, error) {
	prefix := strings.Trim(directory, "/") + "/"
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	for path := range d.files {
		if strings.HasPrefix(path, prefix) && !strings.Contains(path[len(prefix):], "/") {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (d *MemDisk) AllFiles(directory string) ([]string, error) {
	prefix := strings.Trim(directory, "/") + "/"
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	for path := range d.files {
		if strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (d *MemDisk) MakeDirectory(_ string) error { return nil }

func (d *MemDisk) DeleteDirectory(path string) error {
	keys, _ := d.AllFiles(path)
	for _, k := range keys {
		if err := d.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// FileCount returns how many objects the disk holds.
func (d *MemDisk) FileCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.files)
}
