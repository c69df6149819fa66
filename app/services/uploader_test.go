package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/storage"
)

var fixedTime = time.Unix(1700000000, 0)

func fixedNow() time.Time { return fixedTime }

func png(name string, size int) services.UploadFile {
	return services.UploadFile{
		Name:        name,
		ContentType: "image/png",
		Data:        make([]byte, size),
	}
}

func TestUploaderValidate_CapRejectsWholeBatch(t *testing.T) {
	u := services.NewUploaderWith(storage.NewMemDisk("http://cdn.test"), "newsmedia", fixedNow)
	defer u.Close()

	// 3 already stored + 3 new = 6 > 5: everything is refused, even files
	// that would pass the per-file checks.
	files := []services.UploadFile{png("a.png", 10), png("b.png", 10), png("c.png", 10)}
	accepted, rejected := u.Validate(files, 3)

	assert.Empty(t, accepted)
	require.Len(t, rejected, 3)
	for _, rej := range rejected {
		assert.Contains(t, rej.Reason, "at most 5 images")
	}
}

func TestUploaderValidate_FiltersMimeAndSize(t *testing.T) {
	u := services.NewUploaderWith(storage.NewMemDisk("http://cdn.test"), "newsmedia", fixedNow)
	defer u.Close()

	files := []services.UploadFile{
		png("ok.png", 128),
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		png("huge.png", 50*1024*1024+1),
	}
	accepted, rejected := u.Validate(files, 0)

	require.Len(t, accepted, 1)
	assert.Equal(t, "ok.png", accepted[0].Name)

	require.Len(t, rejected, 2)
	assert.Equal(t, "notes.txt", rejected[0].Name)
	assert.Contains(t, rejected[0].Reason, "only image files")
	assert.Equal(t, "huge.png", rejected[1].Name)
	assert.Contains(t, rejected[1].Reason, "50 MiB")
}

func TestUploaderUpload_KeysAndOrder(t *testing.T) {
	mem := storage.NewMemDisk("http://cdn.test")
	u := services.NewUploaderWith(mem, "newsmedia", fixedNow)
	defer u.Close()

	files := []services.UploadFile{png("first.png", 8), png("second.jpg", 8), png("third.webp", 8)}
	urls, err := u.Upload(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, urls, 3)

	base := fixedTime.UnixNano()
	assert.Equal(t, fmt.Sprintf("http://cdn.test/newsmedia/%d.png", base), urls[0])
	assert.Equal(t, fmt.Sprintf("http://cdn.test/newsmedia/%d.jpg", base+1), urls[1])
	assert.Equal(t, fmt.Sprintf("http://cdn.test/newsmedia/%d.webp", base+2), urls[2])
	assert.Equal(t, 3, mem.FileCount())
}

func TestUploaderUpload_RollsBackOnPartialFailure(t *testing.T) {
	mem := storage.NewMemDisk("http://cdn.test")
	base := fixedTime.UnixNano()
	mem.FailPut[fmt.Sprintf("newsmedia/%d.jpg", base+1)] = true

	u := services.NewUploaderWith(mem, "newsmedia", fixedNow)
	defer u.Close()

	urls, err := u.Upload(context.Background(), []services.UploadFile{
		png("first.png", 8), png("second.jpg", 8), png("third.webp", 8),
	})
	require.Error(t, err)
	assert.Nil(t, urls)

	var uploadErr *services.UploadError
	assert.True(t, errors.As(err, &uploadErr))

	// The objects stored before the failure are gone again.
	assert.Equal(t, 0, mem.FileCount())
}

func TestUploaderUpload_EmptyBatch(t *testing.T) {
	mem := storage.NewMemDisk("http://cdn.test")
	u := services.NewUploaderWith(mem, "newsmedia", fixedNow)
	defer u.Close()

	urls, err := u.Upload(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, urls)
	assert.Equal(t, 0, mem.FileCount())
}

func TestUploaderUpload_CancelledContext(t *testing.T) {
	mem := storage.NewMemDisk("http://cdn.test")
	u := services.NewUploaderWith(mem, "newsmedia", fixedNow)
	defer u.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Upload(ctx, []services.UploadFile{png("a.png", 8)})
	var uploadErr *services.UploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, 0, mem.FileCount())
}
