package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/orm"
)

// recordingFetch captures every filter the controller issues.
type recordingFetch struct {
	mu      sync.Mutex
	filters []repositories.NewsFilter
	calls   atomic.Int32
}

func (r *recordingFetch) fn(items []models.News, total int64) services.FetchFunc {
	return func(_ context.Context, f repositories.NewsFilter) ([]models.News, orm.Pagination, error) {
		r.calls.Add(1)
		r.mu.Lock()
		r.filters = append(r.filters, f)
		r.mu.Unlock()
		return items, orm.Pagination{Page: f.Page, PageSize: f.PageSize, Total: total}, nil
	}
}

func (r *recordingFetch) last() repositories.NewsFilter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.filters) == 0 {
		return repositories.NewsFilter{}
	}
	return r.filters[len(r.filters)-1]
}

func waitUpdate(t *testing.T, updates <-chan struct{}) {
	t.Helper()
	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
	}
}

func newQuery(t *testing.T, fetch services.FetchFunc, pageSize int, debounce time.Duration) (*services.ListQuery, chan struct{}) {
	t.Helper()
	q := services.NewListQueryWith(fetch, pageSize, debounce, false)
	updates := make(chan struct{}, 16)
	q.OnUpdate = func([]models.News, orm.Pagination) { updates <- struct{}{} }
	t.Cleanup(q.Close)
	return q, updates
}

func TestListQuery_DebounceFiresOnceWithFinalTerm(t *testing.T) {
	rec := &recordingFetch{}
	q, updates := newQuery(t, rec.fn(nil, 0), 10, 40*time.Millisecond)

	// Three keystrokes inside the quiet period: only the final term fetches.
	q.SetSearchText("b")
	q.SetSearchText("bu")
	q.SetSearchText("burger")

	waitUpdate(t, updates)
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, "burger", rec.last().Search)
	assert.Equal(t, 1, rec.last().Page)
	assert.Equal(t, "burger", q.EffectiveSearch())
}

func TestListQuery_UnchangedTermDoesNotRefetch(t *testing.T) {
	rec := &recordingFetch{}
	q, updates := newQuery(t, rec.fn(nil, 0), 10, 10*time.Millisecond)

	q.SetSearchText("shawarma")
	waitUpdate(t, updates)
	require.Equal(t, int32(1), rec.calls.Load())

	// Typing the same text again settles on the same effective term.
	q.SetSearchText("shawarma")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestListQuery_FilterChangeResetsPageButSetPageDoesNot(t *testing.T) {
	rec := &recordingFetch{}
	q, updates := newQuery(t, rec.fn(nil, 0), 10, time.Millisecond)

	q.Start()
	waitUpdate(t, updates)

	q.SetPage(3)
	waitUpdate(t, updates)
	assert.Equal(t, 3, rec.last().Page)

	q.SetCategory("cat-1")
	waitUpdate(t, updates)
	assert.Equal(t, 1, rec.last().Page)
	assert.Equal(t, "cat-1", rec.last().CategoryID)

	q.SetPage(2)
	waitUpdate(t, updates)
	assert.Equal(t, 2, rec.last().Page)
	assert.Equal(t, "cat-1", rec.last().CategoryID, "paging keeps the filters")

	q.SetStatus("urgent")
	waitUpdate(t, updates)
	assert.Equal(t, 1, rec.last().Page)
	assert.Equal(t, "urgent", rec.last().Status)
}

func TestListQuery_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	fetch := func(_ context.Context, f repositories.NewsFilter) ([]models.News, orm.Pagination, error) {
		if f.Page == 1 {
			<-release // first query hangs until after the second lands
			return []models.News{{ID: "stale"}}, orm.Pagination{Page: 1}, nil
		}
		return []models.News{{ID: "fresh"}}, orm.Pagination{Page: 2}, nil
	}
	q, updates := newQuery(t, fetch, 10, time.Millisecond)

	q.Start()      // page 1, slow
	q.SetPage(2)   // page 2, fast
	waitUpdate(t, updates)
	close(release) // let the stale response arrive

	time.Sleep(50 * time.Millisecond)
	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
	assert.Empty(t, updates, "the stale response must not trigger an update")
}

func TestListQuery_FetchErrorReachesOnError(t *testing.T) {
	fetch := func(_ context.Context, _ repositories.NewsFilter) ([]models.News, orm.Pagination, error) {
		return nil, orm.Pagination{}, assert.AnError
	}
	q := services.NewListQueryWith(fetch, 10, time.Millisecond, false)
	t.Cleanup(q.Close)

	errs := make(chan error, 1)
	q.OnError = func(err error) { errs <- err }

	q.Start()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the fetch error")
	}
}

func TestListQuery_DeleteClampsPage(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.News{}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		item := models.News{
			TitlePrimary:   "item",
			TitleSecondary: "item",
			CategoryID:     "cat",
			OwnerID:        "op",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&item).Error)
	}

	repo := repositories.NewNewsRepositoryWith(db, nil)
	fetch := func(_ context.Context, f repositories.NewsFilter) ([]models.News, orm.Pagination, error) {
		return repo.List(f)
	}
	q, updates := newQuery(t, fetch, 5, time.Millisecond)

	q.Start()
	waitUpdate(t, updates)
	q.SetPage(3)
	waitUpdate(t, updates)

	items := q.Items()
	require.Len(t, items, 1, "11 items at page size 5 leave one on page 3")

	// Deleting the sole item of the last page moves the controller back to
	// the new last page.
	require.NoError(t, q.Delete(repo, items[0].ID))
	waitUpdate(t, updates)

	assert.Equal(t, 2, q.Page())
	assert.Len(t, q.Items(), 5)
	assert.Equal(t, int64(10), q.Pagination().Total)
}
