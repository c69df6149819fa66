package repositories_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/pkg/storage"
)

var testNow = time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.News{}))
	return db
}

func newRepo(t *testing.T) (*repositories.NewsRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return repositories.NewNewsRepositoryWith(db, func() time.Time { return testNow }), db
}

func seedItem(t *testing.T, db *gorm.DB, item models.News) models.News {
	t.Helper()
	if item.OwnerID == "" {
		item.OwnerID = "op"
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func ids(items []models.News) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestList_FiltersCombineWithAnd(t *testing.T) {
	repo, db := newRepo(t)

	match := seedItem(t, db, models.News{
		TitlePrimary: "بيتزا", TitleSecondary: "Cheese Pizza",
		CategoryID: "cat-pizza", Status: models.StatusUrgent, CreatedAt: testNow,
	})
	seedItem(t, db, models.News{ // right category, wrong status
		TitlePrimary: "بيتزا", TitleSecondary: "Veggie Pizza",
		CategoryID: "cat-pizza", Status: models.StatusTrend, CreatedAt: testNow,
	})
	seedItem(t, db, models.News{ // right status, wrong category
		TitlePrimary: "كريب", TitleSecondary: "Cheese Crepe",
		CategoryID: "cat-crepe", Status: models.StatusUrgent, CreatedAt: testNow,
	})

	items, _, err := repo.List(repositories.NewsFilter{
		CategoryID: "cat-pizza",
		Status:     models.StatusUrgent,
		Search:     "cheese",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, match.ID, items[0].ID)
}

func TestList_SearchIsCaseInsensitiveOverBothTitles(t *testing.T) {
	repo, db := newRepo(t)

	bySecondary := seedItem(t, db, models.News{
		TitlePrimary: "شاورما", TitleSecondary: "Chicken SHAWARMA", CategoryID: "c", CreatedAt: testNow,
	})
	byPrimary := seedItem(t, db, models.News{
		TitlePrimary: "shawarma lovers", TitleSecondary: "Wrap", CategoryID: "c", CreatedAt: testNow.Add(time.Minute),
	})
	seedItem(t, db, models.News{
		TitlePrimary: "برجر", TitleSecondary: "Burger", CategoryID: "c", CreatedAt: testNow,
	})

	items, _, err := repo.List(repositories.NewsFilter{Search: "  Shawarma "})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bySecondary.ID, byPrimary.ID}, ids(items))
}

func TestList_StatusNoneMeansNoStatusFilter(t *testing.T) {
	repo, db := newRepo(t)

	seedItem(t, db, models.News{TitlePrimary: "a", TitleSecondary: "a", CategoryID: "c", Status: models.StatusUrgent, CreatedAt: testNow})
	seedItem(t, db, models.News{TitlePrimary: "b", TitleSecondary: "b", CategoryID: "c", Status: models.StatusTrend, CreatedAt: testNow})

	items, _, err := repo.List(repositories.NewsFilter{Status: models.StatusNone})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestList_DateBuckets(t *testing.T) {
	repo, db := newRepo(t)

	ages := []time.Duration{
		2 * time.Hour,            // today
		3 * 24 * time.Hour,       // this week
		20 * 24 * time.Hour,      // this month
		200 * 24 * time.Hour,     // this year
		2 * 365 * 24 * time.Hour, // older
	}
	for _, age := range ages {
		seedItem(t, db, models.News{
			TitlePrimary: "x", TitleSecondary: "x", CategoryID: "c", CreatedAt: testNow.Add(-age),
		})
	}

	tests := []struct {
		bucket string
		want   int
	}{
		{repositories.DateToday, 1},
		{repositories.DateWeek, 2},
		{repositories.DateMonth, 3},
		{repositories.DateYear, 4},
		{repositories.DateAny, 5},
	}
	for _, tc := range tests {
		t.Run(tc.bucket, func(t *testing.T) {
			items, _, err := repo.List(repositories.NewsFilter{DateBucket: tc.bucket})
			require.NoError(t, err)
			assert.Len(t, items, tc.want)
		})
	}
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	repo, db := newRepo(t)

	var newest models.News
	for i := 0; i < 12; i++ {
		newest = seedItem(t, db, models.News{
			TitlePrimary: "x", TitleSecondary: "x", CategoryID: "c",
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}

	items, p, err := repo.List(repositories.NewsFilter{Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, newest.ID, items[0].ID)
	assert.Equal(t, int64(12), p.Total)
	assert.Equal(t, 3, p.TotalPages)

	items, _, err = repo.List(repositories.NewsFilter{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func withMemDisk(t *testing.T) *storage.MemDisk {
	t.Helper()
	mem := storage.NewMemDisk("http://cdn.test")
	storage.RegisterDisk("mem", mem)
	storage.SetDefault("mem")
	return mem
}

func TestDelete_RemovesObjectsThenRecord(t *testing.T) {
	repo, db := newRepo(t)
	mem := withMemDisk(t)

	require.NoError(t, mem.Put("newsmedia/1.png", []byte("a")))
	require.NoError(t, mem.Put("newsmedia/2.png", []byte("b")))

	item := seedItem(t, db, models.News{
		TitlePrimary: "x", TitleSecondary: "x", CategoryID: "c",
		Images:    models.StringSlice{mem.URL("newsmedia/1.png"), mem.URL("newsmedia/2.png")},
		CreatedAt: testNow,
	})

	require.NoError(t, repo.Delete(item.ID))

	assert.Equal(t, 0, mem.FileCount())
	_, err := repo.FindByID(item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDelete_ObjectFailureKeepsRecord(t *testing.T) {
	repo, db := newRepo(t)
	mem := withMemDisk(t)

	require.NoError(t, mem.Put("newsmedia/1.png", []byte("a")))
	require.NoError(t, mem.Put("newsmedia/2.png", []byte("b")))
	mem.FailDelete["newsmedia/2.png"] = true

	item := seedItem(t, db, models.News{
		TitlePrimary: "x", TitleSecondary: "x", CategoryID: "c",
		Images:    models.StringSlice{mem.URL("newsmedia/1.png"), mem.URL("newsmedia/2.png")},
		CreatedAt: testNow,
	})

	err := repo.Delete(item.ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, repositories.ErrStoreDivergence))

	// The record survives so the operation can be retried.
	_, err = repo.FindByID(item.ID)
	assert.NoError(t, err)
}

func TestDelete_ReportsDivergenceWhenRecordDeleteFails(t *testing.T) {
	repo, db := newRepo(t)
	mem := withMemDisk(t)

	require.NoError(t, mem.Put("newsmedia/1.png", []byte("a")))
	item := seedItem(t, db, models.News{
		TitlePrimary: "x", TitleSecondary: "x", CategoryID: "c",
		Images:    models.StringSlice{mem.URL("newsmedia/1.png")},
		CreatedAt: testNow,
	})

	// Force the record deletion to fail after the objects are gone.
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("force_delete_failure",
		func(tx *gorm.DB) { _ = tx.AddError(errors.New("record store down")) }))

	err := repo.Delete(item.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrStoreDivergence)

	// The stores have genuinely diverged: objects gone, record still there.
	assert.Equal(t, 0, mem.FileCount())
	var count int64
	require.NoError(t, db.Callback().Delete().Remove("force_delete_failure"))
	require.NoError(t, db.Model(&models.News{}).Where("id = ?", item.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
