package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/event"
	"github.com/matjarhq/matjar/pkg/storage"
)

type serviceFixture struct {
	db      *gorm.DB
	mem     *storage.MemDisk
	repo    *repositories.NewsRepository
	service *services.NewsService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.News{}, &models.Category{}))

	mem := storage.NewMemDisk("http://cdn.test")
	// The delete cascade resolves the default disk, so point it at the
	// same in-memory store the uploader writes to.
	storage.RegisterDisk("mem", mem)
	storage.SetDefault("mem")

	uploader := services.NewUploaderWith(mem, "newsmedia", fixedNow)
	t.Cleanup(uploader.Close)

	repo := repositories.NewNewsRepositoryWith(db, nil)
	categories := repositories.NewCategoryRepositoryWith(db)

	return &serviceFixture{
		db:      db,
		mem:     mem,
		repo:    repo,
		service: services.NewNewsService(repo, categories, uploader),
	}
}

func (f *serviceFixture) seedCategory(t *testing.T, primary, secondary string) models.Category {
	t.Helper()
	c := models.Category{NamePrimary: primary, NameSecondary: secondary}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func validForm(categoryID string) services.ItemForm {
	return services.ItemForm{
		TitlePrimary:   "شاورما",
		TitleSecondary: "Shawarma",
		CategoryID:     categoryID,
		Price:          "25",
	}
}

func oneImage() []services.UploadFile {
	return []services.UploadFile{png("a.png", 16)}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestSubmit_RejectsIncompleteInput(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "مشروبات", "Drinks")

	tests := []struct {
		name   string
		form   services.ItemForm
		images []services.UploadFile
		actor  string
		field  string
	}{
		{"missing actor", validForm(cat.ID), oneImage(), "", "actor"},
		{"missing category", validForm(""), oneImage(), "op-1", "category_id"},
		{"missing images", validForm(cat.ID), nil, "op-1", "images"},
		{"unknown category", validForm("nope"), oneImage(), "op-1", "category_id"},
		{
			"invalid status",
			func() services.ItemForm {
				form := validForm(cat.ID)
				form.Status = "breaking"
				return form
			}(),
			oneImage(), "op-1", "status",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Submit(context.Background(), tc.form, tc.images, tc.actor)
			assert.Contains(t, fieldsOf(t, err), tc.field)
		})
	}

	// Nothing may reach the store or the database on a validation failure.
	assert.Equal(t, 0, f.mem.FileCount())
	count, err := f.repo.Count(repositories.NewsFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSubmit_SandwichRequiresBothPrices(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "سندوتشات", "Sandwiches")

	form := validForm(cat.ID) // sets price only
	_, err := f.service.Submit(context.Background(), form, oneImage(), "op-1")
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "price_large")
	assert.NotContains(t, fields, "price")
}

func TestSubmit_NonNumericPriceFails(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "مشروبات", "Drinks")

	form := validForm(cat.ID)
	form.Price = "cheap"
	_, err := f.service.Submit(context.Background(), form, oneImage(), "op-1")
	assert.Contains(t, fieldsOf(t, err)["price"], "must be a number")
}

func TestSubmit_DropsPricesOutsideTheVariant(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "سندوتشات", "Sandwiches")

	// The form carries leftovers from a previous category choice; only the
	// sandwich fields may survive.
	form := validForm(cat.ID)
	form.PriceLarge = "30"
	form.PriceMedium = "27"
	form.PriceFamily = "45"

	item, err := f.service.Submit(context.Background(), form, oneImage(), "op-1")
	require.NoError(t, err)

	require.NotNil(t, item.Price)
	assert.Equal(t, 25.0, *item.Price)
	require.NotNil(t, item.PriceLarge)
	assert.Equal(t, 30.0, *item.PriceLarge)
	assert.Nil(t, item.PriceMedium)
	assert.Nil(t, item.PriceFamily)
	assert.Nil(t, item.Offers)
}

func TestSubmit_PizzaRoundTrip(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "بيتزا", "Pizza")

	fired := make(chan interface{}, 1)
	event.Listen(services.EventNewsCreated, func(payload interface{}) {
		select {
		case fired <- payload:
		default:
		}
	})

	form := services.ItemForm{
		TitlePrimary:   "مارجريتا",
		TitleSecondary: "Margherita",
		CategoryID:     cat.ID,
		Price:          "10",
		PriceMedium:    "15",
		PriceLarge:     "20",
		Offers:         "8",
	}
	images := []services.UploadFile{png("one.png", 16), png("two.png", 16)}

	item, err := f.service.Submit(context.Background(), form, images, "op-1")
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)

	assert.Equal(t, services.PlaceholderContentPrimary, item.ContentPrimary)
	assert.Equal(t, services.PlaceholderContentSecondary, item.ContentSecondary)
	assert.Equal(t, models.StatusNone, item.Status)
	assert.Equal(t, "op-1", item.OwnerID)

	require.NotNil(t, item.Offers)
	assert.Equal(t, 8.0, *item.Offers)

	base := fixedTime.UnixNano()
	require.Len(t, item.Images, 2)
	assert.Equal(t, fmt.Sprintf("http://cdn.test/newsmedia/%d.png", base), item.Images[0])
	assert.Equal(t, 2, f.mem.FileCount())

	// The record really landed.
	stored, err := f.repo.FindByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", stored.TitleSecondary)

	select {
	case payload := <-fired:
		created, ok := payload.(*models.News)
		require.True(t, ok)
		assert.Equal(t, item.ID, created.ID)
	default:
		t.Fatal("news.created was not fired")
	}
}

func TestSubmit_UploadFailureLeavesNoRecord(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "مشروبات", "Drinks")

	base := fixedTime.UnixNano()
	f.mem.FailPut[fmt.Sprintf("newsmedia/%d.png", base+1)] = true

	images := []services.UploadFile{png("a.png", 16), png("b.png", 16)}
	_, err := f.service.Submit(context.Background(), validForm(cat.ID), images, "op-1")

	var uploadErr *services.UploadError
	require.True(t, errors.As(err, &uploadErr))

	assert.Equal(t, 0, f.mem.FileCount())
	count, err := f.repo.Count(repositories.NewsFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_FiresEvent(t *testing.T) {
	f := newServiceFixture(t)
	cat := f.seedCategory(t, "مشروبات", "Drinks")

	item, err := f.service.Submit(context.Background(), validForm(cat.ID), oneImage(), "op-1")
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		deleted string
	)
	event.Listen(services.EventNewsDeleted, func(payload interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if id, ok := payload.(string); ok {
			deleted = id
		}
	})

	require.NoError(t, f.service.Delete(context.Background(), item.ID))

	mu.Lock()
	assert.Equal(t, item.ID, deleted)
	mu.Unlock()

	_, err = f.repo.FindByID(item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
