package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matjarhq/matjar/app/pricing"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/auth"
	"github.com/matjarhq/matjar/pkg/cache"
	"github.com/matjarhq/matjar/pkg/orm"
	"github.com/matjarhq/matjar/pkg/response"
)

// newsListTTL matches the query controller's cache horizon.
const newsListTTL = 5 * time.Minute

// NewsController serves the catalog item endpoints.
type NewsController struct {
	repo    *repositories.NewsRepository
	service *services.NewsService
}

func NewNewsController(repo *repositories.NewsRepository, service *services.NewsService) *NewsController {
	return &NewsController{repo: repo, service: service}
}

// Index lists items with pagination and filters:
// GET /api/news?page=&category=&status=&search=&date=
// Pages are cached in Redis under the same keys the query controller uses,
// so a write through either path invalidates both.
func (c *NewsController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := services.QueryKey{
		Page:       queryInt(r, "page", 1),
		CategoryID: q.Get("category"),
		Status:     q.Get("status"),
		Search:     q.Get("search"),
		DateBucket: q.Get("date"),
	}

	var cached struct {
		Items      interface{}    `json:"items"`
		Pagination orm.Pagination `json:"pagination"`
	}
	if cache.Get(key.CacheKey(), &cached) {
		response.Paginated(w, cached.Items, cached.Pagination)
		return
	}

	items, pagination, err := c.repo.List(repositories.NewsFilter{
		Page:       key.Page,
		PageSize:   config.NewsPageSize(),
		CategoryID: key.CategoryID,
		Status:     key.Status,
		Search:     key.Search,
		DateBucket: key.DateBucket,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	cache.Set(key.CacheKey(), map[string]interface{}{
		"items":      items,
		"pagination": pagination,
	}, newsListTTL)
	response.Paginated(w, items, pagination)
}

// Show returns one item: GET /api/news/{id}
func (c *NewsController) Show(w http.ResponseWriter, r *http.Request) {
	item, err := c.repo.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, item)
}

// Store creates an item from a multipart form: POST /api/news
// Text fields arrive as form values, images under the "images" field.
func (c *NewsController) Store(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form := services.ItemForm{
		TitlePrimary:     r.FormValue("title_primary"),
		TitleSecondary:   r.FormValue("title_secondary"),
		CategoryID:       r.FormValue("category_id"),
		Status:           r.FormValue("status"),
		ContentPrimary:   r.FormValue("content_primary"),
		ContentSecondary: r.FormValue("content_secondary"),
		VideoRef:         r.FormValue("video_ref"),
		Price:            r.FormValue("price"),
		PriceMedium:      r.FormValue("price_medium"),
		PriceLarge:       r.FormValue("price_large"),
		PriceFamily:      r.FormValue("price_family"),
		Offers:           r.FormValue("offers"),
	}

	images, err := formFiles(r, "images")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}

	item, err := c.service.Submit(r.Context(), form, images, auth.UserFromCtx(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, item)
}

// Destroy deletes an item and its image objects: DELETE /api/news/{id}
func (c *NewsController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "id")})
}

// PricingFields returns the price inputs the admin form must render for a
// category name: GET /api/pricing/fields?category=pizza
func (c *NewsController) PricingFields(w http.ResponseWriter, r *http.Request) {
	variant := pricing.Classify(r.URL.Query().Get("category"))
	response.Success(w, map[string]interface{}{
		"variant":  variant,
		"required": pricing.RequiredFields(variant),
		"optional": pricing.OptionalFields(variant),
	})
}
