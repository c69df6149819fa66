package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/auth"
	"github.com/matjarhq/matjar/pkg/response"
)

// AdController serves the ad endpoints.
type AdController struct {
	repo    *repositories.AdRepository
	service *services.AdService
}

func NewAdController(repo *repositories.AdRepository, service *services.AdService) *AdController {
	return &AdController{repo: repo, service: service}
}

// Index lists ads with pagination and title search:
// GET /api/ads?page=&search=
func (c *AdController) Index(w http.ResponseWriter, r *http.Request) {
	ads, pagination, err := c.repo.List(repositories.AdFilter{
		Page:   queryInt(r, "page", 1),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	response.Paginated(w, ads, pagination)
}

// Store creates an ad from a multipart form: POST /api/ads
// The banner arrives under the "image" field.
func (c *AdController) Store(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form := services.AdForm{
		TitlePrimary:   r.FormValue("title_primary"),
		TitleSecondary: r.FormValue("title_secondary"),
		Link:           r.FormValue("link"),
	}
	image, err := formFile(r, "image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	ad, err := c.service.Create(r.Context(), form, image, auth.UserFromCtx(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, ad)
}

// Update edits an ad, optionally replacing its image: PUT /api/ads/{id}
func (c *AdController) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form := services.AdForm{
		TitlePrimary:   r.FormValue("title_primary"),
		TitleSecondary: r.FormValue("title_secondary"),
		Link:           r.FormValue("link"),
	}
	image, err := formFile(r, "image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	ad, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), form, image)
	if err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, ad)
}

// Destroy deletes an ad and its image object: DELETE /api/ads/{id}
func (c *AdController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "id")})
}
