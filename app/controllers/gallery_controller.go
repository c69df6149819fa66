package controllers

import (
	"net/http"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/auth"
	"github.com/matjarhq/matjar/pkg/response"
)

// GalleryController serves the showcase album endpoints.
type GalleryController struct {
	repo     *repositories.GalleryRepository
	uploader *services.Uploader
}

func NewGalleryController(repo *repositories.GalleryRepository, uploader *services.Uploader) *GalleryController {
	return &GalleryController{repo: repo, uploader: uploader}
}

// Index lists all albums: GET /api/gallery
func (c *GalleryController) Index(w http.ResponseWriter, r *http.Request) {
	albums, err := c.repo.All()
	if err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, albums)
}

// Store creates an album from a multipart form: POST /api/gallery
// Images arrive under the "images" field.
func (c *GalleryController) Store(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := r.FormValue("title_primary")
	if title == "" {
		response.ValidationError(w, map[string]string{"title_primary": "The title_primary field is required."})
		return
	}

	actorID := auth.UserFromCtx(r.Context())
	if actorID == "" {
		response.Unauthorized(w)
		return
	}

	images, err := formFiles(r, "images")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}
	if len(images) == 0 {
		response.ValidationError(w, map[string]string{"images": "image required"})
		return
	}

	accepted, rejected := c.uploader.Validate(images, 0)
	if len(rejected) > 0 {
		fields := make(map[string]string, len(rejected))
		for _, rej := range rejected {
			fields[rej.Name] = rej.Reason
		}
		response.ValidationError(w, fields)
		return
	}

	urls, err := c.uploader.Upload(r.Context(), accepted)
	if err != nil {
		respondError(w, err)
		return
	}

	album := models.GalleryAlbum{
		TitlePrimary: title,
		ImageURLs:    urls,
		OwnerID:      actorID,
	}
	if err := c.repo.Create(&album); err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, album)
}
