package services

import (
	"context"
	"strings"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/event"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/storage"
	"github.com/matjarhq/matjar/pkg/validate"
)

// Event names fired by the ad service.
const (
	EventAdCreated = "ad.created"
	EventAdUpdated = "ad.updated"
	EventAdDeleted = "ad.deleted"
)

// AdForm carries the inputs of the ad creation/edit form.
type AdForm struct {
	TitlePrimary   string `json:"title_primary"   validate:"required,max=100"`
	TitleSecondary string `json:"title_secondary" validate:"required,max=100"`
	Link           string `json:"link" validate:"nullable,url"`
}

// AdService runs the ad flows with the same validate → upload → persist
// shape as items, but for a single image per record.
type AdService struct {
	repo     *repositories.AdRepository
	uploader *Uploader
}

func NewAdService(repo *repositories.AdRepository, uploader *Uploader) *AdService {
	return &AdService{repo: repo, uploader: uploader}
}

// Create validates the form, uploads the banner image, and persists the ad.
func (s *AdService) Create(ctx context.Context, form AdForm, image *UploadFile, actorID string) (*models.Ad, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, NewValidationError("actor", "missing actor")
	}
	if image == nil {
		return nil, NewValidationError("image", "image required")
	}
	if errs := validate.Struct(form); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	url, err := s.uploadOne(ctx, *image)
	if err != nil {
		return nil, err
	}

	ad := &models.Ad{
		TitlePrimary:   strings.TrimSpace(form.TitlePrimary),
		TitleSecondary: strings.TrimSpace(form.TitleSecondary),
		ImageURL:       url,
		Link:           strings.TrimSpace(form.Link),
		OwnerID:        actorID,
	}
	if err := s.repo.Create(ad); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	logger.WithCtx(ctx).Info("ad created", "id", ad.ID)
	event.Fire(EventAdCreated, ad)
	return ad, nil
}

// Update edits an ad. When a replacement image is supplied the new object
// is uploaded before the record is touched; the old object is removed only
// after the record points at the new one, so a failure mid-way never leaves
// the ad without a live image.
func (s *AdService) Update(ctx context.Context, id string, form AdForm, image *UploadFile) (*models.Ad, error) {
	if errs := validate.Struct(form); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	ad, err := s.repo.FindByID(id)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	oldURL := ad.ImageURL
	if image != nil {
		url, err := s.uploadOne(ctx, *image)
		if err != nil {
			return nil, err
		}
		ad.ImageURL = url
	}

	ad.TitlePrimary = strings.TrimSpace(form.TitlePrimary)
	ad.TitleSecondary = strings.TrimSpace(form.TitleSecondary)
	ad.Link = strings.TrimSpace(form.Link)

	if err := s.repo.Update(&ad); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	if image != nil && oldURL != "" {
		if key := adObjectKey(oldURL); key != "" {
			if err := storage.Delete(key); err != nil {
				logger.WithCtx(ctx).Warn("ad: stale image object not removed",
					"key", key, "error", err)
			}
		}
	}

	logger.WithCtx(ctx).Info("ad updated", "id", ad.ID)
	event.Fire(EventAdUpdated, &ad)
	return &ad, nil
}

// Delete removes an ad (image object first) and announces it.
func (s *AdService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("ad deleted", "id", id)
	event.Fire(EventAdDeleted, id)
	return nil
}

func (s *AdService) uploadOne(ctx context.Context, image UploadFile) (string, error) {
	accepted, rejected := s.uploader.Validate([]UploadFile{image}, 0)
	if len(rejected) > 0 {
		return "", NewValidationError(rejected[0].Name, rejected[0].Reason)
	}
	urls, err := s.uploader.Upload(ctx, accepted)
	if err != nil {
		return "", err // *UploadError
	}
	return urls[0], nil
}

func adObjectKey(url string) string {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return config.AdsMediaDir() + "/" + trimmed[idx+1:]
}
