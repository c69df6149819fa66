package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/pricing"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/pkg/event"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/validate"
)

// Content placeholders stored until the operator edits the item.
const (
	PlaceholderContentPrimary   = "اكتب الخبر بالعربية..."
	PlaceholderContentSecondary = "Write the news in English..."
)

// Event names fired by the item service.
const (
	EventNewsCreated = "news.created"
	EventNewsDeleted = "news.deleted"
)

// ItemForm carries the raw, untyped inputs of the item creation form.
// Price fields arrive as strings and are coerced during Submit.
type ItemForm struct {
	TitlePrimary     string `json:"title_primary"   validate:"required,max=100"`
	TitleSecondary   string `json:"title_secondary" validate:"required,max=100"`
	CategoryID       string `json:"category_id"`
	Status           string `json:"status" validate:"nullable,in=none,important,urgent,trend,offer,most_sold"`
	ContentPrimary   string `json:"content_primary"`
	ContentSecondary string `json:"content_secondary"`
	VideoRef         string `json:"video_ref"`
	Price            string `json:"price"`
	PriceMedium      string `json:"price_medium"`
	PriceLarge       string `json:"price_large"`
	PriceFamily      string `json:"price_family"`
	Offers           string `json:"offers"`
}

// NewsService is the item form pipeline: validate → upload → persist.
// Each stage fails with its own error type so callers can tell an input
// problem from a storage or database one.
type NewsService struct {
	repo       *repositories.NewsRepository
	categories *repositories.CategoryRepository
	uploader   *Uploader
}

func NewNewsService(repo *repositories.NewsRepository, categories *repositories.CategoryRepository, uploader *Uploader) *NewsService {
	return &NewsService{repo: repo, categories: categories, uploader: uploader}
}

// Submit runs the full creation flow. All validation — actor, category,
// image presence, per-variant price fields — happens before any byte leaves
// the process; only a fully valid form reaches the upload stage, and only a
// fully uploaded batch reaches the database.
func (s *NewsService) Submit(ctx context.Context, form ItemForm, images []UploadFile, actorID string) (*models.News, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, NewValidationError("actor", "missing actor")
	}
	if strings.TrimSpace(form.CategoryID) == "" {
		return nil, NewValidationError("category_id", "category required")
	}
	if len(images) == 0 {
		return nil, NewValidationError("images", "image required")
	}

	if errs := validate.Struct(form); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	category, err := s.categories.FindByID(form.CategoryID)
	if err != nil {
		return nil, NewValidationError("category_id", "category not found")
	}

	variant := pricing.Classify(category.NameSecondary)
	prices, verr := coercePrices(form, variant)
	if verr != nil {
		return nil, verr
	}

	accepted, rejected := s.uploader.Validate(images, 0)
	if len(rejected) > 0 {
		fields := make(map[string]string, len(rejected))
		for _, rej := range rejected {
			fields[rej.Name] = rej.Reason
		}
		return nil, &ValidationError{Fields: fields}
	}

	urls, err := s.uploader.Upload(ctx, accepted)
	if err != nil {
		return nil, err // *UploadError
	}

	item := &models.News{
		TitlePrimary:     strings.TrimSpace(form.TitlePrimary),
		TitleSecondary:   strings.TrimSpace(form.TitleSecondary),
		ContentPrimary:   defaultIfEmpty(form.ContentPrimary, PlaceholderContentPrimary),
		ContentSecondary: defaultIfEmpty(form.ContentSecondary, PlaceholderContentSecondary),
		CategoryID:       category.ID,
		Status:           defaultIfEmpty(form.Status, models.StatusNone),
		Images:           urls,
		VideoRef:         strings.TrimSpace(form.VideoRef),
		Price:            prices["price"],
		PriceMedium:      prices["price_medium"],
		PriceLarge:       prices["price_large"],
		PriceFamily:      prices["price_family"],
		Offers:           prices["offers"],
		OwnerID:          actorID,
	}

	if err := s.repo.Create(item); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	logger.WithCtx(ctx).Info("item created",
		"id", item.ID, "category", category.NameSecondary, "variant", string(variant))
	event.Fire(EventNewsCreated, item)
	return item, nil
}

// Delete removes an item (image objects first) and announces it.
func (s *NewsService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("item deleted", "id", id)
	event.Fire(EventNewsDeleted, id)
	return nil
}

// coercePrices turns the form's string price inputs into typed values for
// exactly the fields the variant defines. Required fields must parse as
// numbers; fields of other variants are dropped even when the form carries
// them, so a category switch can never leak stale prices into the record.
func coercePrices(form ItemForm, variant pricing.Variant) (map[string]*float64, *ValidationError) {
	raw := map[string]string{
		"price":        form.Price,
		"price_medium": form.PriceMedium,
		"price_large":  form.PriceLarge,
		"price_family": form.PriceFamily,
		"offers":       form.Offers,
	}

	errs := map[string]string{}
	out := map[string]*float64{}

	for _, field := range pricing.RequiredFields(variant) {
		value := strings.TrimSpace(raw[field.Key])
		if value == "" {
			errs[field.Key] = "The " + field.Key + " field is required."
			continue
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs[field.Key] = "The " + field.Key + " must be a number."
			continue
		}
		out[field.Key] = &n
	}

	for _, field := range pricing.OptionalFields(variant) {
		value := strings.TrimSpace(raw[field.Key])
		if value == "" {
			continue
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs[field.Key] = "The " + field.Key + " must be a number."
			continue
		}
		out[field.Key] = &n
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	// Drop anything outside the variant's shape.
	allowed := pricing.AllowedKeys(variant)
	for key := range out {
		if !allowed[key] {
			delete(out, key)
		}
	}
	return out, nil
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
