package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/pkg/response"
	"github.com/matjarhq/matjar/pkg/validate"
)

// CategoryController serves the category endpoints.
type CategoryController struct {
	repo *repositories.CategoryRepository
}

func NewCategoryController(repo *repositories.CategoryRepository) *CategoryController {
	return &CategoryController{repo: repo}
}

// Index lists all categories: GET /api/categories
func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.repo.All()
	if err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, categories)
}

type categoryInput struct {
	NamePrimary   string `json:"name_primary"   validate:"required,max=100"`
	NameSecondary string `json:"name_secondary" validate:"required,max=100"`
}

// Store creates a category: POST /api/categories
func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := validate.Struct(input); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	category := models.Category{
		NamePrimary:   input.NamePrimary,
		NameSecondary: input.NameSecondary,
	}
	if err := c.repo.Create(&category); err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, category)
}
