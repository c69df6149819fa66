// Package controllers maps HTTP requests onto the application services and
// domain errors onto status codes.
package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/response"
)

// maxFormMemory bounds the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const maxFormMemory = 64 << 20 // 64 MiB

// respondError translates a service error into the right status code:
// 422 with a field map for input problems, 502 for upload failures,
// 409 when the stores have diverged, 404 for missing records, 500 otherwise.
func respondError(w http.ResponseWriter, err error) {
	var (
		ve *services.ValidationError
		ue *services.UploadError
		pe *services.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		response.ValidationError(w, ve.Fields)
	case errors.As(err, &ue):
		response.Error(w, http.StatusBadGateway, ue.Error())
	case errors.Is(err, repositories.ErrStoreDivergence):
		response.Conflict(w, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(w)
	case errors.As(err, &pe):
		response.Error(w, http.StatusInternalServerError, pe.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// formFiles reads every uploaded part under field into UploadFiles.
func formFiles(r *http.Request, field string) ([]services.UploadFile, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}

	var files []services.UploadFile
	for _, header := range r.MultipartForm.File[field] {
		file, err := readPart(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// formFile reads a single optional uploaded part under field.
func formFile(r *http.Request, field string) (*services.UploadFile, error) {
	files, err := formFiles(r, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

func readPart(header *multipart.FileHeader) (services.UploadFile, error) {
	part, err := header.Open()
	if err != nil {
		return services.UploadFile{}, err
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return services.UploadFile{}, err
	}

	return services.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
