// Package services holds the application services: form submission, the
// image upload pipeline, and the listing query controller.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level input problems. It is always raised
// before any network or storage call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// UploadError wraps a failure inside the image upload pipeline.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("image upload failed: %v", e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure while writing the record after a
// successful upload.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist failed: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// AsValidation reports whether err is a ValidationError and returns it.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
