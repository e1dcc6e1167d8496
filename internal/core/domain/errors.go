package domain

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Catalog Errors.

	// ErrCatalogUnavailable indicates the catalog snapshot could not be
	// fetched or parsed. Suggestions and resolution degrade to empty results.
	ErrCatalogUnavailable = errors.New("catalog index unavailable")

	// Observation Errors.

	// ErrValidation indicates observation input is missing required fields.
	// Use errors.As with *ValidationError to inspect the offending fields.
	ErrValidation = errors.New("validation failed")

	// ErrProductNotFound indicates the query did not resolve to a catalog product.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProduct indicates the resolved product is already in the observation list.
	ErrDuplicateProduct = errors.New("product already recorded")

	// ErrPersistence indicates durable storage failed. The in-memory list is kept.
	ErrPersistence = errors.New("persistence failed")

	// ErrUnknownStore indicates the competitor is not one of the configured stores.
	ErrUnknownStore = errors.New("unknown store")

	// ErrInvalidLocation indicates coordinates outside the valid lat/lng range.
	ErrInvalidLocation = errors.New("invalid location")

	// Export Errors.

	// ErrNothingToExport indicates an export was requested for an empty list.
	ErrNothingToExport = errors.New("no observations to export")

	// ErrUploadFailed indicates the remote upload of an export failed.
	ErrUploadFailed = errors.New("upload failed")
)

// ValidationError reports which observation fields failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// Add records a problem with a field.
func (e *ValidationError) Add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = problem
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error lists the failed fields in a stable order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
