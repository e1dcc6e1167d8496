package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrCatalogUnavailable", ErrCatalogUnavailable},
		{"ErrValidation", ErrValidation},
		{"ErrProductNotFound", ErrProductNotFound},
		{"ErrDuplicateProduct", ErrDuplicateProduct},
		{"ErrPersistence", ErrPersistence},
		{"ErrUnknownStore", ErrUnknownStore},
		{"ErrInvalidLocation", ErrInvalidLocation},
		{"ErrNothingToExport", ErrNothingToExport},
		{"ErrUploadFailed", ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrProductNotFound, ErrDuplicateProduct))
	assert.False(t, errors.Is(ErrDuplicateProduct, ErrValidation))
	assert.False(t, errors.Is(ErrPersistence, ErrCatalogUnavailable))
}

func TestErrors_Wrapped(t *testing.T) {
	err := fmt.Errorf("confirm %q: %w", "789", ErrDuplicateProduct)

	assert.True(t, errors.Is(err, ErrDuplicateProduct))
	assert.Contains(t, err.Error(), "product already recorded")
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.False(t, verr.HasErrors())

	verr.Add("price", "must contain at least one digit")
	verr.Add("competitor", "required")
	require.True(t, verr.HasErrors())

	assert.Equal(t, "validation failed: competitor: required; price: must contain at least one digit", verr.Error())
	assert.True(t, errors.Is(verr, ErrValidation))

	wrapped := fmt.Errorf("confirm: %w", verr)
	var target *ValidationError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "required", target.Fields["competitor"])
}
