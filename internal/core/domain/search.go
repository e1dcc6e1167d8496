package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// SearchField selects which catalog key a query is matched against.
type SearchField string

// Available search fields.
const (
	// FieldDescription matches every query token against product descriptions.
	FieldDescription SearchField = "description"

	// FieldBrand matches against brand names.
	FieldBrand SearchField = "brand"

	// FieldEAN matches barcodes by prefix (suggest) or exactly (resolve).
	FieldEAN SearchField = "ean"

	// FieldID matches numeric product identifiers.
	FieldID SearchField = "id"
)

// IsValid returns true if the search field is recognised.
func (f SearchField) IsValid() bool {
	switch f {
	case FieldDescription, FieldBrand, FieldEAN, FieldID:
		return true
	default:
		return false
	}
}

// IsTextual reports whether queries on this field are normalized and tokenized.
func (f SearchField) IsTextual() bool {
	return f == FieldDescription || f == FieldBrand
}

// String returns the string representation.
func (f SearchField) String() string {
	return string(f)
}

// Description returns a human-readable label for the field.
func (f SearchField) Description() string {
	switch f {
	case FieldDescription:
		return "Description"
	case FieldBrand:
		return "Brand"
	case FieldEAN:
		return "EAN barcode"
	case FieldID:
		return "Product ID"
	default:
		return unknownDescription
	}
}

// Next returns the following field in AllSearchFields order, wrapping around.
func (f SearchField) Next() SearchField {
	fields := AllSearchFields()
	for i, candidate := range fields {
		if candidate == f {
			return fields[(i+1)%len(fields)]
		}
	}
	return fields[0]
}

// AllSearchFields returns all search fields in display order.
func AllSearchFields() []SearchField {
	return []SearchField{FieldEAN, FieldDescription, FieldBrand, FieldID}
}

// ParseSearchField parses a field name. The catalog's own column names are
// accepted as aliases.
func ParseSearchField(s string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "description", "descricao", "desc", "name":
		return FieldDescription, nil
	case "brand", "marca":
		return FieldBrand, nil
	case "ean", "codigoean", "barcode":
		return FieldEAN, nil
	case "id", "idprodutoint":
		return FieldID, nil
	default:
		return "", fmt.Errorf("%w: unknown search field %q", ErrInvalidInput, s)
	}
}

// SuggestionSet is the outcome of one suggestion evaluation.
type SuggestionSet struct {
	// Field is the field the query was evaluated against.
	Field SearchField

	// Query is the query as typed.
	Query string

	// Generation is the catalog generation the suggestions came from.
	Generation uint64

	// Suggestions are display strings in catalog order, deduplicated.
	Suggestions []string
}
