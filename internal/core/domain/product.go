package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MissingProductName is shown when a product has no description.
const MissingProductName = "Produto não encontrado"

// ProductRecord is one entry of the reference catalog.
type ProductRecord struct {
	// ID is the numeric product identifier. Nil when absent or malformed.
	ID *int64 `json:"idprodutoint,omitempty"`

	// Description is the product name.
	Description string `json:"descricao"`

	// Brand is the manufacturer or brand name.
	Brand string `json:"marca"`

	// EAN is the barcode. Not guaranteed unique in source data.
	EAN string `json:"codigoean"`
}

// IDString returns the ID in decimal form, or "" when absent.
func (p ProductRecord) IDString() string {
	if p.ID == nil {
		return ""
	}
	return strconv.FormatInt(*p.ID, 10)
}

// Key returns the identifier recorded on observations.
// The EAN is preferred. Records without one fall back to "id:<n>" and then
// to the normalized description.
func (p ProductRecord) Key() string {
	if ean := strings.TrimSpace(p.EAN); ean != "" {
		return ean
	}
	if p.ID != nil {
		return "id:" + p.IDString()
	}
	if d := strings.ToLower(strings.TrimSpace(p.Description)); d != "" {
		return "desc:" + d
	}
	return ""
}

// DisplayName returns the description, or MissingProductName when empty.
func (p ProductRecord) DisplayName() string {
	if d := strings.TrimSpace(p.Description); d != "" {
		return d
	}
	return MissingProductName
}

// UnmarshalJSON decodes a catalog row field by field. A field with an
// unexpected type is dropped instead of failing the whole row: string IDs
// are parsed, numeric EANs are kept as their literal digits.
func (p *ProductRecord) UnmarshalJSON(data []byte) error {
	*p = ProductRecord{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("catalog row: %w", err)
	}

	p.ID = decodeID(fields["idprodutoint"])
	p.Description = decodeText(fields["descricao"])
	p.Brand = decodeText(fields["marca"])
	p.EAN = decodeText(fields["codigoean"])
	return nil
}

func decodeValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func decodeText(raw json.RawMessage) string {
	switch v := decodeValue(raw).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func decodeID(raw json.RawMessage) *int64 {
	var text string
	switch v := decodeValue(raw).(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &n
	}
	// Exports from spreadsheets sometimes carry "12.0".
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return nil
	}
	n := int64(f)
	return &n
}
