// Package pricing converts typed price digits into minor currency units and
// renders them for display and export.
//
// Prices are entered as a stream of digits interpreted as minor units, so
// typing "1234" means 12.34 in major units. The persisted and exported value
// is always the integer minor units or the canonical decimal string returned
// by Canonical; the locale display form is never stored.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
)

var (
	// ErrNoDigits indicates the price input contained no digits.
	ErrNoDigits = errors.New("price has no digits")

	// ErrOverflow indicates the price does not fit in 64 bits of minor units.
	ErrOverflow = errors.New("price too large")
)

// Digits returns only the ASCII digits of raw, as an input field would keep them.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParsePrice interprets the digits of raw as minor units.
func ParsePrice(raw string) (int64, error) {
	var n int64
	seen := false
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		seen = true
		d := int64(r - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, ErrOverflow
		}
		n = n*10 + d
	}
	if !seen {
		return 0, ErrNoDigits
	}
	return n, nil
}

// NormalizePrice is ParsePrice without the error: empty or unusable input is 0.
func NormalizePrice(raw string) int64 {
	n, err := ParsePrice(raw)
	if err != nil {
		return 0
	}
	return n
}

// Ensure Formatter implements the driving port.
var _ driving.PriceFormatter = (*Formatter)(nil)

// Formatter renders minor units for one locale and currency.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	scale   int
	symbol  string
	decimal string
	printer *message.Printer
}

// NewFormatter creates a formatter for a BCP 47 locale and ISO 4217 currency code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	// Learn the locale's decimal separator from a probe value.
	sep := strings.TrimSuffix(strings.TrimPrefix(p.Sprint(number.Decimal(1.5, number.Scale(1))), "1"), "5")
	if sep == "" {
		sep = "."
	}

	return &Formatter{
		tag:     tag,
		unit:    unit,
		scale:   scale,
		symbol:  p.Sprint(currency.Symbol(unit)),
		decimal: sep,
		printer: p,
	}, nil
}

// Default returns the pt-BR / BRL formatter.
func Default() *Formatter {
	f, err := NewFormatter("pt-BR", "BRL")
	if err != nil {
		panic(err)
	}
	return f
}

// Currency returns the ISO 4217 code.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// FormatCurrency renders minor units for display, e.g. "R$ 1.234,56".
func (f *Formatter) FormatCurrency(minor int64) string {
	sign := ""
	abs := uint64(minor)
	if minor < 0 {
		sign = "-"
		abs = uint64(-(minor + 1)) + 1
	}

	div := uint64(1)
	for i := 0; i < f.scale; i++ {
		div *= 10
	}

	out := f.symbol + " " + sign + f.printer.Sprintf("%d", abs/div)
	if f.scale > 0 {
		out += f.decimal + fmt.Sprintf("%0*d", f.scale, abs%div)
	}
	return out
}

// Canonical renders minor units as a plain decimal string, e.g. "12.34".
func (f *Formatter) Canonical(minor int64) string {
	return decimal.New(minor, int32(-f.scale)).StringFixed(int32(f.scale))
}
