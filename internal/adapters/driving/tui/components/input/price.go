package input

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/pricing"
)

// maxPriceDigits bounds the digit stream well below int64 overflow.
const maxPriceDigits = 12

// Formatter renders minor units for display.
type Formatter interface {
	FormatCurrency(minor int64) string
}

// Price is a digits-only input displayed as a formatted currency amount.
// Typed digits shift in from the right, so "1", "2", "3" reads 1,23.
type Price struct {
	styles  *styles.Styles
	format  Formatter
	label   string
	digits  string
	focused bool
}

// NewPrice creates a price input.
func NewPrice(s *styles.Styles, format Formatter, label string) *Price {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if format == nil {
		format = pricing.Default()
	}
	return &Price{styles: s, format: format, label: label}
}

// Update handles key messages. Non-digit runes are ignored.
func (p *Price) Update(msg tea.Msg) (*Price, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}

	//nolint:exhaustive // handling only relevant key types
	switch key.Type {
	case tea.KeyBackspace:
		if len(p.digits) > 0 {
			p.digits = p.digits[:len(p.digits)-1]
		}
	case tea.KeyRunes:
		for _, d := range pricing.Digits(string(key.Runes)) {
			if len(p.digits) >= maxPriceDigits {
				break
			}
			if d == '0' && p.digits == "" {
				continue
			}
			p.digits += string(d)
		}
	}
	return p, nil
}

// View renders the label and the formatted amount.
func (p *Price) View() string {
	label := p.styles.Label.Render(p.label)
	if p.focused {
		label = p.styles.FocusedLabel.Render(p.label)
	}
	amount := p.styles.Price.Render(p.Formatted())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, p.styles.InputField.Render(amount))
}

// Formatted returns the amount as it is displayed.
func (p *Price) Formatted() string {
	return p.format.FormatCurrency(p.Minor())
}

// Digits returns the digit stream as typed.
func (p *Price) Digits() string {
	return p.digits
}

// SetDigits replaces the digit stream; non-digits are dropped.
func (p *Price) SetDigits(raw string) {
	p.digits = ""
	for _, d := range pricing.Digits(raw) {
		if d == '0' && p.digits == "" {
			continue
		}
		if len(p.digits) < maxPriceDigits {
			p.digits += string(d)
		}
	}
}

// Minor returns the amount in minor units.
func (p *Price) Minor() int64 {
	return pricing.NormalizePrice(p.digits)
}

// Empty reports whether no digit has been typed.
func (p *Price) Empty() bool {
	return p.digits == ""
}

// Focus sets focus on the input.
func (p *Price) Focus() {
	p.focused = true
}

// Blur removes focus from the input.
func (p *Price) Blur() {
	p.focused = false
}

// Focused returns whether the input is focused.
func (p *Price) Focused() bool {
	return p.focused
}

// Reset clears the input.
func (p *Price) Reset() {
	p.digits = ""
}
