// Package utils provides common utility functions for sendwallet.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// Formatter renders decimal amounts with the separators of a locale.
// Arithmetic stays in decimal.Decimal; only the separators come from the
// locale data, so large token amounts never pass through float64.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	decimal string
	group   string
}

// NewFormatter returns a Formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	dec, group := separators(p)
	return &Formatter{
		tag:     tag,
		printer: p,
		decimal: dec,
		group:   group,
	}
}

// NewFormatterForLocale parses a BCP 47 locale such as "en-US" or "de-DE".
func NewFormatterForLocale(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return NewFormatter(tag), nil
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag { return f.tag }

// DecimalSeparator returns the locale's decimal separator, e.g. "." or ",".
func (f *Formatter) DecimalSeparator() string { return f.decimal }

// GroupSeparator returns the locale's grouping separator, e.g. "," or ".".
func (f *Formatter) GroupSeparator() string { return f.group }

// Currency formats amount with the minor-unit scale of code (2 for USD,
// 0 for JPY). The currency symbol is not included; callers append the code.
// e.g., 3000 USD → "3,000.00" in en-US, "3.000,00" in de-DE
func (f *Formatter) Currency(amount decimal.Decimal, code models.FiatCurrency) string {
	scale, _ := currency.Standard.Rounding(code.Unit())
	return f.localize(amount.StringFixed(int32(scale)))
}

// CurrencySymbol returns the locale's symbol for code, e.g. "$" or "€".
func (f *Formatter) CurrencySymbol(code models.FiatCurrency) string {
	return f.printer.Sprint(currency.Symbol(code.Unit()))
}

// Token formats amount with at most decimals fractional digits, rounding
// half to even and dropping trailing zeros.
// e.g., 0.000750 with 18 decimals → "0.00075", 1234.5 with 2 → "1,234.5"
func (f *Formatter) Token(amount decimal.Decimal, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return f.localize(amount.RoundBank(int32(decimals)).String())
}

// Parse reads a localized amount back into a decimal. Grouping separators
// are ignored, so it accepts everything Currency and Token produce.
func (f *Formatter) Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if f.group != "" {
		s = strings.ReplaceAll(s, f.group, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	if f.decimal != "." {
		s = strings.ReplaceAll(s, f.decimal, ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatPct formats a percentage string with sign and suffix.
// e.g., "2.45" → "+2.45%", "-1.234" → "-1.23%". Unparsable input yields "".
func FormatPct(pct string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(pct))
	if err != nil {
		return ""
	}
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// localize rewrites a plain "-1234.5" decimal string with the locale's separators.
func (f *Formatter) localize(plain string) string {
	negative := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")

	intPart, fracPart, hasFrac := strings.Cut(plain, ".")
	out := groupDigits(intPart, f.group)
	if hasFrac && fracPart != "" {
		out += f.decimal + fracPart
	}
	if negative {
		return "-" + out
	}
	return out
}

// groupDigits inserts sep between groups of three digits from the right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// separators derives the decimal and grouping separators of p's locale by
// formatting a known sample. Locales with non-Latin digits fall back to "." and ",".
func separators(p *message.Printer) (dec, group string) {
	sample := p.Sprintf("%v", number.Decimal(1234567.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))

	i := strings.Index(sample, "234")
	j := strings.Index(sample, "567")
	k := strings.LastIndex(sample, "5")
	if !strings.HasPrefix(sample, "1") || i < 1 || j < i || k <= j+3 {
		return ".", ","
	}
	return sample[j+3 : k], sample[1:i]
}
