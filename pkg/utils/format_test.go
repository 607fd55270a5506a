package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/pkg/models"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q): %v", s, err)
	}
	return d
}

func TestSeparators(t *testing.T) {
	tests := []struct {
		tag   language.Tag
		dec   string
		group string
	}{
		{language.AmericanEnglish, ".", ","},
		{language.German, ",", "."},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			f := NewFormatter(tt.tag)
			if f.DecimalSeparator() != tt.dec {
				t.Errorf("DecimalSeparator() = %q, want %q", f.DecimalSeparator(), tt.dec)
			}
			if f.GroupSeparator() != tt.group {
				t.Errorf("GroupSeparator() = %q, want %q", f.GroupSeparator(), tt.group)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	en := NewFormatter(language.AmericanEnglish)
	de := NewFormatter(language.German)

	tests := []struct {
		name     string
		f        *Formatter
		amount   string
		code     models.FiatCurrency
		expected string
	}{
		{"zero", en, "0", models.USD, "0.00"},
		{"thousands", en, "3000", models.USD, "3,000.00"},
		{"millions", en, "1234567.891", models.USD, "1,234,567.89"},
		{"negative", en, "-1234.5", models.USD, "-1,234.50"},
		{"no minor unit", en, "1500.4", models.JPY, "1,500"},
		{"german", de, "3000.5", models.EUR, "3.000,50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.Currency(mustDec(t, tt.amount), tt.code)
			if got != tt.expected {
				t.Errorf("Currency(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.expected)
			}
		})
	}
}

func TestFormatToken(t *testing.T) {
	en := NewFormatter(language.AmericanEnglish)

	tests := []struct {
		amount   string
		decimals int
		expected string
	}{
		{"0", 18, "0"},
		{"0.00075", 18, "0.00075"},
		{"1.5", 18, "1.5"},
		{"1234.5", 2, "1,234.5"},
		{"0.125", 2, "0.12"}, // half to even
		{"0.135", 2, "0.14"},
		{"42.999", 0, "43"},
		{"7.1", -1, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := en.Token(mustDec(t, tt.amount), tt.decimals)
			if got != tt.expected {
				t.Errorf("Token(%s, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, tag := range []language.Tag{language.AmericanEnglish, language.German} {
		f := NewFormatter(tag)
		want := mustDec(t, "1234567.25")

		got, err := f.Parse(f.Currency(want, models.USD))
		if err != nil {
			t.Fatalf("%s: Parse error: %v", tag, err)
		}
		if !got.Equal(want) {
			t.Errorf("%s: Parse(Currency(%s)) = %s", tag, want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)
	for _, in := range []string{"", "   ", "abc", "1.2.3"} {
		if _, err := f.Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestNewFormatterForLocale(t *testing.T) {
	if _, err := NewFormatterForLocale("en-US"); err != nil {
		t.Fatalf("NewFormatterForLocale(en-US): %v", err)
	}
	if _, err := NewFormatterForLocale("not a locale!"); err == nil {
		t.Error("expected error for malformed locale")
	}
}

func TestCurrencySymbol(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)
	if got := f.CurrencySymbol(models.EUR); got == "" {
		t.Error("CurrencySymbol(EUR) should not be empty")
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2.45", "+2.45%"},
		{"-1.234", "-1.23%"},
		{"0", "+0.00%"},
		{"n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatPct(tt.input); got != tt.expected {
				t.Errorf("FormatPct(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
