package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// FiatCurrency is an ISO 4217 code the user picked for fiat display.
type FiatCurrency string

// Fiat currencies offered in wallet settings.
const (
	USD FiatCurrency = "USD"
	EUR FiatCurrency = "EUR"
	GBP FiatCurrency = "GBP"
	AUD FiatCurrency = "AUD"
	RUB FiatCurrency = "RUB"
	CAD FiatCurrency = "CAD"
	CNY FiatCurrency = "CNY"
	INR FiatCurrency = "INR"
	JPY FiatCurrency = "JPY"
	KRW FiatCurrency = "KRW"
)

// SupportedCurrencies lists the fiat currencies selectable in settings.
var SupportedCurrencies = []FiatCurrency{USD, EUR, GBP, AUD, RUB, CAD, CNY, INR, JPY, KRW}

// ParseFiatCurrency validates code against ISO 4217 and returns it upper-cased.
func ParseFiatCurrency(code string) (FiatCurrency, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid fiat currency %q: %w", code, err)
	}
	return FiatCurrency(unit.String()), nil
}

// Unit returns the x/text currency unit for c. Unknown codes fall back to XXX.
func (c FiatCurrency) Unit() currency.Unit {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return currency.XXX
	}
	return unit
}

// Supported reports whether c is one of SupportedCurrencies.
func (c FiatCurrency) Supported() bool {
	for _, s := range SupportedCurrencies {
		if s == c {
			return true
		}
	}
	return false
}

func (c FiatCurrency) String() string { return string(c) }
