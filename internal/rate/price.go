package rate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// TickerLookup is the read-only price store the converter consults.
// Implementations key tickers by models.TickerKey(address).
type TickerLookup interface {
	Ticker(address string) (models.Ticker, bool)
}

// PriceStatus names the outcome of looking up a price for an asset.
type PriceStatus int

const (
	// PriceAvailable means a positive decimal price was found.
	PriceAvailable PriceStatus = iota
	// PriceMissing means there is no ticker for the asset.
	PriceMissing
	// PriceUnparsable means the ticker's price string is not a decimal.
	PriceUnparsable
	// PriceNotPositive means the price parsed to zero or a negative number.
	PriceNotPositive
)

func (s PriceStatus) String() string {
	switch s {
	case PriceAvailable:
		return "available"
	case PriceMissing:
		return "missing"
	case PriceUnparsable:
		return "unparsable"
	case PriceNotPositive:
		return "not_positive"
	default:
		return "unknown"
	}
}

// Err maps the status to its sentinel error, or nil for PriceAvailable.
func (s PriceStatus) Err() error {
	switch s {
	case PriceMissing:
		return ErrMissingTicker
	case PriceUnparsable:
		return ErrUnparsablePrice
	case PriceNotPositive:
		return ErrNonPositivePrice
	default:
		return nil
	}
}

// LookupPrice finds and parses the price for address. The decimal is
// returned whenever the price parsed, including zero and negative prices,
// so callers can tell "no price" apart from "price is zero".
func LookupPrice(lookup TickerLookup, address string) (decimal.Decimal, PriceStatus) {
	if lookup == nil {
		return decimal.Zero, PriceMissing
	}
	ticker, ok := lookup.Ticker(models.TickerKey(address))
	if !ok {
		return decimal.Zero, PriceMissing
	}
	price, ok := ParsePrice(ticker.Price)
	if !ok {
		return decimal.Zero, PriceUnparsable
	}
	if !price.IsPositive() {
		return price, PriceNotPositive
	}
	return price, PriceAvailable
}

// IsConversionAvailable reports whether a positive price exists for address.
// The send screen shows the fiat equivalent only when this is true.
func IsConversionAvailable(lookup TickerLookup, address string) bool {
	_, status := LookupPrice(lookup, address)
	return status == PriceAvailable
}

// ParsePrice parses a ticker price string. Prices are machine-formatted:
// plain decimals and exponent notation ("1e3") are accepted, localized
// separators are not.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
