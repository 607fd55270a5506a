// Package models defines the core data structures shared across sendwallet.
package models

import (
	"strings"
	"time"
)

// Ticker is an external price quote for an asset, keyed by its address.
// Price is kept exactly as the source delivered it; parsing happens at the
// point of use so a malformed quote degrades to "no price" instead of zero.
type Ticker struct {
	Address       string    `json:"address"`                  // contract address, zero address for native coins
	Symbol        string    `json:"symbol"`                   // e.g., "ETH"
	Price         string    `json:"price"`                    // e.g., "2000.00"
	PercentChange string    `json:"percent_change,omitempty"` // 24h change, e.g., "-1.25"
	Currency      string    `json:"currency,omitempty"`       // quote currency, e.g., "USD"
	Source        string    `json:"source,omitempty"`         // e.g., "coin-feed"
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Key returns the lookup key for the ticker's address.
func (t Ticker) Key() string {
	return TickerKey(t.Address)
}

// TickerKey normalizes an asset address into a ticker lookup key.
// Hex addresses are case-insensitive, so keys are lower-cased.
func TickerKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
