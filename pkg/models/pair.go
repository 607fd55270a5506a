package models

import "fmt"

// Pair is an ordered conversion pair. Left is the side the user is
// entering an amount in; Right is the side the rate is displayed in.
// For a freshly opened send screen Left is the asset and Right the fiat code.
type Pair struct {
	Left  string `json:"left"`  // e.g., "ETH"
	Right string `json:"right"` // e.g., "USD"
}

// NewPair returns the pair (left, right).
func NewPair(left, right string) Pair {
	return Pair{Left: left, Right: right}
}

// Swapped returns the pair with its sides exchanged.
func (p Pair) Swapped() Pair {
	return Pair{Left: p.Right, Right: p.Left}
}

// String returns the pair in "LEFT-RIGHT" format, e.g. "ETH-USD".
func (p Pair) String() string {
	return fmt.Sprintf("%s-%s", p.Left, p.Right)
}

// Side identifies which member of a pair is being entered.
type Side string

const (
	// SideBase means the user enters the asset amount; the rate shows fiat.
	SideBase Side = "base"
	// SideCounter means the user enters fiat; the rate shows the asset amount.
	SideCounter Side = "counter"
)

// ActiveSide returns which side of p the user is entering, given the asset symbol.
func (p Pair) ActiveSide(symbol string) Side {
	if p.Left == symbol {
		return SideBase
	}
	return SideCounter
}
