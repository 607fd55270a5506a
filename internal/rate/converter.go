// Package rate converts send amounts between an asset and the user's fiat
// currency and renders the result for display on the send screen.
package rate

import (
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

// minDivisionScale is the number of fractional digits kept when converting
// fiat into an asset amount, before display rounding.
const minDivisionScale = 16

// State is an immutable snapshot of the conversion. A new State replaces
// the old one on every change, so Pair, PairRate and Rate are always read
// together from the same update.
type State struct {
	Pair     models.Pair     `json:"pair"`
	PairRate decimal.Decimal `json:"pair_rate"`
	Rate     string          `json:"rate"`   // formatted PairRate without prefix or symbol
	Amount   string          `json:"amount"` // amount to send as entered or derived
}

// ActiveSide reports which side of the pair the user is entering for symbol.
func (s State) ActiveSide(symbol string) models.Side {
	return s.Pair.ActiveSide(symbol)
}

// Converter holds the conversion state of one send screen.
//
// Reads through Snapshot are always consistent. Mutating calls are applied
// atomically one at a time, but their order is whatever order callers make
// them in; a UI that can emit concurrent edits must serialize them itself.
type Converter struct {
	symbol    string
	fiat      models.FiatCurrency
	decimals  int
	formatter *utils.Formatter
	logger    *zap.Logger

	state atomic.Pointer[State]
}

// Option configures a Converter.
type Option func(*Converter)

// WithFormatter sets the locale formatter. Defaults to en-US.
func WithFormatter(f *utils.Formatter) Option {
	return func(c *Converter) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConverter returns a converter for sending transfer, displayed against fiat.
// The pair starts as (asset symbol, fiat code) with a zero rate.
func NewConverter(transfer models.TransferType, fiat models.FiatCurrency, opts ...Option) *Converter {
	c := &Converter{
		symbol:   transfer.Symbol(),
		fiat:     fiat,
		decimals: transfer.Decimals(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.formatter == nil {
		c.formatter = utils.NewFormatter(language.AmericanEnglish)
	}

	c.state.Store(&State{
		Pair:     models.NewPair(c.symbol, fiat.String()),
		PairRate: decimal.Zero,
		Rate:     "0.0",
		Amount:   "0.0",
	})
	return c
}

// Symbol returns the asset symbol.
func (c *Converter) Symbol() string { return c.symbol }

// Fiat returns the fiat currency the asset is converted to.
func (c *Converter) Fiat() models.FiatCurrency { return c.fiat }

// Decimals returns the display precision for asset amounts.
func (c *Converter) Decimals() int { return c.decimals }

// Snapshot returns the current state.
func (c *Converter) Snapshot() State {
	return *c.state.Load()
}

// Pair returns the current conversion pair.
func (c *Converter) Pair() models.Pair {
	return c.state.Load().Pair
}

// ActiveSide returns which side of the pair the user is entering.
func (c *Converter) ActiveSide() models.Side {
	return c.state.Load().ActiveSide(c.symbol)
}

// SendAmount returns the amount to send.
func (c *Converter) SendAmount() string {
	return c.state.Load().Amount
}

// ComputePairRate converts amount with price and stores the result as the
// pair rate. Entering the asset yields amount*price in fiat; entering fiat
// yields amount/price in the asset. A zero price on the fiat side returns
// ErrDivisionByZero and leaves the state unchanged.
func (c *Converter) ComputePairRate(price, amount decimal.Decimal) (decimal.Decimal, error) {
	var (
		result decimal.Decimal
		err    error
	)
	c.update(func(s *State) bool {
		err = nil
		if s.ActiveSide(c.symbol) == models.SideBase {
			result = amount.Mul(price)
		} else {
			if price.IsZero() {
				err = ErrDivisionByZero
				return false
			}
			result = amount.DivRound(price, c.divisionScale())
		}
		s.PairRate = result
		return true
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result, nil
}

// FormatPairRate renders the pair rate as "~ {rate} {counter symbol}".
// Entering the asset formats the rate as fiat; entering fiat formats it as
// an asset amount. The bare formatted number is stored as the state's Rate.
// e.g., "~ 3,000.00 USD" or "~ 0.00075 ETH"
func (c *Converter) FormatPairRate() string {
	var display string
	c.update(func(s *State) bool {
		var formatted string
		if s.ActiveSide(c.symbol) == models.SideBase {
			formatted = c.formatter.Currency(s.PairRate, c.fiat)
		} else {
			formatted = c.formatter.Token(s.PairRate, c.decimals)
		}
		s.Rate = formatted
		display = "~ " + formatted + " " + s.Pair.Right
		return true
	})
	return display
}

// UpdateAmount sets the amount to send and returns it. Entering the asset
// uses input, or "0" when input is empty. Entering fiat uses the last
// formatted rate and ignores input: the derived asset value is what gets sent.
func (c *Converter) UpdateAmount(input string) string {
	next := c.update(func(s *State) bool {
		if s.ActiveSide(c.symbol) == models.SideBase {
			s.Amount = input
			if input == "" {
				s.Amount = "0"
			}
		} else {
			s.Amount = s.Rate
		}
		return true
	})
	return next.Amount
}

// RefreshFromTicker recomputes the pair rate from the ticker price for
// address. A missing ticker or unparsable price leaves the state as it was.
// The returned status says which case applied; it is never an error.
func (c *Converter) RefreshFromTicker(lookup TickerLookup, address string, amount decimal.Decimal) PriceStatus {
	price, status := LookupPrice(lookup, address)
	if status == PriceMissing || status == PriceUnparsable {
		c.logger.Debug("no price for asset, keeping previous rate",
			zap.String("address", address),
			zap.Stringer("status", status),
		)
		return status
	}

	if _, err := c.ComputePairRate(price, amount); err != nil {
		c.logger.Debug("rate not recomputed",
			zap.String("address", address),
			zap.String("price", price.String()),
			zap.Error(err),
		)
	}
	return status
}

// IsConversionAvailable reports whether a positive price exists for address.
func (c *Converter) IsConversionAvailable(lookup TickerLookup, address string) bool {
	return IsConversionAvailable(lookup, address)
}

// SwapPair flips which side the user is entering and returns the new pair.
func (c *Converter) SwapPair() models.Pair {
	next := c.update(func(s *State) bool {
		s.Pair = s.Pair.Swapped()
		return true
	})
	return next.Pair
}

// update applies fn to a copy of the current state and publishes it.
// fn returns false to leave the state untouched. fn may run more than once
// if another update lands first.
func (c *Converter) update(fn func(s *State) bool) State {
	for {
		old := c.state.Load()
		next := *old
		if !fn(&next) {
			return *old
		}
		if c.state.CompareAndSwap(old, &next) {
			return next
		}
	}
}

func (c *Converter) divisionScale() int32 {
	if c.decimals+2 > minDivisionScale {
		return int32(c.decimals + 2)
	}
	return minDivisionScale
}
