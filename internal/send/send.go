// Package send is the view-model behind the send screen: title and symbol
// for the transfer, the fiat conversion shown under the amount field, and
// the amount that will actually be sent.
package send

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/internal/rate"
	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

// ErrInvalidAmount is returned when the entered amount is not a number.
var ErrInvalidAmount = errors.New("send: invalid amount")

// ViewModel backs one send screen.
type ViewModel struct {
	transfer  models.TransferType
	tickers   rate.TickerLookup
	formatter *utils.Formatter
	logger    *zap.Logger
	converter *rate.Converter

	mu       sync.RWMutex
	gasPrice *big.Int
	input    string
	display  string
	status   rate.PriceStatus
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithFormatter sets the locale formatter for display and amount parsing.
func WithFormatter(f *utils.Formatter) Option {
	return func(vm *ViewModel) {
		if f != nil {
			vm.formatter = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(vm *ViewModel) {
		if l != nil {
			vm.logger = l
		}
	}
}

// New creates the view-model for sending transfer, priced from tickers and
// displayed against fiat.
func New(transfer models.TransferType, tickers rate.TickerLookup, fiat models.FiatCurrency, opts ...Option) *ViewModel {
	vm := &ViewModel{
		transfer:  transfer,
		tickers:   tickers,
		formatter: utils.NewFormatter(language.AmericanEnglish),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.converter = rate.NewConverter(transfer, fiat,
		rate.WithFormatter(vm.formatter),
		rate.WithLogger(vm.logger),
	)
	vm.display = "~ " + vm.converter.Snapshot().Rate + " " + vm.converter.Pair().Right
	_, vm.status = rate.LookupPrice(tickers, vm.TickerKey())
	return vm
}

// Title returns the screen title, e.g. "Send ETH".
func (vm *ViewModel) Title() string {
	return "Send " + vm.Symbol()
}

// Symbol returns the symbol of the asset being sent.
func (vm *ViewModel) Symbol() string { return vm.transfer.Symbol() }

// DestinationAddress returns the asset's contract address; the zero
// address for the network's native coin.
func (vm *ViewModel) DestinationAddress() common.Address {
	return vm.transfer.Contract()
}

// TickerKey returns the key the asset's price is looked up under.
func (vm *ViewModel) TickerKey() string {
	return strings.ToLower(vm.DestinationAddress().Hex())
}

// Decimals returns the display precision for asset amounts.
func (vm *ViewModel) Decimals() int { return vm.transfer.Decimals() }

// Transfer returns what is being sent.
func (vm *ViewModel) Transfer() models.TransferType { return vm.transfer }

// Converter exposes the rate converter.
func (vm *ViewModel) Converter() *rate.Converter { return vm.converter }

// FiatViewHidden reports whether the fiat conversion should be hidden
// because no positive price is known for the asset.
func (vm *ViewModel) FiatViewHidden() bool {
	return !vm.converter.IsConversionAvailable(vm.tickers, vm.TickerKey())
}

// SendAmount returns the amount that will be sent.
func (vm *ViewModel) SendAmount() string {
	return vm.converter.SendAmount()
}

// RateDisplay returns the last composed rate text, e.g. "~ 3,000.00 USD".
func (vm *ViewModel) RateDisplay() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.display
}

// PriceStatus returns the outcome of the last price lookup.
func (vm *ViewModel) PriceStatus() rate.PriceStatus {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Refresh handles an edit of the amount field. It recomputes the pair rate
// from the current ticker, formats it and updates the amount to send.
// Empty text counts as zero; negative amounts are rejected. The composed
// rate text is returned.
func (vm *ViewModel) Refresh(amountText string) (string, error) {
	amount := decimal.Zero
	if strings.TrimSpace(amountText) != "" {
		parsed, err := vm.formatter.Parse(amountText)
		if err != nil || parsed.IsNegative() {
			return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amountText)
		}
		amount = parsed
	}

	status := vm.converter.RefreshFromTicker(vm.tickers, vm.TickerKey(), amount)
	display := vm.converter.FormatPairRate()
	vm.converter.UpdateAmount(strings.TrimSpace(amountText))

	vm.mu.Lock()
	vm.input = amountText
	vm.display = display
	vm.status = status
	vm.mu.Unlock()

	vm.logger.Debug("send amount refreshed",
		zap.String("symbol", vm.Symbol()),
		zap.String("pair", vm.converter.Pair().String()),
		zap.Stringer("price", status),
		zap.String("display", display),
	)
	return display, nil
}

// SwapPair flips between entering the asset and entering fiat. The last
// entered text is re-read on the new side, so the rate display and the
// amount to send always match the current pair.
func (vm *ViewModel) SwapPair() models.Pair {
	pair := vm.converter.SwapPair()

	vm.mu.RLock()
	input := vm.input
	vm.mu.RUnlock()

	if _, err := vm.Refresh(input); err != nil {
		vm.logger.Warn("rate not refreshed after swap", zap.Error(err))
	}
	return pair
}

// GasPrice returns the gas price chosen for the transaction, or nil.
func (vm *ViewModel) GasPrice() *big.Int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.gasPrice == nil {
		return nil
	}
	return new(big.Int).Set(vm.gasPrice)
}

// SetGasPrice sets the gas price in wei. Nil clears it.
func (vm *ViewModel) SetGasPrice(wei *big.Int) error {
	if wei != nil && wei.Sign() < 0 {
		return fmt.Errorf("gas price must not be negative, got %s", wei)
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if wei == nil {
		vm.gasPrice = nil
		return nil
	}
	vm.gasPrice = new(big.Int).Set(wei)
	return nil
}

// View is a JSON-ready snapshot of the screen.
type View struct {
	Title          string `json:"title"`
	Symbol         string `json:"symbol"`
	Address        string `json:"address"`
	Decimals       int    `json:"decimals"`
	Token          bool   `json:"token"`
	Pair           string `json:"pair"`
	ActiveSide     string `json:"active_side"`
	PairRate       string `json:"pair_rate"`
	Rate           string `json:"rate"`
	RateDisplay    string `json:"rate_display"`
	Amount         string `json:"amount"`
	FiatViewHidden bool   `json:"fiat_view_hidden"`
	PriceStatus    string `json:"price_status"`
	GasPrice       string `json:"gas_price,omitempty"`
}

// View returns the current screen snapshot.
func (vm *ViewModel) View() View {
	state := vm.converter.Snapshot()
	v := View{
		Title:          vm.Title(),
		Symbol:         vm.Symbol(),
		Address:        vm.DestinationAddress().Hex(),
		Decimals:       vm.Decimals(),
		Token:          models.IsToken(vm.transfer),
		Pair:           state.Pair.String(),
		ActiveSide:     string(state.ActiveSide(vm.Symbol())),
		PairRate:       state.PairRate.String(),
		Rate:           state.Rate,
		RateDisplay:    vm.RateDisplay(),
		Amount:         state.Amount,
		FiatViewHidden: vm.FiatViewHidden(),
		PriceStatus:    vm.PriceStatus().String(),
	}
	if gp := vm.GasPrice(); gp != nil {
		v.GasPrice = gp.String()
	}
	return v
}
