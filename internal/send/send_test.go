package send

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/internal/rate"
	"github.com/seenimoa/sendwallet/internal/tickers"
	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

const (
	nativeKey = "0x0000000000000000000000000000000000000000"
	usdtHex   = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

func ethTickers(price string) tickers.Map {
	return tickers.Map{
		nativeKey: {Address: nativeKey, Symbol: "ETH", Price: price, Currency: "USD"},
	}
}

func newETHViewModel(t *testing.T, lookup rate.TickerLookup) *ViewModel {
	t.Helper()
	return New(models.NewNative(models.Ethereum), lookup, models.USD)
}

// ── Display surfaces ──

func TestViewModelSurfaces(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))

	if vm.Title() != "Send ETH" {
		t.Errorf("Title: got %q, want %q", vm.Title(), "Send ETH")
	}
	if vm.Symbol() != "ETH" {
		t.Errorf("Symbol: got %q", vm.Symbol())
	}
	if vm.DestinationAddress() != (common.Address{}) {
		t.Errorf("DestinationAddress: got %s, want zero address", vm.DestinationAddress())
	}
	if vm.TickerKey() != nativeKey {
		t.Errorf("TickerKey: got %q, want %q", vm.TickerKey(), nativeKey)
	}
	if vm.Decimals() != 18 {
		t.Errorf("Decimals: got %d, want 18", vm.Decimals())
	}
	if vm.SendAmount() != "0.0" {
		t.Errorf("SendAmount: got %q, want %q", vm.SendAmount(), "0.0")
	}
	if vm.Converter() == nil {
		t.Fatal("Converter should not be nil")
	}
}

func TestViewModelToken(t *testing.T) {
	token := models.NewToken(common.HexToAddress(usdtHex), "USDT", 6)
	lookup := tickers.Map{usdtHex: {Address: usdtHex, Symbol: "USDT", Price: "0.5"}}
	vm := New(token, lookup, models.USD)

	if vm.Title() != "Send USDT" {
		t.Errorf("Title: got %q", vm.Title())
	}
	if vm.DestinationAddress() != common.HexToAddress(usdtHex) {
		t.Errorf("DestinationAddress: got %s", vm.DestinationAddress())
	}
	if vm.FiatViewHidden() {
		t.Error("fiat view should show when the token has a price")
	}

	vm.SwapPair()
	got, err := vm.Refresh("10")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 20 USDT" {
		t.Errorf("Refresh: got %q, want %q", got, "~ 20 USDT")
	}
	if !vm.View().Token {
		t.Error("View.Token should be true")
	}
}

// ── FiatViewHidden ──

func TestFiatViewHidden(t *testing.T) {
	tests := []struct {
		name   string
		lookup rate.TickerLookup
		want   bool
	}{
		{"no store", nil, true},
		{"missing ticker", tickers.Map{}, true},
		{"unparsable", ethTickers("n/a"), true},
		{"zero price", ethTickers("0"), true},
		{"negative price", ethTickers("-1"), true},
		{"positive price", ethTickers("2000"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm := newETHViewModel(t, tc.lookup)
			if got := vm.FiatViewHidden(); got != tc.want {
				t.Errorf("FiatViewHidden: got %v, want %v", got, tc.want)
			}
		})
	}
}

// ── Refresh ──

func TestRefreshBaseSide(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))

	got, err := vm.Refresh("1.5")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 3,000.00 USD" {
		t.Errorf("Refresh: got %q, want %q", got, "~ 3,000.00 USD")
	}
	if vm.SendAmount() != "1.5" {
		t.Errorf("SendAmount: got %q, want %q", vm.SendAmount(), "1.5")
	}
	if vm.RateDisplay() != got {
		t.Errorf("RateDisplay: got %q, want %q", vm.RateDisplay(), got)
	}
	if vm.PriceStatus() != rate.PriceAvailable {
		t.Errorf("PriceStatus: got %s", vm.PriceStatus())
	}
}

func TestRefreshCounterSideSendsDerivedAmount(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))
	if pair := vm.SwapPair(); pair.Left != "USD" || pair.Right != "ETH" {
		t.Fatalf("SwapPair: got %v, want USD-ETH", pair)
	}

	got, err := vm.Refresh("3000")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 1.5 ETH" {
		t.Errorf("Refresh: got %q, want %q", got, "~ 1.5 ETH")
	}
	if vm.SendAmount() != "1.5" {
		t.Errorf("SendAmount: got %q, want the derived asset amount %q", vm.SendAmount(), "1.5")
	}
}

func TestSwapPairRerendersDisplay(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))
	if _, err := vm.Refresh("1.5"); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	vm.SwapPair()
	if vm.RateDisplay() != "~ 0.00075 ETH" {
		t.Errorf("RateDisplay after swap: got %q, want %q", vm.RateDisplay(), "~ 0.00075 ETH")
	}
	if vm.SendAmount() != "0.00075" {
		t.Errorf("SendAmount after swap: got %q, want %q", vm.SendAmount(), "0.00075")
	}
	if v := vm.View(); v.Pair != "USD-ETH" || v.RateDisplay != vm.RateDisplay() {
		t.Errorf("View: pair %q, display %q", v.Pair, v.RateDisplay)
	}

	vm.SwapPair()
	if vm.RateDisplay() != "~ 3,000.00 USD" {
		t.Errorf("RateDisplay after swapping back: got %q, want %q", vm.RateDisplay(), "~ 3,000.00 USD")
	}
}

func TestRefreshEmptyAmount(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))

	got, err := vm.Refresh("")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 0.00 USD" {
		t.Errorf("Refresh: got %q, want %q", got, "~ 0.00 USD")
	}
	if vm.SendAmount() != "0" {
		t.Errorf("SendAmount: got %q, want %q", vm.SendAmount(), "0")
	}
}

func TestRefreshInvalidAmount(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))
	for _, input := range []string{"abc", "1.2.3", "-5"} {
		if _, err := vm.Refresh(input); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Refresh(%q): got %v, want ErrInvalidAmount", input, err)
		}
	}
	if vm.SendAmount() != "0.0" {
		t.Errorf("invalid input must not change the amount, got %q", vm.SendAmount())
	}
}

func TestRefreshMissingTickerKeepsRate(t *testing.T) {
	lookup := ethTickers("2000")
	vm := newETHViewModel(t, lookup)
	if _, err := vm.Refresh("2"); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	delete(lookup, nativeKey)
	got, err := vm.Refresh("5")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 4,000.00 USD" {
		t.Errorf("missing ticker should keep the last rate: got %q", got)
	}
	if vm.PriceStatus() != rate.PriceMissing {
		t.Errorf("PriceStatus: got %s, want missing", vm.PriceStatus())
	}
	if !vm.FiatViewHidden() {
		t.Error("fiat view should hide once the ticker is gone")
	}
}

func TestRefreshLocalizedInput(t *testing.T) {
	f := utils.NewFormatter(language.German)
	vm := New(models.NewNative(models.Ethereum), ethTickers("2000"), models.EUR, WithFormatter(f))

	got, err := vm.Refresh("1,5")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got != "~ 3.000,00 EUR" {
		t.Errorf("Refresh: got %q, want %q", got, "~ 3.000,00 EUR")
	}
}

// ── Gas price / View ──

func TestGasPrice(t *testing.T) {
	vm := newETHViewModel(t, nil)
	if vm.GasPrice() != nil {
		t.Error("gas price should start unset")
	}
	if err := vm.SetGasPrice(big.NewInt(-1)); err == nil {
		t.Error("negative gas price should error")
	}

	wei := big.NewInt(20_000_000_000)
	if err := vm.SetGasPrice(wei); err != nil {
		t.Fatalf("SetGasPrice() error: %v", err)
	}
	wei.SetInt64(1)
	if vm.GasPrice().Int64() != 20_000_000_000 {
		t.Errorf("GasPrice should be copied, got %s", vm.GasPrice())
	}
	if vm.View().GasPrice != "20000000000" {
		t.Errorf("View.GasPrice: got %q", vm.View().GasPrice)
	}
}

func TestView(t *testing.T) {
	vm := newETHViewModel(t, ethTickers("2000"))
	if _, err := vm.Refresh("1"); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	v := vm.View()
	if v.Title != "Send ETH" || v.Pair != "ETH-USD" || v.ActiveSide != "base" {
		t.Errorf("View: got %+v", v)
	}
	if v.Rate != "2,000.00" || v.RateDisplay != "~ 2,000.00 USD" {
		t.Errorf("View rate: got %q / %q", v.Rate, v.RateDisplay)
	}
	if v.Amount != "1" || v.FiatViewHidden || v.PriceStatus != "available" {
		t.Errorf("View: got %+v", v)
	}
}
