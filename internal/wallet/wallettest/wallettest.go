// Package wallettest builds wallet sessions for tests.
package wallettest

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/internal/tickers"
	"github.com/seenimoa/sendwallet/internal/wallet"
	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

// AccountAddress is the address of the default test account.
const AccountAddress = "0x000000000000000000000000000000000000dEaD"

// Option customizes a test session.
type Option func(*wallet.Session)

// WithAccount replaces the default account.
func WithAccount(a wallet.Account) Option {
	return func(s *wallet.Session) { s.Account = a }
}

// WithSettings replaces the default USD / Ethereum settings.
func WithSettings(settings wallet.Settings) Option {
	return func(s *wallet.Session) { s.Settings = settings }
}

// WithTickers replaces the default empty ticker store.
func WithTickers(lookup tickers.Lookup) Option {
	return func(s *wallet.Session) { s.Tickers = lookup }
}

// WithLocale sets the formatter locale.
func WithLocale(tag language.Tag) Option {
	return func(s *wallet.Session) { s.Formatter = utils.NewFormatter(tag) }
}

// NewSession returns a session with a fake account, USD on Ethereum, an
// en-US formatter and an empty in-memory ticker store.
func NewSession(opts ...Option) *wallet.Session {
	s := &wallet.Session{
		Account:   wallet.Account{Address: common.HexToAddress(AccountAddress), Name: "test"},
		Settings:  wallet.Settings{Currency: models.USD, Server: models.Ethereum},
		Tickers:   tickers.NewStore(time.Hour),
		Formatter: utils.NewFormatter(language.AmericanEnglish),
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the session's ticker store when it is the in-memory one.
func Store(s *wallet.Session) *tickers.Store {
	store, _ := s.Tickers.(*tickers.Store)
	return store
}
