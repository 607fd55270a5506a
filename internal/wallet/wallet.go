// Package wallet ties an account to its settings and the ticker store, and
// opens send screens for it.
package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/seenimoa/sendwallet/internal/config"
	"github.com/seenimoa/sendwallet/internal/rate"
	"github.com/seenimoa/sendwallet/internal/send"
	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

// Account is the wallet the user sends from.
type Account struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name,omitempty"`
}

// Settings are the resolved wallet preferences.
type Settings struct {
	Currency models.FiatCurrency
	Server   models.Server
}

// SettingsFromConfig resolves the wallet section of the config.
func SettingsFromConfig(cfg config.WalletConfig) (Settings, error) {
	fiat, err := models.ParseFiatCurrency(cfg.Currency)
	if err != nil {
		return Settings{}, err
	}
	server, err := models.ServerByID(cfg.Server)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Currency: fiat, Server: server}, nil
}

// Session is one unlocked account with everything a send screen needs.
type Session struct {
	Account   Account
	Settings  Settings
	Tickers   rate.TickerLookup
	Formatter *utils.Formatter
	Logger    *zap.Logger
}

// NewSession builds a session from config. tickers may be nil, in which
// case fiat conversion is never available.
func NewSession(account Account, cfg config.WalletConfig, tickers rate.TickerLookup, logger *zap.Logger) (*Session, error) {
	settings, err := SettingsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("wallet settings: %w", err)
	}
	formatter, err := utils.NewFormatterForLocale(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("wallet locale: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		Account:   account,
		Settings:  settings,
		Tickers:   tickers,
		Formatter: formatter,
		Logger:    logger,
	}, nil
}

// NativeTransfer returns the transfer type for the network's native coin.
func (s *Session) NativeTransfer() models.TransferType {
	return models.NewNative(s.Settings.Server)
}

// NewSendViewModel opens a send screen for transfer.
func (s *Session) NewSendViewModel(transfer models.TransferType) *send.ViewModel {
	return send.New(transfer, s.Tickers, s.Settings.Currency,
		send.WithFormatter(s.Formatter),
		send.WithLogger(s.Logger.With(
			zap.String("account", s.Account.Address.Hex()),
			zap.String("symbol", transfer.Symbol()),
		)),
	)
}
