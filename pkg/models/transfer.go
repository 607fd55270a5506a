package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// TransferType says what is being sent: the network's native coin or a
// token contract. The set of variants is closed; add new asset kinds here.
type TransferType interface {
	// Symbol is the display symbol and the left side of the conversion pair.
	Symbol() string

	// Decimals is the precision used when displaying token amounts.
	Decimals() int

	// Contract is the asset address tickers are keyed by.
	Contract() common.Address

	transferType()
}

// Native sends the coin of the given network.
type Native struct {
	Server Server `json:"server"`
}

// NewNative returns a Native transfer on server.
func NewNative(server Server) Native {
	return Native{Server: server}
}

func (n Native) Symbol() string { return n.Server.Symbol }

func (n Native) Decimals() int { return n.Server.Decimals }

// Contract returns the zero address, which is how native coin tickers are keyed.
func (n Native) Contract() common.Address { return common.Address{} }

func (Native) transferType() {}

// TokenInfo describes a token contract as the wallet's token list knows it.
type TokenInfo struct {
	Contract common.Address `json:"contract"`
	Name     string         `json:"name,omitempty"`
	Symbol   string         `json:"symbol"`
	Decimals int            `json:"decimals"`
}

// Token sends an ERC20-style token.
type Token struct {
	Info TokenInfo `json:"token"`
}

// NewToken returns a Token transfer for the contract at address.
func NewToken(address common.Address, symbol string, decimals int) Token {
	return Token{Info: TokenInfo{Contract: address, Symbol: symbol, Decimals: decimals}}
}

func (t Token) Symbol() string { return t.Info.Symbol }

func (t Token) Decimals() int { return t.Info.Decimals }

func (t Token) Contract() common.Address { return t.Info.Contract }

func (Token) transferType() {}

// IsToken reports whether tt is a token transfer.
func IsToken(tt TransferType) bool {
	_, ok := tt.(Token)
	return ok
}
