package models

import (
	"fmt"
	"strings"
)

// Server describes an RPC network the wallet can send on. Its native coin
// symbol and display decimals drive the Native transfer type.
type Server struct {
	ID       string `json:"id"       mapstructure:"id"`       // e.g., "ethereum"
	Name     string `json:"name"     mapstructure:"name"`     // e.g., "Ethereum"
	Symbol   string `json:"symbol"   mapstructure:"symbol"`   // e.g., "ETH"
	Decimals int    `json:"decimals" mapstructure:"decimals"` // e.g., 18
	ChainID  int64  `json:"chain_id" mapstructure:"chain_id"`
}

// Known networks.
var (
	Ethereum = Server{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Decimals: 18, ChainID: 1}
	Classic  = Server{ID: "classic", Name: "Ethereum Classic", Symbol: "ETC", Decimals: 18, ChainID: 61}
	POA      = Server{ID: "poa", Name: "POA Network", Symbol: "POA", Decimals: 18, ChainID: 99}
	Callisto = Server{ID: "callisto", Name: "Callisto", Symbol: "CLO", Decimals: 18, ChainID: 820}
	GoChain  = Server{ID: "gochain", Name: "GoChain", Symbol: "GO", Decimals: 18, ChainID: 60}
)

// Servers lists every known network in display order.
var Servers = []Server{Ethereum, Classic, POA, Callisto, GoChain}

// ServerByID looks up a known network by its id (case-insensitive).
func ServerByID(id string) (Server, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range Servers {
		if s.ID == id {
			return s, nil
		}
	}
	return Server{}, fmt.Errorf("unknown server %q", id)
}
