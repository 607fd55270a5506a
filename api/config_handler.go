package api

import (
	"net/http"

	"github.com/seenimoa/sendwallet/internal/config"
	"github.com/seenimoa/sendwallet/pkg/models"
)

// ConfigResponse is returned by GET /api/v1/config. Secrets are left out.
type ConfigResponse struct {
	Wallet     config.WalletConfig   `json:"wallet"`
	Server     *models.Server        `json:"server,omitempty"`
	Currencies []models.FiatCurrency `json:"currencies"`
	Servers    []models.Server       `json:"servers"`
	Sources    SourcesSummary        `json:"sources"`
}

// SourcesSummary counts the configured ticker sources.
type SourcesSummary struct {
	Files int  `json:"files"`
	Feeds int  `json:"feeds"`
	Pages int  `json:"pages"`
	Redis bool `json:"redis"`
}

// handleGetConfig returns the running wallet configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "config not loaded")
		return
	}

	resp := ConfigResponse{
		Wallet:     s.cfg.Wallet,
		Currencies: models.SupportedCurrencies,
		Servers:    models.Servers,
		Sources: SourcesSummary{
			Files: len(s.cfg.Tickers.Files),
			Feeds: len(s.cfg.Tickers.Feeds),
			Pages: len(s.cfg.Tickers.Pages),
			Redis: s.cfg.Tickers.Redis.URL != "",
		},
	}
	if server, err := models.ServerByID(s.cfg.Wallet.Server); err == nil {
		resp.Server = &server
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleGetConfigKeys returns masked credential status.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "config not loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckCredentials(s.cfg),
	})
}
