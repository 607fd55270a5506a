// Package tickers keeps the asset price quotes the send screen converts
// with. It provides lookups (in-memory, Redis), pull sources (JSON files,
// RSS/Atom feeds, scraped HTML tables) and a refresher that moves quotes
// from sources into stores.
package tickers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// Lookup resolves an asset address to its current ticker.
type Lookup interface {
	Ticker(address string) (models.Ticker, bool)
}

// Map is a fixed ticker lookup keyed by asset address.
type Map map[string]models.Ticker

// Ticker returns the ticker for address, matching keys case-insensitively.
func (m Map) Ticker(address string) (models.Ticker, bool) {
	if t, ok := m[address]; ok {
		return t, true
	}
	key := models.TickerKey(address)
	for k, t := range m {
		if models.TickerKey(k) == key {
			return t, true
		}
	}
	return models.Ticker{}, false
}

// Sink receives tickers produced by sources.
type Sink interface {
	Save(ctx context.Context, tickers []models.Ticker) error
}

// Source produces a batch of tickers.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Fetch returns the tickers currently published by the source.
	Fetch(ctx context.Context) ([]models.Ticker, error)
}

// HTTPError wraps a non-2xx response from a ticker source.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// DefaultUserAgent is sent with every source request.
const DefaultUserAgent = "sendwallet-tickers/1.0"

// HTTPClient is the client sources use unless given another.
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}

// doGet performs a GET request and returns the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = HTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp.Body, nil
}

// cleanNumber strips currency symbols, percent signs, grouping commas and
// whitespace from a scraped number, e.g. "$2,000.50" → "2000.50".
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "%", "", " ", "", "\u00a0", "", "\u202f", "")
	return replacer.Replace(s)
}
