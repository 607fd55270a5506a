package tickers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ── cleanNumber ──

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2000.50", "2000.50"},
		{"$2,000.50", "2000.50"},
		{" €1 234.5 ", "1234.5"},
		{"-1.25%", "-1.25"},
		{"1 000", "1000"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := cleanNumber(tc.input); got != tc.want {
			t.Errorf("cleanNumber(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── FileSource ──

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.json")
	content := `[
		{"address": "0x0000000000000000000000000000000000000000", "symbol": "ETH", "price": "2000.00"},
		{"address": "", "symbol": "BAD", "price": "1"},
		{"address": "0xdAC17F958D2ee523a2206206994597C13D831ec7", "symbol": "USDT", "price": "1.0001", "updated_at": "2024-01-02T15:04:05Z"}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write tickers: %v", err)
	}

	src := NewFileSource(path)
	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch: got %d tickers, want 2", len(got))
	}
	if got[0].Symbol != "ETH" || got[0].UpdatedAt.IsZero() {
		t.Errorf("ETH ticker: got %+v", got[0])
	}
	if got[0].Source != src.Name() {
		t.Errorf("Source: got %q, want %q", got[0].Source, src.Name())
	}
	if got[1].UpdatedAt.Year() != 2024 {
		t.Errorf("USDT UpdatedAt should be kept, got %s", got[1].UpdatedAt)
	}
}

func TestFileSourceErrors(t *testing.T) {
	if _, err := NewFileSource("/nonexistent/tickers.json").Fetch(context.Background()); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	_ = os.WriteFile(path, []byte(`{"not": "an array"`), 0644)
	if _, err := NewFileSource(path).Fetch(context.Background()); err == nil {
		t.Error("malformed JSON should error")
	}
}

// ── FeedSource ──

const priceFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Prices</title>
  <item>
    <guid>0x0000000000000000000000000000000000000000</guid>
    <title>eth</title>
    <description>2,000.00</description>
    <category>usd</category>
    <pubDate>Tue, 02 Jan 2024 15:04:05 GMT</pubDate>
  </item>
  <item>
    <title>no guid</title>
    <description>1</description>
  </item>
</channel>
</rss>`

func TestParseFeed(t *testing.T) {
	got, err := ParseFeed(strings.NewReader(priceFeed), "test-feed")
	if err != nil {
		t.Fatalf("ParseFeed() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ParseFeed: got %d tickers, want 1", len(got))
	}
	tk := got[0]
	if tk.Symbol != "ETH" {
		t.Errorf("Symbol: got %q, want %q", tk.Symbol, "ETH")
	}
	if tk.Price != "2000.00" {
		t.Errorf("Price: got %q, want %q", tk.Price, "2000.00")
	}
	if tk.Currency != "USD" {
		t.Errorf("Currency: got %q, want %q", tk.Currency, "USD")
	}
	if tk.UpdatedAt.Year() != 2024 {
		t.Errorf("UpdatedAt: got %s", tk.UpdatedAt)
	}
	if tk.Source != "test-feed" {
		t.Errorf("Source: got %q", tk.Source)
	}
}

func TestFeedSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(priceFeed))
	}))
	defer srv.Close()

	src := NewFeedSource("coin-feed", srv.URL)
	if src.Name() != "coin-feed" {
		t.Errorf("Name: got %q", src.Name())
	}
	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got) != 1 || got[0].Key() != ethAddress {
		t.Errorf("Fetch: got %+v", got)
	}
}

func TestFeedSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewFeedSource("down", srv.URL).Fetch(context.Background()); err == nil {
		t.Error("non-2xx feed should error")
	}
}

// ── PageSource ──

const pricePage = `<html><body>
<table id="prices"><tbody>
  <tr data-address="0x0000000000000000000000000000000000000000">
    <td class="addr">0x0000000000000000000000000000000000000000</td>
    <td class="symbol">ETH</td><td class="price">$2,000.00</td><td class="change">+1.5%</td>
  </tr>
  <tr data-address="0xdAC17F958D2ee523a2206206994597C13D831ec7">
    <td class="addr">0xdAC17F958D2ee523a2206206994597C13D831ec7</td>
    <td class="symbol">usdt</td><td class="price">$1.00</td><td class="change">-0.01%</td>
  </tr>
  <tr><td class="symbol">NOADDR</td><td class="price">1</td></tr>
</tbody></table>
</body></html>`

func TestPageSourceParse(t *testing.T) {
	tests := []struct {
		name string
		sel  PageSelectors
	}{
		{"attribute", PageSelectors{Row: "table#prices tbody tr", AddressAttr: "data-address", Symbol: "td.symbol", Price: "td.price", Change: "td.change"}},
		{"cell", PageSelectors{Row: "table#prices tbody tr", Address: "td.addr", Symbol: "td.symbol", Price: "td.price", Change: "td.change"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := NewPageSource("page", "http://unused", "usd", tc.sel)
			got, err := src.Parse(strings.NewReader(pricePage))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Parse: got %d tickers, want 2", len(got))
			}
			if got[0].Price != "2000.00" || got[0].PercentChange != "+1.5" {
				t.Errorf("ETH row: got %+v", got[0])
			}
			if got[1].Symbol != "USDT" || got[1].Currency != "USD" {
				t.Errorf("USDT row: got %+v", got[1])
			}
		})
	}
}

func TestPageSourceFetchSendsHeaders(t *testing.T) {
	var gotKey, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(pricePage))
	}))
	defer srv.Close()

	src := NewPageSource("page", srv.URL, "USD", PageSelectors{
		Row: "tr", AddressAttr: "data-address", Symbol: ".symbol", Price: ".price",
	}).WithHeader("X-API-Key", "secret")

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Fetch: got %d tickers, want 2", len(got))
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key: got %q", gotKey)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent: got %q", gotUA)
	}
}

func TestPageSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPageSource("page", srv.URL, "USD", PageSelectors{Row: "tr"}).Fetch(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode: got %d, want 403", httpErr.StatusCode)
	}
}
