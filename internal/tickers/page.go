package tickers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// PageSelectors locate quotes in an HTML price table.
type PageSelectors struct {
	Row         string // one element per asset, e.g. "table#prices tbody tr"
	Address     string // element holding the address text, relative to Row
	AddressAttr string // attribute on Row holding the address, used when set
	Symbol      string
	Price       string
	Change      string // optional 24h change column
}

// PageSource scrapes tickers from an HTML page.
type PageSource struct {
	name     string
	url      string
	sel      PageSelectors
	currency string
	headers  map[string]string
	client   *http.Client
}

// NewPageSource creates a scraping source for url with the given selectors.
// currency is the quote currency the page lists prices in.
func NewPageSource(name, url, currency string, sel PageSelectors) *PageSource {
	return &PageSource{
		name:     name,
		url:      url,
		sel:      sel,
		currency: strings.ToUpper(currency),
		headers:  map[string]string{"Accept": "text/html"},
		client:   HTTPClient,
	}
}

// WithHeader adds a request header, e.g. an API key.
func (p *PageSource) WithHeader(key, value string) *PageSource {
	p.headers[key] = value
	return p
}

// Name returns the data source name.
func (p *PageSource) Name() string { return p.name }

// Fetch downloads the page and extracts tickers.
func (p *PageSource) Fetch(ctx context.Context) ([]models.Ticker, error) {
	body, err := doGet(ctx, p.client, p.url, p.headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return p.Parse(body)
}

// Parse extracts tickers from an HTML document.
func (p *PageSource) Parse(r io.Reader) ([]models.Ticker, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	now := time.Now().UTC()
	var out []models.Ticker
	doc.Find(p.sel.Row).Each(func(_ int, row *goquery.Selection) {
		var address string
		if p.sel.AddressAttr != "" {
			address, _ = row.Attr(p.sel.AddressAttr)
		} else {
			address = row.Find(p.sel.Address).First().Text()
		}
		address = strings.TrimSpace(address)
		if address == "" {
			return
		}

		t := models.Ticker{
			Address:   address,
			Symbol:    strings.ToUpper(strings.TrimSpace(row.Find(p.sel.Symbol).First().Text())),
			Price:     cleanNumber(row.Find(p.sel.Price).First().Text()),
			Currency:  p.currency,
			Source:    p.name,
			UpdatedAt: now,
		}
		if p.sel.Change != "" {
			t.PercentChange = cleanNumber(row.Find(p.sel.Change).First().Text())
		}
		out = append(out, t)
	})
	return out, nil
}
