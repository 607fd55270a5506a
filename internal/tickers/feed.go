package tickers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// FeedSource reads tickers from an RSS or Atom price feed. Each item is
// one quote: the GUID is the asset address, the title its symbol, the
// description the price and the first category the quote currency.
//
//	<item>
//	  <guid>0x0000000000000000000000000000000000000000</guid>
//	  <title>ETH</title>
//	  <description>2000.00</description>
//	  <category>USD</category>
//	  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
//	</item>
type FeedSource struct {
	name   string
	url    string
	parser *gofeed.Parser
}

// NewFeedSource creates a feed source for url.
func NewFeedSource(name, url string) *FeedSource {
	parser := gofeed.NewParser()
	parser.UserAgent = DefaultUserAgent
	parser.Client = HTTPClient
	return &FeedSource{
		name:   name,
		url:    url,
		parser: parser,
	}
}

// Name returns the data source name.
func (f *FeedSource) Name() string { return f.name }

// Fetch downloads and parses the feed.
func (f *FeedSource) Fetch(ctx context.Context) ([]models.Ticker, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}
	return tickersFromFeed(feed, f.name), nil
}

// ParseFeed parses a feed document from r into tickers.
func ParseFeed(r io.Reader, source string) ([]models.Ticker, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return tickersFromFeed(feed, source), nil
}

func tickersFromFeed(feed *gofeed.Feed, source string) []models.Ticker {
	out := make([]models.Ticker, 0, len(feed.Items))
	for _, item := range feed.Items {
		address := strings.TrimSpace(item.GUID)
		if address == "" {
			continue
		}

		t := models.Ticker{
			Address: address,
			Symbol:  strings.ToUpper(strings.TrimSpace(item.Title)),
			Price:   cleanNumber(item.Description),
			Source:  source,
		}
		if len(item.Categories) > 0 {
			t.Currency = strings.ToUpper(strings.TrimSpace(item.Categories[0]))
		}
		switch {
		case item.UpdatedParsed != nil:
			t.UpdatedAt = item.UpdatedParsed.UTC()
		case item.PublishedParsed != nil:
			t.UpdatedAt = item.PublishedParsed.UTC()
		default:
			t.UpdatedAt = time.Now().UTC()
		}
		out = append(out, t)
	}
	return out
}
