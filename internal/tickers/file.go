package tickers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// FileSource reads tickers from a JSON file holding an array of tickers.
type FileSource struct {
	path string
	now  func() time.Time
}

// NewFileSource creates a source for the JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, now: time.Now}
}

// Name returns the data source name.
func (f *FileSource) Name() string { return "file:" + f.path }

// Fetch reads and decodes the file. Tickers without an UpdatedAt are
// stamped with the read time.
func (f *FileSource) Fetch(ctx context.Context) ([]models.Ticker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open ticker file: %w", err)
	}
	defer file.Close()

	tickers, err := DecodeJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	now := f.now()
	for i := range tickers {
		if tickers[i].UpdatedAt.IsZero() {
			tickers[i].UpdatedAt = now
		}
		if tickers[i].Source == "" {
			tickers[i].Source = f.Name()
		}
	}
	return tickers, nil
}

// DecodeJSON decodes a JSON array of tickers, skipping entries without an address.
func DecodeJSON(r io.Reader) ([]models.Ticker, error) {
	var raw []models.Ticker
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}

	out := raw[:0]
	for _, t := range raw {
		if t.Address == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
