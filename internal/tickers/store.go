package tickers

import (
	"context"
	"sort"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// Store is a thread-safe in-memory ticker store. Entries older than the
// TTL read as missing, so a stale price never feeds a conversion.
type Store struct {
	cache *ttlcache.Cache[string, models.Ticker]
}

// NewStore creates a store whose entries expire after ttl.
// A ttl of zero or less keeps entries until replaced.
func NewStore(ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		cache: ttlcache.New[string, models.Ticker](
			ttlcache.WithTTL[string, models.Ticker](ttl),
			ttlcache.WithDisableTouchOnHit[string, models.Ticker](),
		),
	}
}

// Put stores tickers with the default TTL, replacing any with the same address.
func (s *Store) Put(tickers ...models.Ticker) {
	for _, t := range tickers {
		s.cache.Set(t.Key(), t, ttlcache.DefaultTTL)
	}
}

// PutWithTTL stores one ticker with a custom TTL. A ttl of zero or less
// never expires.
func (s *Store) PutWithTTL(t models.Ticker, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(t.Key(), t, ttl)
}

// Save implements Sink.
func (s *Store) Save(_ context.Context, tickers []models.Ticker) error {
	s.Put(tickers...)
	return nil
}

// Ticker returns the unexpired ticker for address.
func (s *Store) Ticker(address string) (models.Ticker, bool) {
	item := s.cache.Get(models.TickerKey(address))
	if item == nil || item.IsExpired() {
		return models.Ticker{}, false
	}
	return item.Value(), true
}

// All returns every unexpired ticker sorted by symbol, then address.
func (s *Store) All() []models.Ticker {
	items := s.cache.Items()
	out := make([]models.Ticker, 0, len(items))
	for _, item := range items {
		if !item.IsExpired() {
			out = append(out, item.Value())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Len returns the number of unexpired tickers.
func (s *Store) Len() int {
	n := 0
	for _, item := range s.cache.Items() {
		if !item.IsExpired() {
			n++
		}
	}
	return n
}

// Invalidate removes the ticker for address.
func (s *Store) Invalidate(address string) {
	s.cache.Delete(models.TickerKey(address))
}

// Flush removes all tickers.
func (s *Store) Flush() {
	s.cache.DeleteAll()
}

// Cleanup removes expired entries and returns how many were dropped.
func (s *Store) Cleanup() int {
	before := s.cache.Len()
	s.cache.DeleteExpired()
	return before - s.cache.Len()
}
