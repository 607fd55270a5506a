package tickers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seenimoa/sendwallet/internal/config"
)

// SourcesFromConfig builds every source the ticker config lists, in the
// order files, feeds, pages. Remote sources are throttled to
// cfg.RateLimit fetches per minute when it is set.
func SourcesFromConfig(cfg config.TickersConfig) []Source {
	remote := func(src Source) Source {
		return Throttled(src, PerMinute(cfg.RateLimit))
	}

	var sources []Source
	for _, path := range cfg.Files {
		sources = append(sources, NewFileSource(path))
	}
	for _, f := range cfg.Feeds {
		name := f.Name
		if name == "" {
			name = f.URL
		}
		sources = append(sources, remote(NewFeedSource(name, f.URL)))
	}
	for _, p := range cfg.Pages {
		name := p.Name
		if name == "" {
			name = p.URL
		}
		src := NewPageSource(name, p.URL, p.Currency, PageSelectors{
			Row:         p.Row,
			Address:     p.Address,
			AddressAttr: p.AddressAttr,
			Symbol:      p.Symbol,
			Price:       p.Price,
			Change:      p.Change,
		})
		if cfg.APIKey != "" {
			src.WithHeader("X-API-Key", cfg.APIKey)
		}
		sources = append(sources, remote(src))
	}
	return sources
}

// Backend is the ticker store an application reads from, plus the sinks
// its refresher writes to.
type Backend struct {
	Memory *Store
	Redis  *RedisStore // nil when no Redis URL is configured
}

// Lookup returns the store conversions should read. Redis wins when
// configured, since other processes may refresh it.
func (b *Backend) Lookup() Lookup {
	if b.Redis != nil {
		return b.Redis
	}
	return b.Memory
}

// Sinks returns every store a refresh should write to.
func (b *Backend) Sinks() []Sink {
	sinks := []Sink{b.Memory}
	if b.Redis != nil {
		sinks = append(sinks, b.Redis)
	}
	return sinks
}

// Close releases the Redis connection, if any.
func (b *Backend) Close() error {
	if b.Redis != nil {
		return b.Redis.Close()
	}
	return nil
}

// OpenBackend creates the in-memory store and, when configured, connects
// the Redis store.
func OpenBackend(ctx context.Context, cfg config.TickersConfig, logger *zap.Logger) (*Backend, error) {
	b := &Backend{Memory: NewStore(cfg.TTLDuration())}
	if cfg.Redis.URL == "" {
		return b, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rs, err := DialRedis(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.TTLDuration(),
		WithKeyPrefix(cfg.Redis.KeyPrefix),
		WithRedisLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open redis ticker store: %w", err)
	}
	b.Redis = rs
	return b, nil
}
