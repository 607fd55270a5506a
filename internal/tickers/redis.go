package tickers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// DefaultKeyPrefix namespaces ticker hashes in Redis.
const DefaultKeyPrefix = "ticker:"

// RedisStore keeps tickers as Redis hashes at {prefix}{address}, so
// several processes can share one refreshed price set.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithReadTimeout bounds the lookup of a single ticker.
func WithReadTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.timeout = d }
}

// WithRedisLogger sets the logger used for failed lookups.
func WithRedisLogger(l *zap.Logger) RedisOption {
	return func(s *RedisStore) { s.logger = l }
}

// NewRedisStore wraps an existing client. Saved tickers expire after ttl;
// a ttl of zero or less keeps them until overwritten.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:  client,
		prefix:  DefaultKeyPrefix,
		ttl:     ttl,
		timeout: 2 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis parses a redis:// URL, connects and pings the server. A
// non-empty password overrides the one in the URL.
func DialRedis(ctx context.Context, url, password string, ttl time.Duration, opts ...RedisOption) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opt.Password = password
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client, ttl, opts...), nil
}

func (s *RedisStore) key(address string) string {
	return s.prefix + models.TickerKey(address)
}

// Save implements Sink. All tickers are written in one pipeline.
func (s *RedisStore) Save(ctx context.Context, tickers []models.Ticker) error {
	if len(tickers) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, t := range tickers {
		key := s.key(t.Address)
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, tickerFields(t))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save tickers: %w", err)
	}
	return nil
}

// Ticker implements the lookup contract. Any Redis failure reads as a
// missing ticker and is logged.
func (s *RedisStore) Ticker(address string) (models.Ticker, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	t, err := s.Get(ctx, address)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis ticker lookup failed",
				zap.String("address", address), zap.Error(err))
		}
		return models.Ticker{}, false
	}
	return t, true
}

// Get reads one ticker. It returns redis.Nil when the key does not exist.
func (s *RedisStore) Get(ctx context.Context, address string) (models.Ticker, error) {
	fields, err := s.client.HGetAll(ctx, s.key(address)).Result()
	if err != nil {
		return models.Ticker{}, err
	}
	if len(fields) == 0 {
		return models.Ticker{}, redis.Nil
	}
	return tickerFromFields(fields), nil
}

// Delete removes the ticker for address.
func (s *RedisStore) Delete(ctx context.Context, address string) error {
	return s.client.Del(ctx, s.key(address)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func tickerFields(t models.Ticker) map[string]any {
	updated := ""
	if !t.UpdatedAt.IsZero() {
		updated = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"address":        t.Address,
		"symbol":         t.Symbol,
		"price":          t.Price,
		"percent_change": t.PercentChange,
		"currency":       t.Currency,
		"source":         t.Source,
		"updated_at":     updated,
	}
}

func tickerFromFields(f map[string]string) models.Ticker {
	t := models.Ticker{
		Address:       f["address"],
		Symbol:        f["symbol"],
		Price:         f["price"],
		PercentChange: f["percent_change"],
		Currency:      f["currency"],
		Source:        f["source"],
	}
	if ts, err := time.Parse(time.RFC3339, f["updated_at"]); err == nil {
		t.UpdatedAt = ts
	}
	return t
}
