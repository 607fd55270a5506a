package tickers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// PerMinute returns a limiter allowing n fetches a minute, one at a time.
// It returns nil, meaning unlimited, when n is zero or less.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// throttledSource waits on a limiter before every fetch.
type throttledSource struct {
	Source
	limiter *rate.Limiter
}

// Throttled wraps src so it fetches at most as often as limiter allows.
// A nil limiter returns src unchanged.
func Throttled(src Source, limiter *rate.Limiter) Source {
	if limiter == nil {
		return src
	}
	return &throttledSource{Source: src, limiter: limiter}
}

func (s *throttledSource) Fetch(ctx context.Context) ([]models.Ticker, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.Source.Fetch(ctx)
}
