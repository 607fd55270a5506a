package tickers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// ErrNoSources is returned when a refresher has nothing to fetch from.
var ErrNoSources = errors.New("tickers: no sources configured")

// RefreshResult summarizes one refresh cycle.
type RefreshResult struct {
	Tickers []models.Ticker  // merged tickers written to the sinks
	Failed  map[string]error // source name → fetch error
	Took    time.Duration
}

// Refresher pulls tickers from every source concurrently and writes the
// merged batch to every sink. A failing source is logged and skipped.
type Refresher struct {
	sources []Source
	sinks   []Sink
	logger  *zap.Logger
}

// NewRefresher creates a refresher. When two sources publish the same
// address, the ticker with the later UpdatedAt wins; on a tie the source
// listed first wins.
func NewRefresher(sources []Source, sinks []Sink, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{sources: sources, sinks: sinks, logger: logger}
}

// Sources returns the registered sources.
func (r *Refresher) Sources() []Source { return r.sources }

// Refresh runs one fetch cycle. It fails only when every source failed or
// a sink rejected the batch.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshResult, error) {
	if len(r.sources) == 0 {
		return nil, ErrNoSources
	}
	start := time.Now()

	batches := make([][]models.Ticker, len(r.sources))
	failed := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range r.sources {
		i, src := i, src
		g.Go(func() error {
			tickers, err := src.Fetch(gctx)
			if err != nil {
				mu.Lock()
				failed[src.Name()] = err
				mu.Unlock()
				r.logger.Warn("ticker source failed",
					zap.String("source", src.Name()), zap.Error(err))
				return nil // non-fatal
			}
			batches[i] = tickers
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == len(r.sources) {
		errs := make([]error, 0, len(failed))
		for name, err := range failed {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return &RefreshResult{Failed: failed, Took: time.Since(start)},
			fmt.Errorf("all ticker sources failed: %w", errors.Join(errs...))
	}

	merged := merge(batches)
	for _, sink := range r.sinks {
		if err := sink.Save(ctx, merged); err != nil {
			return nil, fmt.Errorf("save tickers: %w", err)
		}
	}

	res := &RefreshResult{Tickers: merged, Failed: failed, Took: time.Since(start)}
	r.logger.Info("tickers refreshed",
		zap.Int("tickers", len(merged)),
		zap.Int("failed_sources", len(failed)),
		zap.Duration("took", res.Took))
	return res, nil
}

// Run refreshes immediately and then every interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Error("ticker refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil {
				r.logger.Error("ticker refresh failed", zap.Error(err))
			}
		}
	}
}

func merge(batches [][]models.Ticker) []models.Ticker {
	byKey := make(map[string]models.Ticker)
	for _, batch := range batches {
		for _, t := range batch {
			key := t.Key()
			if key == "" {
				continue
			}
			if prev, ok := byKey[key]; ok && !t.UpdatedAt.After(prev.UpdatedAt) {
				continue
			}
			byKey[key] = t
		}
	}

	out := make([]models.Ticker, 0, len(byKey))
	for _, t := range byKey {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
