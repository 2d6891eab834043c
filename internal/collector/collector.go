package collector

import (
	"context"
	"fmt"
	"time"

	"CupSentinel/internal/model"
	"CupSentinel/internal/store"

	"github.com/rs/zerolog"
)

// Metrics is the subset of the metrics recorder the collector reports to.
type Metrics interface {
	RecordFetchError(source string)
	RecordLastPrice(ticker string, price float64)
}

// Collector fetches prices for the tracked tickers and appends them to the store.
type Collector struct {
	fetcher Fetcher
	store   store.PriceStore
	tickers []string
	metrics Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st store.PriceStore, tickers []string, m Metrics, log zerolog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   st,
		tickers: tickers,
		metrics: m,
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
		now:     time.Now,
	}
}

// Collect takes one quote per ticker and stores them under a single timestamp
// shared by the whole round. Tickers that fail are logged and skipped.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	ts := c.now().UTC().Truncate(time.Second)
	points := make([]model.PricePoint, 0, len(c.tickers))

	for _, ticker := range c.tickers {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		q, err := c.fetcher.FetchQuote(ctx, ticker)
		if err != nil {
			c.metrics.RecordFetchError(c.fetcher.Name())
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("quote fetch failed, skipping")
			continue
		}
		points = append(points, model.PricePoint{Symbol: ticker, Time: ts, Price: q.Price})
		c.metrics.RecordLastPrice(ticker, q.Price)
	}

	if len(points) == 0 {
		return 0, fmt.Errorf("collect: no quotes for %d tickers", len(c.tickers))
	}
	if err := c.store.Append(ctx, points...); err != nil {
		return 0, fmt.Errorf("store prices: %w", err)
	}
	c.log.Info().Int("stored", len(points)).Int("tracked", len(c.tickers)).Time("at", ts).Msg("prices collected")
	return len(points), nil
}

// Backfill loads history covering lookback for every ticker so detection has
// a full window right after startup.
func (c *Collector) Backfill(ctx context.Context, interval string, lookback time.Duration) (int, error) {
	total := 0
	for _, ticker := range c.tickers {
		points, err := c.fetcher.FetchHistory(ctx, ticker, interval, lookback)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			c.metrics.RecordFetchError(c.fetcher.Name())
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("history fetch failed, skipping")
			continue
		}
		if len(points) == 0 {
			continue
		}
		if err := c.store.Append(ctx, points...); err != nil {
			return total, fmt.Errorf("store history %s: %w", ticker, err)
		}
		total += len(points)
		c.metrics.RecordLastPrice(ticker, points[len(points)-1].Price)
		c.log.Debug().Str("ticker", ticker).Int("points", len(points)).Msg("history loaded")
	}
	c.log.Info().Int("points", total).Dur("lookback", lookback).Msg("backfill complete")
	return total, nil
}
