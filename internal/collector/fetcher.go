package collector

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"time"

	"CupSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchQuote returns the latest price for a ticker.
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	// FetchHistory returns samples at the given bar interval (e.g. "5m") covering
	// lookback up to now, oldest first.
	FetchHistory(ctx context.Context, symbol, interval string, lookback time.Duration) ([]model.PricePoint, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// roundCents rounds a price to two decimals.
func roundCents(p float64) float64 {
	return math.Round(p*100) / 100
}
