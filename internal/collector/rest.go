package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CupSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON quote service.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one history entry.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

func (f *RESTFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var result struct {
		Price     float64 `json:"price"`
		Timestamp int64   `json:"timestamp"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return model.Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if result.Price <= 0 {
		return model.Quote{}, fmt.Errorf("fetch quote %s: no price available", symbol)
	}
	asOf := f.now().UTC()
	if result.Timestamp > 0 {
		asOf = time.Unix(result.Timestamp, 0).UTC()
	}
	return model.Quote{Symbol: symbol, Price: roundCents(result.Price), AsOf: asOf}, nil
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, symbol, interval string, lookback time.Duration) ([]model.PricePoint, error) {
	end := f.now()
	endpoint := fmt.Sprintf("%s/api/v1/bars?symbol=%s&interval=%s&from=%d&to=%d",
		f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(interval), end.Add(-lookback).Unix(), end.Unix())

	var bars []restBar
	if err := f.getJSON(ctx, endpoint, &bars); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	points := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		points = append(points, model.PricePoint{
			Symbol: symbol,
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Price:  roundCents(b.Close),
		})
	}
	// Ensure chronological order
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
