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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart endpoint. Missing bars are JSON nulls.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, query url.Values) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}
	return &chart, nil
}

// FetchQuote prefers the regular market price and falls back to the last non-null close.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	chart, err := f.fetchChart(ctx, symbol, url.Values{"interval": {"1m"}, "range": {"1d"}})
	if err != nil {
		return model.Quote{}, err
	}
	res := chart.Chart.Result[0]
	if p := res.Meta.RegularMarketPrice; p > 0 {
		asOf := f.now().UTC()
		if res.Meta.RegularMarketTime > 0 {
			asOf = time.Unix(res.Meta.RegularMarketTime, 0).UTC()
		}
		return model.Quote{Symbol: symbol, Price: roundCents(p), AsOf: asOf}, nil
	}

	points := chartPoints(symbol, chart)
	if len(points) == 0 {
		return model.Quote{}, fmt.Errorf("yahoo: no price available for %s", symbol)
	}
	last := points[len(points)-1]
	return model.Quote{Symbol: symbol, Price: last.Price, AsOf: last.Time}, nil
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol, interval string, lookback time.Duration) ([]model.PricePoint, error) {
	end := f.now()
	query := url.Values{
		"interval": {interval},
		"period1":  {fmt.Sprint(end.Add(-lookback).Unix())},
		"period2":  {fmt.Sprint(end.Unix())},
	}
	chart, err := f.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}
	return chartPoints(symbol, chart), nil
}

// chartPoints flattens the chart into sorted samples, skipping null closes.
func chartPoints(symbol string, chart *yahooChart) []model.PricePoint {
	res := chart.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	closes := res.Indicators.Quote[0].Close
	points := make([]model.PricePoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // skip null bars (halts, holidays)
		}
		points = append(points, model.PricePoint{
			Symbol: symbol,
			Time:   time.Unix(ts, 0).UTC(),
			Price:  roundCents(*closes[i]),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}
