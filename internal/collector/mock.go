package collector

import (
	"context"
	"fmt"
	"time"

	"CupSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices  map[string]float64            // per-ticker quote; Base when absent
	Base    float64                       // fallback quote price
	History map[string][]model.PricePoint // per-ticker history; a gentle ramp when absent
	Fail    map[string]bool               // tickers whose fetches return an error
	Now     func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockFetcher) price(symbol string) float64 {
	if p, ok := m.Prices[symbol]; ok {
		return p
	}
	if m.Base > 0 {
		return m.Base
	}
	return 100
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	if m.Fail[symbol] {
		return model.Quote{}, fmt.Errorf("mock: quote for %s unavailable", symbol)
	}
	return model.Quote{Symbol: symbol, Price: m.price(symbol), AsOf: m.now().UTC()}, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, interval string, lookback time.Duration) ([]model.PricePoint, error) {
	if m.Fail[symbol] {
		return nil, fmt.Errorf("mock: history for %s unavailable", symbol)
	}
	if h, ok := m.History[symbol]; ok {
		return h, nil
	}
	step, err := time.ParseDuration(interval)
	if err != nil || step <= 0 {
		return nil, fmt.Errorf("mock: bad interval %q", interval)
	}
	return generateMockPoints(symbol, m.price(symbol), m.now().UTC(), step, int(lookback/step)), nil
}

func generateMockPoints(symbol string, basePrice float64, end time.Time, step time.Duration, count int) []model.PricePoint {
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Symbol: symbol,
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Price:  roundCents(basePrice * (1 + float64(i-count/2)*0.001)),
		}
	}
	return points
}
