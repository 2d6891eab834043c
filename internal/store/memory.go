package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"CupSentinel/internal/model"
)

// MemoryStore keeps samples in process memory. Used when no database is configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]model.PricePoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]model.PricePoint)}
}

func (m *MemoryStore) Append(_ context.Context, points ...model.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range points {
		series := m.data[p.Symbol]
		i := sort.Search(len(series), func(i int) bool { return !series[i].Time.Before(p.Time) })
		if i < len(series) && series[i].Time.Equal(p.Time) {
			series[i] = p
			continue
		}
		series = append(series, model.PricePoint{})
		copy(series[i+1:], series[i:])
		series[i] = p
		m.data[p.Symbol] = series
	}
	return nil
}

func (m *MemoryStore) Range(_ context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.PricePoint
	for _, p := range m.data[symbol] {
		if p.Time.Before(from) || p.Time.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) Trim(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for sym, series := range m.data {
		i := sort.Search(len(series), func(i int) bool { return !series[i].Time.Before(before) })
		removed += int64(i)
		m.data[sym] = append([]model.PricePoint(nil), series[i:]...)
	}
	return removed, nil
}

func (m *MemoryStore) Close() error { return nil }
