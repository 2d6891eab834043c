package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"CupSentinel/internal/analyzer"
	"CupSentinel/internal/collector"
	"CupSentinel/internal/config"
	"CupSentinel/internal/metrics"
	"CupSentinel/internal/model"
	"CupSentinel/internal/pattern"
	"CupSentinel/internal/pattern/patterntest"
	"CupSentinel/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

// Wednesday 2025-03-12 15:00 EDT.
var marketOpen = time.Date(2025, 3, 12, 19, 0, 0, 0, time.UTC)

type fixture struct {
	sched  *Scheduler
	store  *store.MemoryStore
	sender *fakeSender
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	book, err := config.NewSymbolBook([]model.Symbol{
		{Ticker: "AAPL", Company: "Apple"},
		{Ticker: "MSFT", Company: "Microsoft"},
	})
	require.NoError(t, err)

	st := store.NewMemoryStore()
	rec := metrics.New()
	col := collector.NewCollector(&collector.MockFetcher{Base: 150}, st, book.Tickers(), rec, zerolog.Nop())
	an := analyzer.New(book, st, pattern.DefaultConfig(), 72*time.Hour, rec, zerolog.Nop())
	sender := &fakeSender{}

	s := NewScheduler(context.Background(), col, st, an, book, sender, newYork(t), 72*time.Hour, zerolog.Nop())
	s.now = func() time.Time { return now }
	return fixture{sched: s, store: st, sender: sender}
}

// seed writes prices at 5 minute steps ending at end. The analyzer reads
// relative to the wall clock, so scans seed up to time.Now().
func seed(t *testing.T, st store.PriceStore, ticker string, end time.Time, prices []float64) {
	t.Helper()
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Symbol: ticker, Time: end.Add(-time.Duration(len(prices)-1-i) * 5 * time.Minute), Price: p}
	}
	require.NoError(t, st.Append(context.Background(), points...))
}

func TestIsTradingHours(t *testing.T) {
	ny := newYork(t)
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"open bell", time.Date(2025, 3, 12, 9, 30, 0, 0, ny), true},
		{"before open", time.Date(2025, 3, 12, 9, 29, 59, 0, ny), false},
		{"midday", time.Date(2025, 3, 12, 12, 0, 0, 0, ny), true},
		{"close bell", time.Date(2025, 3, 12, 16, 0, 0, 0, ny), true},
		{"after close", time.Date(2025, 3, 12, 16, 0, 1, 0, ny), false},
		{"saturday", time.Date(2025, 3, 15, 12, 0, 0, 0, ny), false},
		{"sunday", time.Date(2025, 3, 16, 12, 0, 0, 0, ny), false},
		{"utc input converted", time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC), true},
		{"utc input before open", time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTradingHours(tt.at, ny))
		})
	}
}

func TestFetchNow(t *testing.T) {
	f := newFixture(t, marketOpen)
	n, err := f.sched.FetchNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	closed := newFixture(t, time.Date(2025, 3, 15, 17, 0, 0, 0, time.UTC))
	n, err = closed.sched.FetchNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTrimNow(t *testing.T) {
	f := newFixture(t, marketOpen)
	ctx := context.Background()
	require.NoError(t, f.store.Append(ctx,
		model.PricePoint{Symbol: "AAPL", Time: marketOpen.Add(-96 * time.Hour), Price: 1},
		model.PricePoint{Symbol: "AAPL", Time: marketOpen.Add(-time.Hour), Price: 2},
	))

	n, err := f.sched.TrimNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestScanNow_AlertsOncePerPattern(t *testing.T) {
	f := newFixture(t, marketOpen)
	seed(t, f.store, "AAPL", time.Now(), patterntest.CupAndHandle(134))
	seed(t, f.store, "MSFT", time.Now(), patterntest.CupAndHandle(90))

	alerted := f.sched.ScanNow(context.Background())
	assert.Equal(t, []string{"AAPL"}, alerted)
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "Apple (AAPL)")

	// Still detected: no repeat alert.
	assert.Empty(t, f.sched.ScanNow(context.Background()))
	assert.Len(t, f.sender.sent, 1)
}

func TestHandleCommand(t *testing.T) {
	f := newFixture(t, marketOpen)
	seed(t, f.store, "AAPL", time.Now(), patterntest.CupAndHandle(134))
	ctx := context.Background()

	assert.Contains(t, f.sched.HandleCommand(ctx, "/detect Apple"), "Cup and handle")
	assert.Contains(t, f.sched.HandleCommand(ctx, "/detect Microsoft"), "Not enough data for Microsoft")
	assert.Contains(t, f.sched.HandleCommand(ctx, "/detect Enron"), "Unknown company")
	assert.Contains(t, f.sched.HandleCommand(ctx, "/detect"), "Usage")
	assert.Contains(t, f.sched.HandleCommand(ctx, "/symbols"), "MSFT: Microsoft")
	assert.Contains(t, f.sched.HandleCommand(ctx, "hello"), "/detect")
	assert.Contains(t, f.sched.HandleCommand(ctx, "  "), "/detect")
}

func TestRegisterAll(t *testing.T) {
	f := newFixture(t, marketOpen)
	require.NoError(t, f.sched.RegisterAll(Jobs{FetchCron: "0 */5 9-16 * * 1-5", TrimCron: "0 30 17 * * *"}))
	assert.Len(t, f.sched.cron.Entries(), 2)

	assert.Error(t, f.sched.RegisterAll(Jobs{ScanCron: "not a cron"}))
}

func TestScanNow_StatePersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "alerts.json")

	f := newFixture(t, marketOpen)
	require.NoError(t, f.sched.UseStateFile(path))
	seed(t, f.store, "AAPL", time.Now(), patterntest.CupAndHandle(134))
	assert.Equal(t, []string{"AAPL"}, f.sched.ScanNow(context.Background()))

	state, err := LoadState(path)
	require.NoError(t, err)
	assert.True(t, state.Detected["AAPL"])

	// A fresh process with the same state file stays quiet.
	g := newFixture(t, marketOpen)
	require.NoError(t, g.sched.UseStateFile(path))
	seed(t, g.store, "AAPL", time.Now(), patterntest.CupAndHandle(134))
	assert.Empty(t, g.sched.ScanNow(context.Background()))
	assert.Empty(t, g.sender.sent)
}

func TestLoadState_Missing(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, state.Detected)
}
