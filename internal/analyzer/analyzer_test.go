package analyzer

import (
	"bytes"
	"context"
	"testing"
	"time"

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

var now = time.Date(2025, 3, 12, 19, 0, 0, 0, time.UTC)

func seed(t *testing.T, st store.PriceStore, ticker string, prices []float64) {
	t.Helper()
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{
			Symbol: ticker,
			Time:   now.Add(-time.Duration(len(prices)-1-i) * 5 * time.Minute),
			Price:  p,
		}
	}
	require.NoError(t, st.Append(context.Background(), points...))
}

func newTestAnalyzer(t *testing.T) (*Analyzer, *store.MemoryStore) {
	t.Helper()
	book, err := config.NewSymbolBook(config.DefaultSymbols)
	require.NoError(t, err)
	st := store.NewMemoryStore()
	a := New(book, st, pattern.DefaultConfig(), 72*time.Hour, metrics.New(), zerolog.Nop())
	a.now = func() time.Time { return now }
	return a, st
}

func TestAnalyze_Detected(t *testing.T) {
	a, st := newTestAnalyzer(t)
	seed(t, st, "AAPL", patterntest.CupAndHandle(134))

	rep, err := a.Analyze(context.Background(), "apple", true)
	require.NoError(t, err)
	assert.Equal(t, "Apple", rep.Company)
	assert.Equal(t, "AAPL", rep.Ticker)
	assert.Len(t, rep.Samples, 100)
	require.True(t, rep.Result.Detected)
	require.NotNil(t, rep.Result.Points.Current)
	assert.True(t, rep.Result.Points.Current.Equal(now))
	assert.True(t, bytes.HasPrefix(rep.ChartPNG, []byte("\x89PNG")))
}

func TestAnalyze_NotDetectedWithoutChart(t *testing.T) {
	a, st := newTestAnalyzer(t)
	seed(t, st, "MSFT", patterntest.CupAndHandle(90))

	rep, err := a.Analyze(context.Background(), "Microsoft", false)
	require.NoError(t, err)
	assert.False(t, rep.Result.Detected)
	assert.Nil(t, rep.ChartPNG)
}

func TestAnalyze_WindowExcludesOldSamples(t *testing.T) {
	a, st := newTestAnalyzer(t)
	a.window = 2 * time.Hour // 25 samples, below MinSamples
	seed(t, st, "AAPL", patterntest.CupAndHandle(134))

	_, err := a.Analyze(context.Background(), "Apple", false)
	assert.ErrorIs(t, err, pattern.ErrInvalidInput)
}

func TestAnalyze_Errors(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	_, err := a.Analyze(context.Background(), "Enron", false)
	assert.ErrorIs(t, err, ErrUnknownCompany)

	_, err = a.Analyze(context.Background(), "Tesla", false)
	assert.ErrorIs(t, err, pattern.ErrInvalidInput, "no samples stored yet")

	_, err = a.AnalyzeTicker(context.Background(), "XXXX", false)
	assert.ErrorIs(t, err, ErrUnknownCompany)
}

func TestAnalyzeTicker(t *testing.T) {
	a, st := newTestAnalyzer(t)
	seed(t, st, "NVDA", patterntest.CupAndHandle(134))

	rep, err := a.AnalyzeTicker(context.Background(), "nvda", false)
	require.NoError(t, err)
	assert.Equal(t, "Nvidia", rep.Company)
	assert.Equal(t, "NVDA", rep.Ticker)
	assert.True(t, rep.Result.Detected)
}
