package config

import (
	"testing"

	"CupSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolBook_Lookups(t *testing.T) {
	b, err := NewSymbolBook(DefaultSymbols)
	require.NoError(t, err)

	ticker, ok := b.Ticker("  nvidia ")
	assert.True(t, ok)
	assert.Equal(t, "NVDA", ticker)

	company, ok := b.Company("msft")
	assert.True(t, ok)
	assert.Equal(t, "Microsoft", company)

	_, ok = b.Ticker("Enron")
	assert.False(t, ok)

	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA"}, b.Tickers())
	assert.Equal(t, "Apple", b.Companies()[0])
	assert.Len(t, b.Symbols(), 7)
}

func TestSymbolBook_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		symbols []model.Symbol
	}{
		{"empty ticker", []model.Symbol{{Ticker: " ", Company: "Apple"}}},
		{"empty company", []model.Symbol{{Ticker: "AAPL"}}},
		{"duplicate ticker", []model.Symbol{{Ticker: "AAPL", Company: "Apple"}, {Ticker: "aapl", Company: "Other"}}},
		{"duplicate company", []model.Symbol{{Ticker: "AAPL", Company: "Apple"}, {Ticker: "APLE", Company: "APPLE"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSymbolBook(tt.symbols)
			assert.Error(t, err)
		})
	}
}

func TestSymbolBook_SymbolsIsACopy(t *testing.T) {
	b, err := NewSymbolBook([]model.Symbol{{Ticker: "AAPL", Company: "Apple"}})
	require.NoError(t, err)
	s := b.Symbols()
	s[0].Ticker = "XXXX"
	assert.Equal(t, []string{"AAPL"}, b.Tickers())
}
