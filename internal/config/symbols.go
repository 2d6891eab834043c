package config

import (
	"fmt"
	"strings"

	"CupSentinel/internal/model"
)

// SymbolBook maps company names to tickers and back. It is immutable after construction.
type SymbolBook struct {
	symbols   []model.Symbol
	byCompany map[string]string
	byTicker  map[string]string
}

// NewSymbolBook indexes the pairs. Empty fields and duplicate tickers or
// companies (compared case-insensitively) are rejected.
func NewSymbolBook(symbols []model.Symbol) (*SymbolBook, error) {
	b := &SymbolBook{
		symbols:   make([]model.Symbol, 0, len(symbols)),
		byCompany: make(map[string]string, len(symbols)),
		byTicker:  make(map[string]string, len(symbols)),
	}
	for i, s := range symbols {
		ticker := strings.ToUpper(strings.TrimSpace(s.Ticker))
		company := strings.TrimSpace(s.Company)
		if ticker == "" || company == "" {
			return nil, fmt.Errorf("entry %d: ticker and company are required", i)
		}
		ck := strings.ToLower(company)
		if _, dup := b.byTicker[ticker]; dup {
			return nil, fmt.Errorf("duplicate ticker %q", ticker)
		}
		if _, dup := b.byCompany[ck]; dup {
			return nil, fmt.Errorf("duplicate company %q", company)
		}
		b.byTicker[ticker] = company
		b.byCompany[ck] = ticker
		b.symbols = append(b.symbols, model.Symbol{Ticker: ticker, Company: company})
	}
	return b, nil
}

// Ticker resolves a company name, ignoring case and surrounding space.
func (b *SymbolBook) Ticker(company string) (string, bool) {
	t, ok := b.byCompany[strings.ToLower(strings.TrimSpace(company))]
	return t, ok
}

// Company resolves a ticker.
func (b *SymbolBook) Company(ticker string) (string, bool) {
	c, ok := b.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return c, ok
}

// Tickers returns tickers in configuration order.
func (b *SymbolBook) Tickers() []string {
	out := make([]string, len(b.symbols))
	for i, s := range b.symbols {
		out[i] = s.Ticker
	}
	return out
}

// Companies returns company names in configuration order.
func (b *SymbolBook) Companies() []string {
	out := make([]string, len(b.symbols))
	for i, s := range b.symbols {
		out[i] = s.Company
	}
	return out
}

// Symbols returns a copy of the configured pairs.
func (b *SymbolBook) Symbols() []model.Symbol {
	return append([]model.Symbol(nil), b.symbols...)
}
