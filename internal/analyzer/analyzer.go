// Package analyzer runs detection for a company over its stored price window.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CupSentinel/internal/chart"
	"CupSentinel/internal/config"
	"CupSentinel/internal/pattern"
	"CupSentinel/internal/store"

	"github.com/rs/zerolog"
)

// ErrUnknownCompany is returned when a company is not in the symbol book.
var ErrUnknownCompany = errors.New("unknown company")

// Metrics is the subset of the metrics recorder the analyzer reports to.
type Metrics interface {
	RecordDetection(ticker string, detected bool, elapsed time.Duration)
}

// Report is the outcome of one analysis.
type Report struct {
	Company  string
	Ticker   string
	Samples  []pattern.Sample
	Result   *pattern.Result
	ChartPNG []byte
}

// Analyzer resolves companies, loads their recent samples and runs pattern.Detect.
type Analyzer struct {
	book    *config.SymbolBook
	store   store.PriceStore
	cfg     pattern.Config
	window  time.Duration
	metrics Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// New creates an Analyzer reading the trailing window of samples from st.
func New(book *config.SymbolBook, st store.PriceStore, cfg pattern.Config, window time.Duration, m Metrics, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		book:    book,
		store:   st,
		cfg:     cfg,
		window:  window,
		metrics: m,
		log:     log.With().Str("component", "analyzer").Logger(),
		now:     time.Now,
	}
}

// Analyze runs detection for a company name.
func (a *Analyzer) Analyze(ctx context.Context, company string, includeChart bool) (*Report, error) {
	ticker, ok := a.book.Ticker(company)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompany, company)
	}
	name, _ := a.book.Company(ticker)
	return a.analyze(ctx, name, ticker, includeChart)
}

// AnalyzeTicker runs detection for a configured ticker.
func (a *Analyzer) AnalyzeTicker(ctx context.Context, ticker string, includeChart bool) (*Report, error) {
	name, ok := a.book.Company(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: ticker %q", ErrUnknownCompany, ticker)
	}
	t, _ := a.book.Ticker(name)
	return a.analyze(ctx, name, t, includeChart)
}

func (a *Analyzer) analyze(ctx context.Context, company, ticker string, includeChart bool) (*Report, error) {
	to := a.now().UTC()
	points, err := a.store.Range(ctx, ticker, to.Add(-a.window), to)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", ticker, err)
	}

	samples := make([]pattern.Sample, len(points))
	for i, p := range points {
		samples[i] = pattern.Sample{Time: p.Time, Price: p.Price}
	}

	start := time.Now()
	res, err := pattern.Detect(samples, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", ticker, err)
	}
	a.metrics.RecordDetection(ticker, res.Detected, time.Since(start))

	d := res.Diagnostics
	a.log.Debug().
		Str("ticker", ticker).
		Int("samples", len(samples)).
		Bool("detected", res.Detected).
		Int("window", d.Window).
		Float64("tolerance", d.Tolerance).
		Float64("volatility", d.Volatility).
		Int("right_visits", d.RightRimVisits).
		Int("right_accepted", d.RightRimAccepted).
		Int("left_visits", d.LeftRimVisits).
		Interface("rejections", d.Rejections).
		Msg("detection finished")

	report := &Report{Company: company, Ticker: ticker, Samples: samples, Result: res}
	if includeChart {
		png, err := chart.Render(company, samples, res)
		if err != nil {
			return nil, fmt.Errorf("render chart for %s: %w", ticker, err)
		}
		report.ChartPNG = png
	}
	return report, nil
}
