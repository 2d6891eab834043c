package pattern

import (
	"fmt"
	"math"

	"CupSentinel/internal/calculator"
)

// Detect searches a time-ordered series for a cup and handle. Right-rim candidates
// are tried newest first; for each, left-rim candidates are tried newest first and
// the first pair accepted by Validate is returned. A negative verdict is not an error.
func Detect(series []Sample, cfg Config) (*Result, error) {
	prices, err := checkSeries(series, cfg.MinSamples)
	if err != nil {
		return nil, err
	}

	window, tolerance, vol := SelectParams(prices, cfg)
	smoothed, err := calculator.Smooth(prices, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res := &Result{
		Smoothed: smoothed,
		Diagnostics: Diagnostics{
			Window:     window,
			Tolerance:  tolerance,
			Volatility: vol,
		},
	}
	res.Points.Current = timePtr(series[len(series)-1].Time)

	sc := newScanner(smoothed, cfg, tolerance, &res.Diagnostics)
	start := len(smoothed) - 2
	for attempt := 0; cfg.MaxRightRetries == 0 || attempt < cfg.MaxRightRetries; attempt++ {
		right := sc.nextRightRim(start)
		if right < 0 {
			break
		}
		left, cup, handle, ok := sc.findLeftRim(right)
		if ok {
			res.Detected = true
			res.Cup = cup
			res.Handle = handle
			res.Points.LeftRim = timePtr(series[left].Time)
			res.Points.LeftMin = timePtr(series[cup.Trough].Time)
			res.Points.RightRim = timePtr(series[right].Time)
			res.Points.RightMin = timePtr(series[handle.Trough].Time)
			return res, nil
		}
		// The bound strictly decreases, so the loop ends within len(series) steps.
		start = right - 1
	}
	return res, nil
}

// checkSeries rejects inputs the scan cannot work with and extracts the prices.
func checkSeries(series []Sample, minSamples int) ([]float64, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInvalidInput)
	}
	if len(series) < minSamples {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrInvalidInput, len(series), minSamples)
	}
	prices := make([]float64, len(series))
	for i, p := range series {
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, fmt.Errorf("%w: price at %d is %v", ErrInvalidInput, i, p.Price)
		}
		if i > 0 && !p.Time.After(series[i-1].Time) {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at %d", ErrInvalidInput, i)
		}
		prices[i] = p.Price
	}
	return prices, nil
}
