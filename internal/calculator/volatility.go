package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Volatility averages the rolling sample standard deviation of period-over-period
// percentage changes. It returns fallback when there are too few prices to fill
// a single window or the result is not a number.
func Volatility(prices []float64, window int, fallback float64) float64 {
	if window < 2 || len(prices) < window+1 {
		return fallback
	}

	changes := PctChanges(prices)
	// talib's StdDev is the population form; scale it to the sample form.
	std := talib.StdDev(changes, window, math.Sqrt(float64(window)/float64(window-1)))

	sum := 0.0
	count := 0
	for _, v := range std[window-1:] {
		sum += v
		count++
	}
	if count == 0 {
		return fallback
	}
	vol := sum / float64(count)
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return fallback
	}
	return vol
}

// PctChanges returns (p[i]-p[i-1])/p[i-1] for every i >= 1.
func PctChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	return talib.Rocp(prices, 1)[1:]
}
