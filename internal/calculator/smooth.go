package calculator

import (
	"errors"
	"math"
	"sort"
)

// Smooth applies a centered rolling median of the given width, then a centered
// rolling mean of the same width over the median output. Near the edges the
// window shrinks to the samples that exist, so every position gets a value.
func Smooth(values []float64, window int) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.New("no values to smooth")
	}
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("values must be finite")
		}
	}
	return RollingMean(RollingMedian(values, window), window), nil
}

// RollingMedian returns the centered median over a shrinking-at-the-edges window.
func RollingMedian(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	buf := make([]float64, 0, window)
	for i := range values {
		lo, hi := centeredBounds(i, len(values), window)
		buf = append(buf[:0], values[lo:hi+1]...)
		sort.Float64s(buf)
		m := len(buf) / 2
		if len(buf)%2 == 1 {
			out[i] = buf[m]
		} else {
			out[i] = (buf[m-1] + buf[m]) / 2
		}
	}
	return out
}

// RollingMean returns the centered mean over a shrinking-at-the-edges window.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo, hi := centeredBounds(i, len(values), window)
		sum := 0.0
		for _, v := range values[lo : hi+1] {
			sum += v
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// centeredBounds returns the inclusive window around i. Even widths lean left.
func centeredBounds(i, n, window int) (lo, hi int) {
	lo = i - window/2
	hi = i + (window-1)/2
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
