package pattern

import (
	"math"
	"time"

	"CupSentinel/internal/pattern/patterntest"
)

var t0 = time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)

func toSeries(prices []float64) []Sample {
	out := make([]Sample, len(prices))
	for i, p := range prices {
		out[i] = Sample{Time: t0.Add(time.Duration(i) * 5 * time.Minute), Price: p}
	}
	return out
}

func cupAndHandle(handleLow float64) []float64 {
	return patterntest.CupAndHandle(handleLow)
}

// idealCup is an already-smooth series with rims at 5 and 60 (both 100),
// a sine cup 20% deep, and a handle dipping to 96 at index 70.
func idealCup() []float64 {
	s := make([]float64, 100)
	for i := 0; i < 5; i++ {
		s[i] = 90 + 2*float64(i)
	}
	s[5] = 100
	for i := 6; i < 60; i++ {
		s[i] = 100 - 20*math.Sin(math.Pi*float64(i-5)/55)
	}
	s[60] = 100
	for i := 61; i <= 80; i++ {
		s[i] = 100 - 4*math.Sin(math.Pi*float64(i-60)/20)
	}
	for i := 81; i < 100; i++ {
		s[i] = 100
	}
	s[70] = 96
	return s
}
