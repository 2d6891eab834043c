package pattern

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: a constant price never produces a cup, whatever its level or length.
func TestProperty_ConstantSeriesNeverDetected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("flat series yields no pattern", prop.ForAll(
		func(price float64, n int) bool {
			prices := make([]float64, n)
			for i := range prices {
				prices[i] = price
			}
			res, err := Detect(toSeries(prices), DefaultConfig())
			return err == nil && !res.Detected
		},
		gen.Float64Range(0.5, 5000),
		gen.IntRange(30, 300),
	))

	properties.TestingRun(t)
}

// Property: a strictly increasing series has no dip to form a cup.
func TestProperty_RisingSeriesNeverDetected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("rising series yields no pattern", prop.ForAll(
		func(steps []float64) bool {
			prices := make([]float64, len(steps))
			p := 50.0
			for i, s := range steps {
				p += s
				prices[i] = p
			}
			res, err := Detect(toSeries(prices), DefaultConfig())
			return err == nil && !res.Detected
		},
		gen.SliceOfN(150, gen.Float64Range(0.01, 3)),
	))

	properties.TestingRun(t)
}

// Property: whenever a pattern is reported, its structural points are ordered
// left rim < cup trough < right rim < handle trough, and the cup trough sits
// inside the configured position band.
func TestProperty_DetectedPairIsOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	cfg := DefaultConfig()

	properties.Property("ordering invariant", prop.ForAll(
		func(moves []float64, handleLow float64) bool {
			// Perturb the reference shape so both outcomes occur.
			base := cupAndHandle(handleLow)
			prices := make([]float64, len(base))
			for i := range base {
				prices[i] = base[i] * (1 + moves[i])
			}
			res, err := Detect(toSeries(prices), cfg)
			if err != nil {
				return false
			}
			if !res.Detected {
				return res.Points.LeftRim == nil && res.Points.RightMin == nil
			}
			c, h := res.Cup, res.Handle
			if !(c.Start < c.Trough && c.Trough < c.End && c.End == h.Start && h.Start < h.Trough && h.Trough <= h.End) {
				return false
			}
			pos := float64(c.Trough-c.Start) / float64(c.End-c.Start)
			return cfg.CupTroughPosition.Contains(pos) &&
				res.Points.LeftRim.Before(*res.Points.LeftMin) &&
				res.Points.LeftMin.Before(*res.Points.RightRim) &&
				res.Points.RightRim.Before(*res.Points.RightMin)
		},
		gen.SliceOfN(100, gen.Float64Range(-0.02, 0.02)),
		gen.Float64Range(85, 139),
	))

	properties.TestingRun(t)
}

// Property: the right-rim scan never visits more candidates than there are samples.
func TestProperty_ScanTerminates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("bounded right rim visits", prop.ForAll(
		func(moves []float64) bool {
			prices := make([]float64, len(moves))
			p := 100.0
			for i, m := range moves {
				p *= 1 + m
				prices[i] = p
			}
			res, err := Detect(toSeries(prices), DefaultConfig())
			return err == nil && res.Diagnostics.RightRimVisits <= len(prices)
		},
		gen.SliceOfN(180, gen.Float64Range(-0.03, 0.03)),
	))

	properties.TestingRun(t)
}
