package pattern

import "CupSentinel/internal/calculator"

// SelectParams picks the smoothing window and rim tolerance for a raw price sequence
// from its recent volatility.
func SelectParams(prices []float64, cfg Config) (window int, tolerance float64, volatility float64) {
	volatility = calculator.Volatility(prices, cfg.VolatilityWindow, cfg.DefaultVolatility)
	for _, t := range cfg.Tiers {
		if volatility < t.Below {
			return t.Window, t.Tolerance, volatility
		}
	}
	last := cfg.Tiers[len(cfg.Tiers)-1]
	return last.Window, last.Tolerance, volatility
}
