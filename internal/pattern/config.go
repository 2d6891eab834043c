package pattern

import (
	"fmt"
	"math"
)

// ConfigVersion identifies the threshold set shipped by DefaultConfig.
const ConfigVersion = "2"

// Band is an inclusive [Min, Max] range.
type Band struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// VolatilityTier maps volatility below Below to a smoothing window and a rim tolerance.
type VolatilityTier struct {
	Below     float64 `yaml:"below" json:"below"`
	Window    int     `yaml:"window" json:"window"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
}

// Config is the full set of detection tunables.
type Config struct {
	Version string `yaml:"version" json:"version"`

	MinSamples      int     `yaml:"min_samples" json:"min_samples"`
	LocalMaxRadius  int     `yaml:"local_max_radius" json:"local_max_radius"`
	ScanFloorRatio  float64 `yaml:"scan_floor_ratio" json:"scan_floor_ratio"`
	MaxRightRetries int     `yaml:"max_right_retries" json:"max_right_retries"` // 0 = unbounded

	CupWidthRatio      Band    `yaml:"cup_width_ratio" json:"cup_width_ratio"`
	HandleWidthRatio   Band    `yaml:"handle_width_ratio" json:"handle_width_ratio"`
	CupToHandleWidth   Band    `yaml:"cup_to_handle_width" json:"cup_to_handle_width"`
	CupDepthRatio      Band    `yaml:"cup_depth_ratio" json:"cup_depth_ratio"`
	HandleToCupDepth   Band    `yaml:"handle_to_cup_depth" json:"handle_to_cup_depth"`
	CupTroughPosition  Band    `yaml:"cup_trough_position" json:"cup_trough_position"`
	MinAverageCupDepth float64 `yaml:"min_average_cup_depth" json:"min_average_cup_depth"`

	MaxCupPeakAboveRim     float64 `yaml:"max_cup_peak_above_rim" json:"max_cup_peak_above_rim"`
	MaxHandlePeakAboveRim  float64 `yaml:"max_handle_peak_above_rim" json:"max_handle_peak_above_rim"`
	MinHandleDepth         float64 `yaml:"min_handle_depth" json:"min_handle_depth"`
	BreakoutTolerance      float64 `yaml:"breakout_tolerance" json:"breakout_tolerance"`
	MaxBreakoutExtension   float64 `yaml:"max_breakout_extension" json:"max_breakout_extension"`
	MinHandleRecoveryRatio float64 `yaml:"min_handle_recovery_ratio" json:"min_handle_recovery_ratio"`

	DefaultVolatility float64          `yaml:"default_volatility" json:"default_volatility"`
	VolatilityWindow  int              `yaml:"volatility_window" json:"volatility_window"`
	Tiers             []VolatilityTier `yaml:"tiers" json:"tiers"`
}

// DefaultConfig returns the canonical threshold set.
func DefaultConfig() Config {
	return Config{
		Version:         ConfigVersion,
		MinSamples:      30,
		LocalMaxRadius:  2,
		ScanFloorRatio:  0.5,
		MaxRightRetries: 0,

		CupWidthRatio:      Band{Min: 0.07, Max: 0.8},
		HandleWidthRatio:   Band{Min: 0.015, Max: 0.4},
		CupToHandleWidth:   Band{Min: 1.3, Max: 4.0},
		CupDepthRatio:      Band{Min: 0.075, Max: 0.7},
		HandleToCupDepth:   Band{Min: 0.05, Max: 0.4},
		CupTroughPosition:  Band{Min: 0.2, Max: 0.8},
		MinAverageCupDepth: 0.025,

		MaxCupPeakAboveRim:     0.025,
		MaxHandlePeakAboveRim:  0.025,
		MinHandleDepth:         0.025,
		BreakoutTolerance:      0.035,
		MaxBreakoutExtension:   0.05,
		MinHandleRecoveryRatio: 0.3,

		DefaultVolatility: 0.01,
		VolatilityWindow:  5,
		Tiers: []VolatilityTier{
			{Below: 0.005, Window: 5, Tolerance: 0.03},
			{Below: 0.015, Window: 7, Tolerance: 0.05},
			{Below: math.Inf(1), Window: 10, Tolerance: 0.08},
		},
	}
}

// ConfigError reports an invalid tunable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("detection config: %s: %s", e.Field, e.Reason)
}

// Validate checks every band is ordered and every window is positive.
func (c Config) Validate() error {
	if c.Version == "" {
		return &ConfigError{Field: "version", Reason: "must be set"}
	}
	if c.MinSamples < 2*c.LocalMaxRadius+3 || c.MinSamples <= 0 {
		return &ConfigError{Field: "min_samples", Reason: fmt.Sprintf("must be at least %d", 2*c.LocalMaxRadius+3)}
	}
	if c.LocalMaxRadius <= 0 {
		return &ConfigError{Field: "local_max_radius", Reason: "must be positive"}
	}
	if c.ScanFloorRatio < 0 || c.ScanFloorRatio >= 1 {
		return &ConfigError{Field: "scan_floor_ratio", Reason: "must be in [0, 1)"}
	}
	if c.MaxRightRetries < 0 {
		return &ConfigError{Field: "max_right_retries", Reason: "must not be negative"}
	}

	bands := []struct {
		name string
		band Band
	}{
		{"cup_width_ratio", c.CupWidthRatio},
		{"handle_width_ratio", c.HandleWidthRatio},
		{"cup_to_handle_width", c.CupToHandleWidth},
		{"cup_depth_ratio", c.CupDepthRatio},
		{"handle_to_cup_depth", c.HandleToCupDepth},
		{"cup_trough_position", c.CupTroughPosition},
	}
	for _, b := range bands {
		if b.band.Min > b.band.Max {
			return &ConfigError{Field: b.name, Reason: fmt.Sprintf("min %.4f > max %.4f", b.band.Min, b.band.Max)}
		}
		if b.band.Min < 0 {
			return &ConfigError{Field: b.name, Reason: "min must not be negative"}
		}
	}

	fractions := []struct {
		name  string
		value float64
	}{
		{"min_average_cup_depth", c.MinAverageCupDepth},
		{"max_cup_peak_above_rim", c.MaxCupPeakAboveRim},
		{"max_handle_peak_above_rim", c.MaxHandlePeakAboveRim},
		{"min_handle_depth", c.MinHandleDepth},
		{"breakout_tolerance", c.BreakoutTolerance},
		{"max_breakout_extension", c.MaxBreakoutExtension},
		{"min_handle_recovery_ratio", c.MinHandleRecoveryRatio},
		{"default_volatility", c.DefaultVolatility},
	}
	for _, f := range fractions {
		if f.value < 0 || math.IsNaN(f.value) {
			return &ConfigError{Field: f.name, Reason: "must be a non-negative number"}
		}
	}

	if c.VolatilityWindow < 2 {
		return &ConfigError{Field: "volatility_window", Reason: "must be at least 2"}
	}
	if len(c.Tiers) == 0 {
		return &ConfigError{Field: "tiers", Reason: "at least one tier is required"}
	}
	prev := math.Inf(-1)
	for i, t := range c.Tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if t.Window <= 0 {
			return &ConfigError{Field: field, Reason: "window must be positive"}
		}
		if t.Tolerance < 0 {
			return &ConfigError{Field: field, Reason: "tolerance must not be negative"}
		}
		if t.Below <= prev {
			return &ConfigError{Field: field, Reason: "thresholds must be strictly increasing"}
		}
		prev = t.Below
	}
	if !math.IsInf(prev, 1) {
		return &ConfigError{Field: "tiers", Reason: "last tier must be unbounded (below: .inf)"}
	}
	return nil
}
