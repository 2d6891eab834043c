package pattern

// Check names one geometric constraint. Checks are reported on rejection only.
type Check string

const (
	// Cup checks, in evaluation order.
	CheckCupSpan          Check = "cup_span"
	CheckCupPeakSpike     Check = "cup_peak_spike"
	CheckCupDepthFloor    Check = "cup_depth_floor"
	CheckCupWidth         Check = "cup_width"
	CheckCupToHandleWidth Check = "cup_to_handle_width"
	CheckCupDepthBounds   Check = "cup_depth_bounds"
	CheckHandleToCupDepth Check = "handle_to_cup_depth"
	CheckTroughPosition   Check = "cup_trough_position"
	CheckAverageCupDepth  Check = "average_cup_depth"

	// Handle recovery checks, in evaluation order.
	CheckHandleSpan       Check = "handle_span"
	CheckBreakout         Check = "breakout_tolerance"
	CheckExtension        Check = "breakout_extension"
	CheckHandlePeakSpike  Check = "handle_peak_spike"
	CheckHandleDepthFloor Check = "handle_depth_floor"
	CheckHandleWidth      Check = "handle_width"
	CheckHandleRecovery   Check = "handle_recovery"

	checkNone Check = ""
)

// Validate evaluates the cup and handle constraints for a (left, right) rim pair
// over a smoothed series. On success it returns the cup and handle sections;
// on failure it returns the first check that did not hold.
func Validate(s []float64, left, right int, cfg Config) (cup, handle Section, failed Check) {
	n := len(s)
	last := n - 1
	if left < 0 || right-left < 2 || right > last {
		return Section{}, Section{}, CheckCupSpan
	}
	if last-right < 2 {
		return Section{}, Section{}, CheckHandleSpan
	}

	ceiling := min(s[left], s[right])
	troughIdx := argMin(s, left+1, right-1)
	trough := s[troughIdx]

	// 1. A strong rally inside the cup breaks the U-shape.
	if maxOf(s, left+1, right-1) > ceiling*(1+cfg.MaxCupPeakAboveRim) {
		return Section{}, Section{}, CheckCupPeakSpike
	}

	// 2.
	depth := (ceiling - trough) / ceiling
	if depth < cfg.CupDepthRatio.Min {
		return Section{}, Section{}, CheckCupDepthFloor
	}

	// 3.
	cupWidth := right - left
	if !cfg.CupWidthRatio.Contains(float64(cupWidth) / float64(n)) {
		return Section{}, Section{}, CheckCupWidth
	}

	// 4.
	handleWidth := last - right
	if !cfg.CupToHandleWidth.Contains(float64(cupWidth) / float64(handleWidth)) {
		return Section{}, Section{}, CheckCupToHandleWidth
	}

	// 5.
	if !cfg.CupDepthRatio.Contains(depth) {
		return Section{}, Section{}, CheckCupDepthBounds
	}

	// 6. The handle should retrace only a minor share of the cup.
	handleTroughIdx := argMin(s, right+1, last-1)
	cupDepth := ceiling - trough
	if !cfg.HandleToCupDepth.Contains((s[right] - s[handleTroughIdx]) / cupDepth) {
		return Section{}, Section{}, CheckHandleToCupDepth
	}

	// 7.
	if !cfg.CupTroughPosition.Contains(float64(troughIdx-left) / float64(cupWidth)) {
		return Section{}, Section{}, CheckTroughPosition
	}

	// 8. One sharp dip on an otherwise flat cup is not enough.
	sum := 0.0
	for i := left + 1; i < right; i++ {
		sum += (ceiling - s[i]) / ceiling
	}
	if sum/float64(right-left-1) <= cfg.MinAverageCupDepth {
		return Section{}, Section{}, CheckAverageCupDepth
	}

	cup = Section{Start: left, End: right, Trough: troughIdx}
	handle = Section{Start: right, End: last, Trough: handleTroughIdx}
	return cup, handle, checkNone
}

// CheckHandle runs the handle recovery checks for a right-rim candidate, using the
// last value of the series as the recovery reference.
func CheckHandle(s []float64, right int, cfg Config) Check {
	n := len(s)
	last := n - 1
	if right < 0 || last-right < 2 {
		return CheckHandleSpan
	}

	ceiling := s[right]
	current := s[last]

	if current < ceiling*(1-cfg.BreakoutTolerance) {
		return CheckBreakout
	}
	if current > ceiling*(1+cfg.MaxBreakoutExtension) {
		return CheckExtension
	}
	if maxOf(s, right+1, last-1) > ceiling*(1+cfg.MaxHandlePeakAboveRim) {
		return CheckHandlePeakSpike
	}

	trough := s[argMin(s, right+1, last-1)]
	if (ceiling-trough)/ceiling < cfg.MinHandleDepth {
		return CheckHandleDepthFloor
	}
	if !cfg.HandleWidthRatio.Contains(float64(last-right) / float64(n)) {
		return CheckHandleWidth
	}
	if ceiling <= trough || (current-trough)/(ceiling-trough) < cfg.MinHandleRecoveryRatio {
		return CheckHandleRecovery
	}
	return checkNone
}

// argMin returns the first index of the minimum in s[lo..hi].
func argMin(s []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if s[i] < s[best] {
			best = i
		}
	}
	return best
}

func maxOf(s []float64, lo, hi int) float64 {
	m := s[lo]
	for i := lo + 1; i <= hi; i++ {
		if s[i] > m {
			m = s[i]
		}
	}
	return m
}
