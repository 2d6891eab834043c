package pattern

// IsLocalMax reports whether s[i] is the maximum of the window of the given radius around i.
func IsLocalMax(s []float64, i, radius int) bool {
	lo := max(i-radius, 0)
	hi := min(i+radius, len(s)-1)
	return s[i] == maxOf(s, lo, hi)
}

// scanner walks a smoothed series backward looking for rims.
type scanner struct {
	s         []float64
	cfg       Config
	tolerance float64
	floor     int
	diag      *Diagnostics
}

func newScanner(s []float64, cfg Config, tolerance float64, diag *Diagnostics) *scanner {
	floor := int(float64(len(s)) * cfg.ScanFloorRatio)
	return &scanner{s: s, cfg: cfg, tolerance: tolerance, floor: floor, diag: diag}
}

// nextRightRim returns the newest index at or below start that is a local maximum
// and passes the handle checks, or -1 once the scan floor is reached.
func (sc *scanner) nextRightRim(start int) int {
	for i := start; i >= sc.floor; i-- {
		sc.diag.RightRimVisits++
		if !IsLocalMax(sc.s, i, sc.cfg.LocalMaxRadius) {
			continue
		}
		if failed := CheckHandle(sc.s, i, sc.cfg); failed != checkNone {
			sc.diag.reject(failed)
			continue
		}
		sc.diag.RightRimAccepted++
		return i
	}
	return -1
}

// findLeftRim walks back from right-2 and hands every candidate within the
// tolerance band of the right rim to the validator. The first pass wins.
func (sc *scanner) findLeftRim(right int) (left int, cup, handle Section, ok bool) {
	rim := sc.s[right]
	lo := rim * (1 - sc.tolerance)
	hi := rim * (1 + sc.tolerance)
	for j := right - 2; j >= 0; j-- {
		v := sc.s[j]
		if v < lo || v > hi {
			continue
		}
		sc.diag.LeftRimVisits++
		cup, handle, failed := Validate(sc.s, j, right, sc.cfg)
		if failed != checkNone {
			sc.diag.reject(failed)
			continue
		}
		return j, cup, handle, true
	}
	return -1, Section{}, Section{}, false
}
