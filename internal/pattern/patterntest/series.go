// Package patterntest provides synthetic price series for detection tests.
package patterntest

// Ramp returns steps values moving from a (exclusive) to b (inclusive).
func Ramp(a, b float64, steps int) []float64 {
	out := make([]float64, steps)
	for k := 0; k < steps; k++ {
		out[k] = a + (b-a)*float64(k+1)/float64(steps)
	}
	return out
}

// CupAndHandle builds a 100 sample series: left flank to 140 at index 14,
// a cup bottoming at 112 around index 39, a right rim back at 140 around
// index 65, a handle dipping to handleLow around index 74, and a breakout
// to 141 that holds until the end. With handleLow 134 the default detection
// config accepts it; with 90 the handle is far too deep.
func CupAndHandle(handleLow float64) []float64 {
	p := make([]float64, 0, 100)
	for k := 0; k < 15; k++ {
		p = append(p, 110+30*float64(k)/14)
	}
	p = append(p, Ramp(140, 112, 25)...)
	p = append(p, Ramp(112, 140, 26)...)
	p = append(p, Ramp(140, handleLow, 9)...)
	p = append(p, Ramp(handleLow, 141, 11)...)
	for len(p) < 100 {
		p = append(p, 141)
	}
	return p
}
