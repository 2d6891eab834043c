package pattern

import (
	"errors"
	"time"
)

// ErrInvalidInput is returned when a series cannot be scanned at all.
var ErrInvalidInput = errors.New("invalid input")

// Sample is one observation of the raw series.
type Sample struct {
	Time  time.Time
	Price float64
}

// Section is an inclusive index range with the index of its interior minimum.
type Section struct {
	Start  int
	End    int
	Trough int
}

// Points names the structural timestamps of a pattern. Any of them may be nil.
type Points struct {
	LeftRim  *time.Time `json:"left_rim"`
	LeftMin  *time.Time `json:"left_min"`
	RightRim *time.Time `json:"right_rim"`
	RightMin *time.Time `json:"right_min"`
	Current  *time.Time `json:"current"`
}

// Diagnostics describes how much of the search space was visited and why candidates were dropped.
// It never influences the verdict.
type Diagnostics struct {
	Window           int
	Tolerance        float64
	Volatility       float64
	RightRimVisits   int
	RightRimAccepted int
	LeftRimVisits    int
	Rejections       map[Check]int
}

func (d *Diagnostics) reject(c Check) {
	if d.Rejections == nil {
		d.Rejections = make(map[Check]int)
	}
	d.Rejections[c]++
}

// Result is the outcome of one Detect call.
type Result struct {
	Detected bool
	Points   Points

	// Index metadata, only meaningful when Detected is true.
	Cup    Section
	Handle Section

	Smoothed    []float64
	Diagnostics Diagnostics
}

func timePtr(t time.Time) *time.Time {
	return &t
}
