// Package chart renders price series with the detected pattern overlaid.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"time"

	"CupSentinel/internal/pattern"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width     = 12 * vg.Inch
	height    = 6 * vg.Inch
	tickCount = 10
)

var (
	rawColor      = color.RGBA{R: 31, G: 119, B: 180, A: 150}
	smoothedColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	detectedColor = color.RGBA{G: 128, A: 255}
	missingColor  = color.RGBA{R: 200, A: 255}
)

// Render draws the raw series (dashed), the smoothed series and, when at least
// two distinct pattern points map onto the series, a polyline through them.
// Samples are spaced evenly along x so overnight gaps do not stretch the plot.
func Render(company string, samples []pattern.Sample, res *pattern.Result) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("chart: no samples")
	}
	if res == nil || len(res.Smoothed) != len(samples) {
		return nil, errors.New("chart: result does not match samples")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Pattern Detected: %t", company, res.Detected)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Price"
	p.X.Tick.Marker = timeTicks(samples)
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, len(samples))
	smooth := make(plotter.XYs, len(samples))
	for i, s := range samples {
		raw[i] = plotter.XY{X: float64(i), Y: s.Price}
		smooth[i] = plotter.XY{X: float64(i), Y: res.Smoothed[i]}
	}

	rawLine, err := plotter.NewLine(raw)
	if err != nil {
		return nil, fmt.Errorf("chart: raw line: %w", err)
	}
	rawLine.Color = rawColor
	rawLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	smoothLine, err := plotter.NewLine(smooth)
	if err != nil {
		return nil, fmt.Errorf("chart: smoothed line: %w", err)
	}
	smoothLine.Color = smoothedColor
	smoothLine.Width = vg.Points(1.5)

	p.Add(rawLine, smoothLine)
	p.Legend.Add(company+" Original Price", rawLine)
	p.Legend.Add(company+" Smoothed", smoothLine)
	p.Legend.Top = true

	if idx := OverlayIndices(samples, res.Points); len(idx) >= 2 {
		xys := make(plotter.XYs, len(idx))
		for i, j := range idx {
			xys[i] = plotter.XY{X: float64(j), Y: res.Smoothed[j]}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: overlay: %w", err)
		}
		c, label := missingColor, "No Pattern"
		if res.Detected {
			c, label = detectedColor, "Detected Pattern"
		}
		line.Color, line.Width = c, vg.Points(2)
		points.Color = c
		p.Add(line, points)
		p.Legend.Add(label, line, points)
	}

	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// OverlayIndices maps the pattern points, in structural order, onto sample
// indices. Nil points and indices already used are skipped.
func OverlayIndices(samples []pattern.Sample, pts pattern.Points) []int {
	times := make([]time.Time, len(samples))
	for i, s := range samples {
		times[i] = s.Time
	}
	seen := make(map[int]bool, 5)
	var out []int
	for _, t := range []*time.Time{pts.LeftRim, pts.LeftMin, pts.RightRim, pts.RightMin, pts.Current} {
		if t == nil {
			continue
		}
		i := NearestIndex(times, *t)
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out
}

// NearestIndex returns the index of the timestamp closest to t, the earliest
// on ties, or -1 for an empty slice.
func NearestIndex(times []time.Time, t time.Time) int {
	best := -1
	var bestDist time.Duration
	for i, ti := range times {
		d := ti.Sub(t)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// timeTicks labels roughly tickCount evenly spaced samples with their timestamps.
func timeTicks(samples []pattern.Sample) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		step := max1(len(samples) / tickCount)
		var ticks []plot.Tick
		for i := 0; i < len(samples); i += step {
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: samples[i].Time.Format("01-02 15:04")})
		}
		return ticks
	})
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
