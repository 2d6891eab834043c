package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_CupAndHandle(t *testing.T) {
	series := toSeries(cupAndHandle(134))
	res, err := Detect(series, DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Detected)

	assert.Equal(t, 5, res.Diagnostics.Window)
	assert.InDelta(t, 65, res.Cup.End, 2, "right rim")
	assert.InDelta(t, 18, res.Cup.Start, 3, "left rim")
	assert.InDelta(t, 39, res.Cup.Trough, 2, "cup trough")
	assert.InDelta(t, 74, res.Handle.Trough, 2, "handle trough")
	assert.Equal(t, res.Cup.End, res.Handle.Start)
	assert.Equal(t, len(series)-1, res.Handle.End)

	require.NotNil(t, res.Points.LeftRim)
	require.NotNil(t, res.Points.LeftMin)
	require.NotNil(t, res.Points.RightRim)
	require.NotNil(t, res.Points.RightMin)
	require.NotNil(t, res.Points.Current)
	assert.Equal(t, series[res.Cup.Start].Time, *res.Points.LeftRim)
	assert.Equal(t, series[res.Cup.Trough].Time, *res.Points.LeftMin)
	assert.Equal(t, series[res.Cup.End].Time, *res.Points.RightRim)
	assert.Equal(t, series[res.Handle.Trough].Time, *res.Points.RightMin)
	assert.Equal(t, series[len(series)-1].Time, *res.Points.Current)
}

func TestDetect_DeepHandleRejected(t *testing.T) {
	res, err := Detect(toSeries(cupAndHandle(90)), DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Detected)
	assert.Nil(t, res.Points.LeftRim)
	assert.Nil(t, res.Points.RightRim)
	assert.NotNil(t, res.Points.Current)
	assert.NotEmpty(t, res.Diagnostics.Rejections)
}

func TestDetect_FlatAndRising(t *testing.T) {
	flat := make([]float64, 120)
	rising := make([]float64, 120)
	for i := range flat {
		flat[i] = 250
		rising[i] = 100 + 0.5*float64(i)
	}

	for name, prices := range map[string][]float64{"flat": flat, "rising": rising} {
		t.Run(name, func(t *testing.T) {
			res, err := Detect(toSeries(prices), DefaultConfig())
			require.NoError(t, err)
			assert.False(t, res.Detected)
		})
	}
}

func TestDetect_InvalidInput(t *testing.T) {
	cfg := DefaultConfig()

	short := toSeries(cupAndHandle(134)[:cfg.MinSamples-1])

	zero := toSeries(cupAndHandle(134))
	zero[40].Price = 0

	unordered := toSeries(cupAndHandle(134))
	unordered[50].Time = unordered[49].Time

	tests := map[string][]Sample{
		"empty":          nil,
		"below minimum":  short,
		"zero price":     zero,
		"repeated stamp": unordered,
	}
	for name, series := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := Detect(series, cfg)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, res)
		})
	}
}

func TestDetect_RightRimVisitsBounded(t *testing.T) {
	// Sawtooth: plenty of local maxima, none with a valid cup behind it.
	prices := make([]float64, 200)
	for i := range prices {
		prices[i] = 100 + float64(i%6)
	}
	res, err := Detect(toSeries(prices), DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Detected)
	assert.LessOrEqual(t, res.Diagnostics.RightRimVisits, len(prices))
}

func TestDetect_SingleRightRimAttempt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRightRetries = 1

	res, err := Detect(toSeries(cupAndHandle(134)), cfg)
	require.NoError(t, err)
	assert.True(t, res.Detected, "the newest right rim already completes the pattern")
	assert.Equal(t, 1, res.Diagnostics.RightRimAccepted)
}

func TestDetect_Deterministic(t *testing.T) {
	series := toSeries(cupAndHandle(134))
	a, err := Detect(series, DefaultConfig())
	require.NoError(t, err)
	b, err := Detect(series, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	series := toSeries(cupAndHandle(134))
	before := make([]Sample, len(series))
	copy(before, series)

	_, err := Detect(series, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, before, series)
}

func TestSelectParams_Tiers(t *testing.T) {
	cfg := DefaultConfig()

	calm := make([]float64, 60)
	wild := make([]float64, 60)
	for i := range calm {
		calm[i] = 100
		wild[i] = 100
		if i%2 == 1 {
			wild[i] = 110
		}
	}

	w, tol, vol := SelectParams(calm, cfg)
	assert.Equal(t, 5, w)
	assert.Equal(t, 0.03, tol)
	assert.InDelta(t, 0, vol, 1e-12)

	w, tol, _ = SelectParams(wild, cfg)
	assert.Equal(t, 10, w)
	assert.Equal(t, 0.08, tol)

	// Too short to fill one volatility window: default volatility is medium.
	w, tol, vol = SelectParams([]float64{100, 101, 102}, cfg)
	assert.Equal(t, 7, w)
	assert.Equal(t, 0.05, tol)
	assert.Equal(t, cfg.DefaultVolatility, vol)
}

func TestDetect_CurrentIsLastSample(t *testing.T) {
	series := toSeries(cupAndHandle(90))
	res, err := Detect(series, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, res.Points.Current.Equal(series[len(series)-1].Time))
	assert.WithinDuration(t, t0.Add(99*5*time.Minute), *res.Points.Current, 0)
}
