package simulation_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigsim/internal/significance"
	"sigsim/internal/simulation"
)

func TestHistogram(t *testing.T) {
	h := simulation.NewHistogram([]float64{0, 0.05, 0.5, 0.999, 1, -0.1, 1.2}, 10)

	assert.Equal(t, 10, h.Bins())
	assert.Equal(t, []int{2, 0, 0, 0, 0, 1, 0, 0, 0, 2}, h.Counts)
	assert.InDelta(t, 0.7, h.Expected, 1e-12)

	lower, upper := h.Edges(9)
	assert.InDelta(t, 0.9, lower, 1e-12)
	assert.Equal(t, 1.0, upper)
	assert.Equal(t, 2, h.Below(0.1))
	assert.True(t, h.BinBelow(0, 0.1))
	assert.False(t, h.BinBelow(1, 0.1))

	def := simulation.NewHistogram(nil, 0)
	assert.Equal(t, simulation.DefaultHistogramBins, def.Bins())
}

func TestSummarize(t *testing.T) {
	e := newEngine(t, setup{
		x:          normal(t, 30, 0, 1),
		y:          normal(t, 30, 0, 1),
		iterations: 2000,
		strategy:   simulation.RetryOnce,
		seed:       21,
	})
	run(t, e)

	s, err := e.Summarize()
	require.NoError(t, err)

	assert.Equal(t, e.RunID(), s.RunID)
	assert.Equal(t, "another_test", s.Strategy)
	assert.Equal(t, 2000, s.Iterations)
	assert.Equal(t, 0.05, s.Alpha)
	assert.InDelta(t, float64(s.Rejections)/2000, s.RejectionRate, 1e-12)

	retried := 0
	for _, a := range e.Attempts() {
		if a == 2 {
			retried++
		}
	}
	assert.Equal(t, retried, s.RetriedTrials)
	assert.Greater(t, s.RetriedTrials, 1500)

	total := 0
	for _, c := range s.Histogram.Counts {
		total += c
	}
	assert.Equal(t, 2000, total)
	assert.InDelta(t, 20.0, s.Histogram.Expected, 1e-12)

	p := s.PValues
	assert.True(t, p.P5 <= p.P25 && p.P25 <= p.P50 && p.P50 <= p.P75 && p.P75 <= p.P95)
	assert.Greater(t, s.MeanDoF, 50.0)
	assert.LessOrEqual(t, s.MeanDoF, 58.0)
	require.NotNil(t, s.Power)

	_, err = json.Marshal(s)
	require.NoError(t, err)
}

func TestSummarizeRankTestHasNoPower(t *testing.T) {
	e := newEngine(t, setup{
		family: "wilcoxon_test", method: "normal",
		x:          normal(t, 10, 0, 1),
		y:          normal(t, 10, 1, 1),
		iterations: 200,
		seed:       22,
	})
	run(t, e)

	s, err := e.Summarize()
	require.NoError(t, err)
	assert.Nil(t, s.Power)
	assert.Zero(t, s.MeanDoF)

	_, err = e.TheoreticalPower()
	assert.ErrorIs(t, err, simulation.ErrNoSamplingDistribution)
}

func TestTheoreticalPowerTracksEmpiricalPower(t *testing.T) {
	e := newEngine(t, setup{
		x:          normal(t, 50, 0, 1),
		y:          normal(t, 50, 0.5, 1),
		iterations: 4000,
		seed:       23,
	})
	run(t, e)

	m, err := e.TheoreticalPower()
	require.NoError(t, err)
	assert.Less(t, m.Noncentrality, 0.0, "X below Y gives a negative statistic")
	assert.Greater(t, m.DoF, 90.0)
	assert.LessOrEqual(t, m.DoF, 98.0)
	assert.InDelta(t, e.RejectionRate(), m.Power, 0.05)
	assert.InDelta(t, -m.Region.Upper, m.Region.Lower, 1e-9)
}

func TestTheoreticalPowerUnderNullIsAlpha(t *testing.T) {
	e := newEngine(t, setup{
		x:          normal(t, 40, 0, 1),
		y:          normal(t, 40, 0, 1),
		iterations: 4000,
		alt:        significance.Greater,
		seed:       24,
	})
	run(t, e)

	m, err := e.TheoreticalPower()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, m.Power, 0.01)
	assert.True(t, math.IsInf(m.Region.Lower, -1))
	assert.Greater(t, m.Region.Upper, 0.0)
}

func TestPowerCurves(t *testing.T) {
	m := &simulation.PowerModel{DoF: 20, Noncentrality: 2.5}
	m.Region = significance.RejectionRegion(m.Null(), 0.05, significance.TwoSided)

	c := m.Curves(150)
	require.Len(t, c.Null.X, 150)
	require.Len(t, c.Alternative.Y, 150)
	assert.Equal(t, c.Null.X, c.Alternative.X)
	assert.Less(t, c.Null.X[0], m.Null().Quantile(0.0011))
	assert.Greater(t, c.Null.X[149], m.Alternative().Quantile(0.9989))
	for i := range c.Null.X {
		assert.GreaterOrEqual(t, c.Null.Y[i], 0.0)
		assert.GreaterOrEqual(t, c.Alternative.Y[i], 0.0)
	}

	assert.Len(t, m.Curves(0).Null.X, 100)
}

func TestDensities(t *testing.T) {
	two := newEngine(t, setup{
		x:          normal(t, 10, 0, 1),
		y:          normal(t, 10, 1.5, 2),
		iterations: 1,
		seed:       25,
	})
	plot := two.Densities(64)
	require.Len(t, plot.Curves, 2)
	assert.Equal(t, "X: Norm(0, 1)", plot.Curves[0].Label)
	assert.Equal(t, "Y: Norm(1.5, 2)", plot.Curves[1].Label)
	assert.Len(t, plot.Curves[1].X, 64)
	assert.Nil(t, plot.Baseline)
	assert.Empty(t, plot.BaselineLabel())

	one := newEngine(t, setup{
		family: "t_test", method: "one-sample", mu: 0.25,
		x:          normal(t, 10, 0, 1),
		iterations: 1,
		seed:       26,
	})
	plot = one.Densities(0)
	require.Len(t, plot.Curves, 1)
	require.NotNil(t, plot.Baseline)
	assert.Equal(t, 0.25, *plot.Baseline)
	assert.Equal(t, "baseline: 0.25", plot.BaselineLabel())
}
