package simulation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
)

// ErrNoSamplingDistribution is returned for tests whose statistic has no
// t sampling distribution.
var ErrNoSamplingDistribution = errors.New("test has no sampling distribution for theoretical power")

// curveMass is the central probability mass each sampling density spans in Curves.
const curveMass = 0.998

// PowerModel is the theoretical power derived from the mean observed statistic
// and degrees of freedom of a completed run.
type PowerModel struct {
	DoF           float64             `json:"dof"`
	Noncentrality float64             `json:"noncentrality"`
	Region        significance.Region `json:"rejection_region"`
	Power         float64             `json:"power"`
}

// Null is the central t-distribution under the null hypothesis.
func (m *PowerModel) Null() significance.CentralT {
	return significance.CentralT{Nu: m.DoF}
}

// Alternative is the non-central t-distribution of the observed statistic.
func (m *PowerModel) Alternative() significance.NoncentralT {
	return significance.NoncentralT{Nu: m.DoF, Delta: m.Noncentrality}
}

// TheoreticalPower computes the rejection region from the central t null and
// integrates the non-central alternative outside it. It needs a completed run.
func (e *Engine) TheoreticalPower() (*PowerModel, error) {
	if !e.executed {
		return nil, ErrNotExecuted
	}
	if !e.test.HasSamplingDistribution() {
		return nil, ErrNoSamplingDistribution
	}

	m := &PowerModel{
		DoF:           stat.Mean(e.dofs, nil),
		Noncentrality: stat.Mean(e.statistics, nil),
	}
	m.Region = significance.RejectionRegion(m.Null(), e.test.Alpha(), e.test.Alternative())
	m.Power = m.Region.Mass(m.Alternative())
	return m, nil
}

// PowerCurves holds the null and alternative sampling densities on a common grid.
type PowerCurves struct {
	Null        distribution.Points `json:"null"`
	Alternative distribution.Points `json:"alternative"`
	Region      significance.Region `json:"rejection_region"`
}

// Curves evaluates both sampling densities at n points spanning the central
// 99.8% of each.
func (m *PowerModel) Curves(n int) PowerCurves {
	if n <= 0 {
		n = distribution.DefaultDensityPoints
	}
	null, alt := m.Null(), m.Alternative()

	tail := (1 - curveMass) / 2
	lo := math.Min(null.Quantile(tail), alt.Quantile(tail))
	hi := math.Max(null.Quantile(1-tail), alt.Quantile(1-tail))
	xs := distribution.Linspace(lo, hi, n)

	out := PowerCurves{
		Null:        distribution.Points{X: xs, Y: make([]float64, n)},
		Alternative: distribution.Points{X: xs, Y: make([]float64, n)},
		Region:      m.Region,
	}
	for i, x := range xs {
		out.Null.Y[i] = null.Prob(x)
		out.Alternative.Y[i] = alt.Prob(x)
	}
	return out
}
