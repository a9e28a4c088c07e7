package simulation

import (
	"fmt"

	"sigsim/internal/distribution"
)

// Curve is a labelled density curve.
type Curve struct {
	Label string `json:"label"`
	distribution.Points
}

// DensityPlot holds one curve per generator and, for the one-sample t-test,
// the baseline drawn as a vertical marker.
type DensityPlot struct {
	Curves   []Curve  `json:"curves"`
	Baseline *float64 `json:"baseline,omitempty"`
}

// Densities evaluates every generator's density at n points. It does not need
// a completed run.
func (e *Engine) Densities(n int) DensityPlot {
	plot := DensityPlot{
		Curves: []Curve{{Label: "X: " + e.x.Name(), Points: e.x.DensityPoints(n)}},
	}
	if e.y != nil {
		plot.Curves = append(plot.Curves, Curve{Label: "Y: " + e.y.Name(), Points: e.y.DensityPoints(n)})
	}
	if !e.test.TwoSample() {
		mu := e.test.PopMean()
		plot.Baseline = &mu
	}
	return plot
}

// BaselineLabel returns the legend label of the one-sample baseline.
func (p DensityPlot) BaselineLabel() string {
	if p.Baseline == nil {
		return ""
	}
	return fmt.Sprintf("baseline: %g", *p.Baseline)
}
