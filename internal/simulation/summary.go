package simulation

import (
	"errors"
	"time"

	mstats "github.com/montanaflynn/stats"
)

// ErrNotExecuted is returned by queries that need a completed run.
var ErrNotExecuted = errors.New("simulation has not been executed")

// Percentiles of the recorded p-values.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// Summary aggregates a completed run.
type Summary struct {
	RunID         string        `json:"run_id"`
	Test          string        `json:"test"`
	Strategy      string        `json:"strategy"`
	Iterations    int           `json:"iterations"`
	Workers       int           `json:"workers"`
	Alpha         float64       `json:"alpha"`
	Rejections    int           `json:"rejections"`
	RejectionRate float64       `json:"rejection_rate"`
	RetriedTrials int           `json:"retried_trials"`
	PValues       Percentiles   `json:"p_values"`
	MeanStatistic float64       `json:"mean_statistic"`
	MeanDoF       float64       `json:"mean_dof,omitempty"`
	Histogram     *Histogram    `json:"histogram"`
	Power         *PowerModel   `json:"power,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Summarize derives the run summary. Power is set only for tests with a
// sampling distribution.
func (e *Engine) Summarize() (*Summary, error) {
	if !e.executed {
		return nil, ErrNotExecuted
	}

	pcts, err := percentiles(e.pValues)
	if err != nil {
		return nil, err
	}
	meanStat, err := mstats.Mean(e.statistics)
	if err != nil {
		return nil, err
	}

	retried := 0
	for _, a := range e.attempts {
		if a > 1 {
			retried++
		}
	}

	s := &Summary{
		RunID:         e.runID,
		Test:          e.test.Describe(),
		Strategy:      e.strategy.String(),
		Iterations:    e.iterations,
		Workers:       e.workers,
		Alpha:         e.test.Alpha(),
		Rejections:    e.rejections(),
		RejectionRate: e.RejectionRate(),
		RetriedTrials: retried,
		PValues:       pcts,
		MeanStatistic: meanStat,
		Histogram:     NewHistogram(e.pValues, DefaultHistogramBins),
		Elapsed:       e.elapsed,
	}

	if e.test.HasSamplingDistribution() {
		if s.MeanDoF, err = mstats.Mean(e.dofs); err != nil {
			return nil, err
		}
		if s.Power, err = e.TheoreticalPower(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func percentiles(values []float64) (Percentiles, error) {
	var out Percentiles
	targets := []struct {
		pct float64
		dst *float64
	}{
		{5, &out.P5},
		{25, &out.P25},
		{50, &out.P50},
		{75, &out.P75},
		{95, &out.P95},
	}
	for _, t := range targets {
		v, err := mstats.PercentileNearestRank(values, t.pct)
		if err != nil {
			return Percentiles{}, err
		}
		*t.dst = v
	}
	return out, nil
}
