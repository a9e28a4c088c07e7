package simulation

import (
	"math/rand/v2"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
)

// runner executes trials against one set of generators and one random stream.
// Generators are mutated only by the grow strategy and are always restored
// before trial returns.
type runner struct {
	test      *significance.Test
	x, y      *distribution.Generator
	src       rand.Source
	strategy  Strategy
	growRatio float64
}

func (e *Engine) newRunner(x, y *distribution.Generator, src rand.Source) *runner {
	return &runner{
		test:      e.test,
		x:         x,
		y:         y,
		src:       src,
		strategy:  e.strategy,
		growRatio: e.growRatio,
	}
}

// attempt draws fresh samples and runs the test once.
func (r *runner) attempt() (Trial, error) {
	x := r.x.CreateSample(r.src)
	var y []float64
	if r.y != nil {
		y = r.y.CreateSample(r.src)
	}

	res, err := r.test.Run(x, y)
	if err != nil {
		return Trial{}, err
	}
	return Trial{
		PValue:     res.PValue,
		Statistic:  res.Statistic,
		DoF:        res.DoF,
		Attempts:   1,
		SampleSize: len(x),
	}, nil
}

func (r *runner) trial() (Trial, error) {
	first, err := r.attempt()
	if err != nil || r.strategy == Basic || r.test.Significant(first.PValue) {
		return first, err
	}

	var second Trial
	switch r.strategy {
	case RetryOnce:
		second, err = r.attempt()
	case GrowSample:
		second, err = r.grownAttempt()
	}
	if err != nil {
		return Trial{}, err
	}
	second.Attempts = 2
	return second, nil
}

// grownAttempt reruns the test on enlarged samples. Sample sizes are restored
// on every exit path.
func (r *runner) grownAttempt() (Trial, error) {
	restore, err := r.grow()
	if err != nil {
		return Trial{}, err
	}
	defer restore()
	return r.attempt()
}

func (r *runner) generators() []*distribution.Generator {
	if r.y == nil {
		return []*distribution.Generator{r.x}
	}
	return []*distribution.Generator{r.x, r.y}
}

// grow scales every generator's sample size by the grow ratio, rounded down,
// and returns the function restoring the original sizes.
func (r *runner) grow() (func(), error) {
	gens := r.generators()
	sizes := make([]int, len(gens))
	for i, g := range gens {
		sizes[i] = g.SampleSize()
	}
	restore := func() {
		for i, g := range gens {
			_ = g.SetSampleSize(sizes[i])
		}
	}

	for i, g := range gens {
		if err := g.SetSampleSize(int(r.growRatio * float64(sizes[i]))); err != nil {
			restore()
			return nil, err
		}
	}
	return restore, nil
}
