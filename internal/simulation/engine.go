package simulation

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
	"sigsim/internal/simerr"
)

const (
	DefaultIterations = 10000
	DefaultGrowRatio  = 1.1

	// seedStream is the PCG stream used together with an explicit seed.
	seedStream = 0x5eed5eed5eed5eed
)

// Strategy selects how a single trial is carried out.
type Strategy int

const (
	// Basic draws once and records the test result.
	Basic Strategy = iota
	// RetryOnce draws a second sample when the first test is not significant
	// and records the second result unconditionally.
	RetryOnce
	// GrowSample reruns a non-significant test on samples enlarged by the grow
	// ratio, then restores the original sample sizes.
	GrowSample
)

var strategyNames = map[Strategy]string{
	Basic:      "basic",
	RetryOnce:  "another_test",
	GrowSample: "add_sample",
}

var strategyAliases = map[string]Strategy{
	"retry-once":  RetryOnce,
	"grow-sample": GrowSample,
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// StrategyNames returns the canonical strategy names.
func StrategyNames() []string {
	return []string{Basic.String(), RetryOnce.String(), GrowSample.String()}
}

// ParseStrategy resolves a strategy name or alias. Empty means basic.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Basic, nil
	}
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	if s, ok := strategyAliases[name]; ok {
		return s, nil
	}
	return 0, simerr.Config("strategy", "must be one of [%s], got %q", strings.Join(StrategyNames(), ", "), name)
}

// Trial is the recorded outcome of one trial.
type Trial struct {
	PValue    float64 `json:"p_value"`
	Statistic float64 `json:"statistic"`
	DoF       float64 `json:"dof"`
	// Attempts is 2 when the strategy re-ran the test.
	Attempts int `json:"attempts"`
	// SampleSize is the X sample size of the recorded attempt.
	SampleSize int `json:"sample_size"`
}

// Config describes a simulation. X is required; Y is required exactly when the
// test consumes two samples.
type Config struct {
	Test       *significance.Test
	X          *distribution.Generator
	Y          *distribution.Generator
	Iterations int
	Strategy   Strategy
	// Seed makes the run reproducible. Nil seeds from ambient entropy.
	Seed      *uint64
	GrowRatio float64
	Workers   int
	// OnTrial is called after every trial, once the generators are back in
	// their pre-trial state. With more than one worker it is called
	// concurrently.
	OnTrial func(index int, trial Trial)
}

// Engine runs repeated significance tests on synthetic samples.
type Engine struct {
	test       *significance.Test
	x, y       *distribution.Generator
	iterations int
	strategy   Strategy
	growRatio  float64
	workers    int
	seeded     bool
	onTrial    func(int, Trial)

	src rand.Source

	pValues    []float64
	statistics []float64
	dofs       []float64
	attempts   []int
	sizes      []int

	executed bool
	runID    string
	elapsed  time.Duration
}

// NewEngine validates cfg and allocates zero-filled result arrays.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Test == nil {
		return nil, simerr.Config("test", "is required")
	}
	if cfg.X == nil {
		return nil, simerr.Config("generators.X", "is required")
	}
	if cfg.Test.TwoSample() && cfg.Y == nil {
		return nil, simerr.Config("generators.Y", "is required by %s", cfg.Test.Kind())
	}
	if !cfg.Test.TwoSample() && cfg.Y != nil {
		return nil, simerr.Config("generators.Y", "must be omitted for %s", cfg.Test.Kind())
	}
	if cfg.Test.Paired() && cfg.X.SampleSize() != cfg.Y.SampleSize() {
		return nil, simerr.Config("generators", "%s needs equal sample sizes, got X=%d Y=%d",
			cfg.Test.Kind(), cfg.X.SampleSize(), cfg.Y.SampleSize())
	}
	if cfg.Iterations < 1 {
		return nil, simerr.Config("iterations", "must be >= 1, got %d", cfg.Iterations)
	}
	if _, ok := strategyNames[cfg.Strategy]; !ok {
		return nil, simerr.Config("strategy", "unknown strategy %d", int(cfg.Strategy))
	}

	ratio := cfg.GrowRatio
	if ratio == 0 {
		ratio = DefaultGrowRatio
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 1 {
		return nil, simerr.Config("grow_ratio", "must be a finite number >= 1, got %g", ratio)
	}

	workers := cfg.Workers
	if workers < 0 {
		return nil, simerr.Config("workers", "must be >= 0, got %d", workers)
	}
	workers = max(1, min(workers, cfg.Iterations))

	var src rand.Source
	if cfg.Seed != nil {
		src = rand.NewPCG(*cfg.Seed, seedStream)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	e := &Engine{
		test:       cfg.Test,
		x:          cfg.X,
		y:          cfg.Y,
		iterations: cfg.Iterations,
		strategy:   cfg.Strategy,
		growRatio:  ratio,
		workers:    workers,
		seeded:     cfg.Seed != nil,
		onTrial:    cfg.OnTrial,
		src:        src,
	}
	e.Reset()
	return e, nil
}

// Execute runs every trial and overwrites the result arrays. Calling it again
// re-runs the simulation with fresh draws. A failed or cancelled run leaves
// the engine unexecuted with zeroed results.
func (e *Engine) Execute(ctx context.Context) error {
	e.Reset()
	e.runID = uuid.NewString()
	start := time.Now()

	log.Debug().
		Str("run_id", e.runID).
		Str("test", e.test.Describe()).
		Str("strategy", e.strategy.String()).
		Int("iterations", e.iterations).
		Int("workers", e.workers).
		Bool("seeded", e.seeded).
		Msg("Simulation started")

	var err error
	if e.workers > 1 {
		err = e.executeParallel(ctx)
	} else {
		err = e.executeRange(ctx, e.newRunner(e.x, e.y, e.src), 0, e.iterations)
	}
	if err != nil {
		e.Reset()
		log.Debug().Err(err).Str("run_id", e.runID).Msg("Simulation aborted")
		return err
	}

	e.executed = true
	e.elapsed = time.Since(start)

	log.Debug().
		Str("run_id", e.runID).
		Dur("elapsed", e.elapsed).
		Float64("rejection_rate", e.RejectionRate()).
		Msg("Simulation finished")
	return nil
}

func (e *Engine) executeRange(ctx context.Context, r *runner, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := r.trial()
		if err != nil {
			return simerr.Computation(err, "trial %d: %s failed", i, e.test.Kind())
		}
		e.record(i, t)
		if e.onTrial != nil {
			e.onTrial(i, t)
		}
	}
	return nil
}

func (e *Engine) record(i int, t Trial) {
	e.pValues[i] = t.PValue
	e.statistics[i] = t.Statistic
	e.dofs[i] = t.DoF
	e.attempts[i] = t.Attempts
	e.sizes[i] = t.SampleSize
}

// Reset zero-fills the result arrays and marks the engine unexecuted.
func (e *Engine) Reset() {
	e.pValues = make([]float64, e.iterations)
	e.statistics = make([]float64, e.iterations)
	e.dofs = make([]float64, e.iterations)
	e.attempts = make([]int, e.iterations)
	e.sizes = make([]int, e.iterations)
	e.executed = false
	e.elapsed = 0
}

// RejectionRate is the fraction of trials with a p-value strictly below alpha.
// It is 0 until Execute has completed.
func (e *Engine) RejectionRate() float64 {
	if !e.executed {
		return 0
	}
	return float64(e.rejections()) / float64(e.iterations)
}

func (e *Engine) rejections() int {
	n := 0
	for _, p := range e.pValues {
		if e.test.Significant(p) {
			n++
		}
	}
	return n
}

func (e *Engine) Executed() bool             { return e.executed }
func (e *Engine) Iterations() int            { return e.iterations }
func (e *Engine) Strategy() Strategy         { return e.strategy }
func (e *Engine) GrowRatio() float64         { return e.growRatio }
func (e *Engine) Workers() int               { return e.workers }
func (e *Engine) Test() *significance.Test   { return e.test }
func (e *Engine) X() *distribution.Generator { return e.x }
func (e *Engine) Y() *distribution.Generator { return e.y }
func (e *Engine) RunID() string              { return e.runID }
func (e *Engine) Elapsed() time.Duration     { return e.elapsed }
func (e *Engine) PValues() []float64         { return slices.Clone(e.pValues) }
func (e *Engine) Statistics() []float64      { return slices.Clone(e.statistics) }
func (e *Engine) DoFs() []float64            { return slices.Clone(e.dofs) }
func (e *Engine) Attempts() []int            { return slices.Clone(e.attempts) }

// Trials returns the per-trial records in index order.
func (e *Engine) Trials() []Trial {
	out := make([]Trial, e.iterations)
	for i := range out {
		out[i] = Trial{
			PValue:     e.pValues[i],
			Statistic:  e.statistics[i],
			DoF:        e.dofs[i],
			Attempts:   e.attempts[i],
			SampleSize: e.sizes[i],
		}
	}
	return out
}
