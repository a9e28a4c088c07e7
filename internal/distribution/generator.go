// Package distribution draws synthetic samples and density curves from a fixed set of
// continuous probability distributions.
package distribution

import (
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"sigsim/internal/simerr"
)

const (
	// DefaultSampleSize is used when no sample size is configured.
	DefaultSampleSize = 50
	// DefaultDensityPoints is the number of points returned by DensityPoints(0).
	DefaultDensityPoints = 100

	defaultPlotProb   = 0.999
	heavyTailPlotProb = 0.95
)

// Points is a density curve ready for plotting.
type Points struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// continuous is the subset of the distuv API the generator relies on.
type continuous interface {
	Rand() float64
	Prob(x float64) float64
	Quantile(p float64) float64
}

// Generator produces samples of a configured size from one distribution.
// Its parameters are immutable; only the sample size may change after construction.
type Generator struct {
	kind       Kind
	first      float64 // mu, alpha or a
	second     float64 // sigma, beta or b
	sampleSize int
	plotProb   float64
}

// NewNormal returns a Norm(mu, sigma) generator.
func NewNormal(sampleSize int, mu, sigma float64) (*Generator, error) {
	if err := checkFinite("mu", mu); err != nil {
		return nil, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return nil, err
	}
	return newGenerator(Normal, sampleSize, mu, sigma, defaultPlotProb)
}

// NewLogNormal returns a generator whose logarithm is Norm(mu, sigma).
func NewLogNormal(sampleSize int, mu, sigma float64) (*Generator, error) {
	if err := checkFinite("mu", mu); err != nil {
		return nil, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return nil, err
	}
	return newGenerator(LogNormal, sampleSize, mu, sigma, heavyTailPlotProb)
}

// NewGamma returns a gamma generator with shape alpha and scale beta.
func NewGamma(sampleSize int, alpha, beta float64) (*Generator, error) {
	if err := checkPositive("alpha", alpha); err != nil {
		return nil, err
	}
	if err := checkPositive("beta", beta); err != nil {
		return nil, err
	}
	return newGenerator(Gamma, sampleSize, alpha, beta, defaultPlotProb)
}

// NewUniform returns a generator on the interval [a, b].
func NewUniform(sampleSize int, a, b float64) (*Generator, error) {
	if err := checkFinite("a", a); err != nil {
		return nil, err
	}
	if err := checkFinite("b", b); err != nil {
		return nil, err
	}
	if b <= a {
		return nil, simerr.Config("b", "must be greater than a (a=%g, b=%g)", a, b)
	}
	return newGenerator(Uniform, sampleSize, a, b, defaultPlotProb)
}

func newGenerator(kind Kind, sampleSize int, first, second, plotProb float64) (*Generator, error) {
	if sampleSize < 1 {
		return nil, simerr.Config("sample_size", "must be >= 1, got %d", sampleSize)
	}
	return &Generator{
		kind:       kind,
		first:      first,
		second:     second,
		sampleSize: sampleSize,
		plotProb:   plotProb,
	}, nil
}

// Kind returns the distribution kind.
func (g *Generator) Kind() Kind { return g.kind }

// SampleSize returns the number of values drawn by CreateSample.
func (g *Generator) SampleSize() int { return g.sampleSize }

// SetSampleSize changes the number of values drawn by CreateSample.
func (g *Generator) SetSampleSize(n int) error {
	if n < 1 {
		return simerr.Config("sample_size", "must be >= 1, got %d", n)
	}
	g.sampleSize = n
	return nil
}

// Params returns the named parameters of the distribution.
func (g *Generator) Params() map[string]float64 {
	names := g.kind.paramNames()
	return map[string]float64{names[0]: g.first, names[1]: g.second}
}

// PlotProb returns the probability mass covered by PlotRange for unbounded kinds.
func (g *Generator) PlotProb() float64 { return g.plotProb }

// Name returns a display name such as "Norm(0, 1)".
func (g *Generator) Name() string {
	return g.kind.label() + "(" + formatNum(g.first) + ", " + formatNum(g.second) + ")"
}

// Clone returns an independent copy, including the current sample size.
func (g *Generator) Clone() *Generator {
	c := *g
	return &c
}

// dist builds a fresh distuv value from the immutable parameters. A nil src
// falls back to the global math/rand/v2 source.
func (g *Generator) dist(src rand.Source) continuous {
	switch g.kind {
	case Normal:
		return distuv.Normal{Mu: g.first, Sigma: g.second, Src: src}
	case LogNormal:
		return distuv.LogNormal{Mu: g.first, Sigma: g.second, Src: src}
	case Gamma:
		// distuv.Gamma is parameterised by rate.
		return distuv.Gamma{Alpha: g.first, Beta: 1 / g.second, Src: src}
	case Uniform:
		return distuv.Uniform{Min: g.first, Max: g.second, Src: src}
	default:
		panic("distribution: unknown kind " + strconv.Itoa(int(g.kind)))
	}
}

// CreateSample draws SampleSize independent values using src.
func (g *Generator) CreateSample(src rand.Source) []float64 {
	d := g.dist(src)
	out := make([]float64, g.sampleSize)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

// CreateBatch draws batch independent samples of SampleSize values each.
func (g *Generator) CreateBatch(src rand.Source, batch int) ([][]float64, error) {
	if batch < 1 {
		return nil, simerr.Config("batch", "must be >= 1, got %d", batch)
	}
	d := g.dist(src)
	out := make([][]float64, batch)
	for b := range out {
		row := make([]float64, g.sampleSize)
		for i := range row {
			row[i] = d.Rand()
		}
		out[b] = row
	}
	return out, nil
}

// PlotRange returns the x-axis range used by DensityPoints.
func (g *Generator) PlotRange() (low, high float64) {
	d := g.dist(nil)
	switch g.kind {
	case Normal:
		tail := (1 - g.plotProb) / 2
		return d.Quantile(tail), d.Quantile(1 - tail)
	case LogNormal, Gamma:
		return 0, d.Quantile(g.plotProb)
	case Uniform:
		return g.first, g.second
	}
	return 0, 0
}

// Density evaluates the probability density at x. Points outside the support yield 0.
func (g *Generator) Density(x float64) float64 {
	if (g.kind == LogNormal || g.kind == Gamma) && x <= 0 {
		return 0
	}
	y := g.dist(nil).Prob(x)
	if math.IsNaN(y) {
		return 0
	}
	return y
}

// DensityPoints returns n evenly spaced points over PlotRange and their densities.
// A non-positive n uses DefaultDensityPoints.
func (g *Generator) DensityPoints(n int) Points {
	if n <= 0 {
		n = DefaultDensityPoints
	}
	low, high := g.PlotRange()
	xs := Linspace(low, high, n)
	ys := make([]float64, n)
	for i, x := range xs {
		ys[i] = g.Density(x)
	}
	return Points{X: xs, Y: ys}
}

// Linspace returns n evenly spaced values from low to high inclusive.
func Linspace(low, high float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = low
		return out
	}
	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + step*float64(i)
	}
	out[n-1] = high
	return out
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return simerr.Config(field, "must be finite, got %g", v)
	}
	return nil
}

func checkPositive(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return simerr.Config(field, "must be > 0, got %g", v)
	}
	return nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
