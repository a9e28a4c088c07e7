package distribution

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigsim/internal/simerr"
)

func allGenerators(t *testing.T, size int) []*Generator {
	t.Helper()
	var gens []*Generator
	for _, name := range KindNames() {
		g, err := Build(name, size, nil)
		require.NoError(t, err, name)
		gens = append(gens, g)
	}
	return gens
}

func TestCreateSample_SizeAndDeterminism(t *testing.T) {
	for _, g := range allGenerators(t, 37) {
		t.Run(g.Kind().String(), func(t *testing.T) {
			a := g.CreateSample(rand.NewPCG(7, 11))
			b := g.CreateSample(rand.NewPCG(7, 11))
			require.Len(t, a, 37)
			assert.Equal(t, a, b, "same seed must reproduce the sample")

			src := rand.NewPCG(7, 11)
			first := g.CreateSample(src)
			second := g.CreateSample(src)
			assert.NotEqual(t, first, second, "consecutive draws must be independent")
		})
	}
}

func TestCreateSample_Support(t *testing.T) {
	src := rand.NewPCG(1, 2)

	gamma, err := NewGamma(500, 2, 3)
	require.NoError(t, err)
	for _, v := range gamma.CreateSample(src) {
		assert.Greater(t, v, 0.0)
	}

	uni, err := NewUniform(500, -2, 5)
	require.NoError(t, err)
	for _, v := range uni.CreateSample(src) {
		assert.GreaterOrEqual(t, v, -2.0)
		assert.LessOrEqual(t, v, 5.0)
	}
}

func TestCreateSample_GammaScale(t *testing.T) {
	// Gamma(alpha, beta) with beta as scale has mean alpha*beta.
	g, err := NewGamma(20000, 2, 3)
	require.NoError(t, err)
	sample := g.CreateSample(rand.NewPCG(3, 4))
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	assert.InDelta(t, 6.0, sum/float64(len(sample)), 0.2)
}

func TestCreateBatch(t *testing.T) {
	g, err := NewNormal(10, 0, 1)
	require.NoError(t, err)

	batch, err := g.CreateBatch(rand.NewPCG(5, 5), 4)
	require.NoError(t, err)
	require.Len(t, batch, 4)
	for _, row := range batch {
		assert.Len(t, row, 10)
	}
	assert.NotEqual(t, batch[0], batch[1])

	_, err = g.CreateBatch(rand.NewPCG(5, 5), 0)
	assert.True(t, simerr.IsConfig(err))
}

func TestDensityPoints(t *testing.T) {
	for _, g := range allGenerators(t, 10) {
		t.Run(g.Kind().String(), func(t *testing.T) {
			pts := g.DensityPoints(250)
			require.Len(t, pts.X, 250)
			require.Len(t, pts.Y, 250)
			for i := range pts.X {
				if i > 0 {
					assert.Greater(t, pts.X[i], pts.X[i-1])
				}
				assert.GreaterOrEqual(t, pts.Y[i], 0.0)
				assert.False(t, math.IsNaN(pts.Y[i]))
			}
		})
	}
}

func TestDensityPoints_NormalPeak(t *testing.T) {
	g, err := NewNormal(50, 0, 1)
	require.NoError(t, err)

	pts := g.DensityPoints(101)
	peak := 0
	for i, y := range pts.Y {
		if y > pts.Y[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 0.0, pts.X[peak], 0.05)
	assert.Len(t, g.DensityPoints(0).X, DefaultDensityPoints)
}

func TestPlotRange(t *testing.T) {
	norm, _ := NewNormal(1, 0, 1)
	low, high := norm.PlotRange()
	assert.InDelta(t, -3.2905, low, 1e-3)
	assert.InDelta(t, 3.2905, high, 1e-3)

	logn, _ := NewLogNormal(1, 0, 1)
	low, high = logn.PlotRange()
	assert.Equal(t, 0.0, low)
	assert.InDelta(t, math.Exp(1.644854), high, 1e-3)
	assert.Equal(t, 0.95, logn.PlotProb())

	uni, _ := NewUniform(1, 2, 4)
	low, high = uni.PlotRange()
	assert.Equal(t, 2.0, low)
	assert.Equal(t, 4.0, high)

	gamma, _ := NewGamma(1, 1, 1)
	low, high = gamma.PlotRange()
	assert.Equal(t, 0.0, low)
	assert.InDelta(t, -math.Log(0.001), high, 1e-4)
}

func TestConstructorValidation(t *testing.T) {
	tests := []struct {
		name string
		make func() (*Generator, error)
	}{
		{"ZeroSampleSize", func() (*Generator, error) { return NewNormal(0, 0, 1) }},
		{"NegativeSigma", func() (*Generator, error) { return NewNormal(5, 0, -1) }},
		{"ZeroSigma", func() (*Generator, error) { return NewLogNormal(5, 0, 0) }},
		{"NaNMu", func() (*Generator, error) { return NewNormal(5, math.NaN(), 1) }},
		{"ZeroAlpha", func() (*Generator, error) { return NewGamma(5, 0, 1) }},
		{"NegativeBeta", func() (*Generator, error) { return NewGamma(5, 1, -2) }},
		{"EmptyInterval", func() (*Generator, error) { return NewUniform(5, 1, 1) }},
		{"UnknownKind", func() (*Generator, error) { return Build("cauchy", 5, nil) }},
		{"UnknownParam", func() (*Generator, error) { return Build("norm", 5, map[string]float64{"alpha": 1}) }},
		{"NegativeBuildSize", func() (*Generator, error) { return Build("gamma", -3, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.make()
			assert.Nil(t, g)
			require.Error(t, err)
			assert.True(t, simerr.IsConfig(err), "want configuration error, got %v", err)
		})
	}
}

func TestBuild_DefaultsAndNames(t *testing.T) {
	g, err := Build("lognorm", 0, map[string]float64{"mu": 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleSize, g.SampleSize())
	assert.Equal(t, "LogNorm(1, 1)", g.Name())
	assert.Equal(t, map[string]float64{"mu": 1, "sigma": 1}, g.Params())

	u, err := Build("UNIFORM", 3, map[string]float64{"a": -0.5, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, Uniform, u.Kind())
	assert.Equal(t, "Uni(-0.5, 2)", u.Name())

	gamma, err := Build("gamma", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "Gamma(1, 1)", gamma.Name())
}

func TestSampleSizeMutationAndClone(t *testing.T) {
	g, err := NewNormal(10, 0, 1)
	require.NoError(t, err)

	c := g.Clone()
	require.NoError(t, c.SetSampleSize(20))
	assert.Equal(t, 10, g.SampleSize())
	assert.Equal(t, 20, c.SampleSize())
	assert.Len(t, c.CreateSample(rand.NewPCG(1, 1)), 20)

	assert.True(t, simerr.IsConfig(g.SetSampleSize(0)))
	assert.Equal(t, 10, g.SampleSize())
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}
