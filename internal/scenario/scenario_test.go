package scenario

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
	"sigsim/internal/simerr"
	"sigsim/internal/simulation"
)

func TestLoadAndBuild(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "welch_null.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "t_test", s.Test.Family)
	require.NotNil(t, s.Generators.Y)
	assert.Equal(t, 30, s.Generators.Y.SampleSize)
	require.NotNil(t, s.Simulation.Seed)
	assert.Equal(t, uint64(17), *s.Simulation.Seed)

	e, err := Build(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000, e.Iterations())
	assert.Equal(t, simulation.Basic, e.Strategy())

	require.NoError(t, e.Execute(context.Background()))
	assert.InDelta(t, 0.05, e.RejectionRate(), 0.02)
}

func TestLoadJSONScenario(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "one_sample.json"))
	require.NoError(t, err)
	assert.Nil(t, s.Generators.Y)

	e, err := Build(s, nil)
	require.NoError(t, err)
	assert.Equal(t, simulation.GrowSample, e.Strategy())
	assert.Equal(t, 1.5, e.GrowRatio())
	assert.Equal(t, distribution.Gamma, e.X().Kind())
	assert.Equal(t, 0.5, e.Test().PopMean())
	assert.Equal(t, significance.DefaultAlpha, e.Test().Alpha())
}

func TestBuildTestDefaultsAlpha(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		want  float64
	}{
		{"omitted", 0, significance.DefaultAlpha},
		{"explicit", 0.01, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, err := BuildTest(TestSpec{Family: "t_test", Method: "welch", Alpha: tt.alpha})
			require.NoError(t, err)
			assert.Equal(t, tt.want, test.Alpha())
		})
	}

	_, err := BuildTest(TestSpec{Family: "t_test", Method: "welch", Alpha: -0.1})
	assert.True(t, simerr.IsConfig(err))
}

func TestSchemaRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", `{"test": {"family": "t_test", "tails": 2}, "generators": {"X": {"distribution": "norm"}}}`},
		{"unknown family", `{"test": {"family": "anova"}, "generators": {"X": {"distribution": "norm"}}}`},
		{"unknown distribution", `{"test": {"family": "t_test"}, "generators": {"X": {"distribution": "cauchy"}}}`},
		{"alpha out of range", `{"test": {"family": "t_test", "alpha": 1.5}, "generators": {"X": {"distribution": "norm"}}}`},
		{"zero sample size", `{"test": {"family": "t_test"}, "generators": {"X": {"distribution": "norm", "sample_size": 0}}}`},
		{"missing generators", `{"test": {"family": "t_test"}}`},
		{"bad strategy", `{"test": {"family": "t_test"}, "generators": {"X": {"distribution": "norm"}}, "simulation": {"strategy": "p-hack"}}`},
		{"non-numeric param", `{"test": {"family": "t_test"}, "generators": {"X": {"distribution": "norm", "params": {"mu": "zero"}}}}`},
		{"not a mapping", `- just\n- a list`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, simerr.IsConfig(err), "got %v", err)
		})
	}

	_, err := Load(filepath.Join("testdata", "unknown_field.yaml"))
	assert.True(t, simerr.IsConfig(err))
}

func TestBuildSemanticErrors(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			Test: TestSpec{Family: "t_test", Method: "welch", Alpha: 0.05},
			Generators: Generators{
				X: &GeneratorSpec{Distribution: "norm"},
				Y: &GeneratorSpec{Distribution: "norm"},
			},
			Simulation: SimulationSpec{Iterations: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   string
	}{
		{"bogus method", func(s *Scenario) { s.Test.Method = "bogus" }, "[welch, student, paired, one-sample]"},
		{"bad param", func(s *Scenario) { s.Generators.X.Params = map[string]float64{"sigma": -1} }, "sigma"},
		{"unknown param", func(s *Scenario) { s.Generators.X.Params = map[string]float64{"scale": 1} }, "scale"},
		{"missing Y", func(s *Scenario) { s.Generators.Y = nil }, "generators.Y"},
		{"missing X", func(s *Scenario) { s.Generators.X = nil }, "generators.X"},
		{"bad alternative", func(s *Scenario) { s.Test.Alternative = "up" }, "alternative"},
		{"zero iterations", func(s *Scenario) { s.Simulation.Iterations = 0 }, "iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			_, err := Build(s, nil)
			require.Error(t, err)
			assert.True(t, simerr.IsConfig(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	seed := uint64(99)
	s := &Scenario{
		Test:       TestSpec{Family: "t_test"},
		Generators: Generators{X: &GeneratorSpec{Distribution: "norm"}},
		Simulation: SimulationSpec{Workers: 3},
	}
	s.ApplyDefaults(Defaults{Iterations: 1000, Workers: 1, Alpha: 0.01, GrowRatio: 1.2, Seed: &seed})

	assert.Equal(t, 1000, s.Simulation.Iterations)
	assert.Equal(t, 3, s.Simulation.Workers)
	assert.Equal(t, 0.01, s.Test.Alpha)
	assert.Equal(t, 1.2, s.Simulation.GrowRatio)
	require.NotNil(t, s.Simulation.Seed)
	assert.Equal(t, seed, *s.Simulation.Seed)

	seed = 1
	assert.Equal(t, uint64(99), *s.Simulation.Seed, "defaults are copied")
}

func TestValidateInMemory(t *testing.T) {
	s := &Scenario{
		Test:       TestSpec{Family: "brunner_munzel_test"},
		Generators: Generators{X: &GeneratorSpec{Distribution: "uniform"}, Y: &GeneratorSpec{Distribution: "lognorm"}},
	}
	require.NoError(t, s.Validate())

	s.Generators.X.Distribution = "beta"
	assert.True(t, simerr.IsConfig(s.Validate()))
}

func TestSchemaIsValidJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(Schema(), &doc))
	assert.Equal(t, "sigsim scenario", doc["title"])
}
