// Package scenario loads declarative simulation scenarios from YAML or JSON and
// builds the generators and engine they describe.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
	"sigsim/internal/simerr"
	"sigsim/internal/simulation"
)

// TestSpec selects the significance test.
type TestSpec struct {
	Family      string  `yaml:"family" json:"family" jsonschema:"test family: t_test, wilcoxon_test or brunner_munzel_test"`
	Method      string  `yaml:"method,omitempty" json:"method,omitempty" jsonschema:"method within the family, e.g. welch, student, paired, one-sample, normal"`
	Alternative string  `yaml:"alternative,omitempty" json:"alternative,omitempty" jsonschema:"two-sided (default), greater or less"`
	Alpha       float64 `yaml:"alpha,omitempty" json:"alpha,omitempty" jsonschema:"significance level in (0, 1), default 0.05"`
	Mu          float64 `yaml:"mu,omitempty" json:"mu,omitempty" jsonschema:"baseline of the one-sample t-test"`
}

// GeneratorSpec describes one distribution generator.
type GeneratorSpec struct {
	Distribution string             `yaml:"distribution" json:"distribution" jsonschema:"norm, lognorm, gamma or uniform"`
	SampleSize   int                `yaml:"sample_size,omitempty" json:"sample_size,omitempty" jsonschema:"observations per sample, default 50"`
	Params       map[string]float64 `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"distribution parameters: mu/sigma, alpha/beta or a/b"`
}

// Generators holds the X and, for two-sample tests, the Y generator.
type Generators struct {
	X *GeneratorSpec `yaml:"X" json:"X" jsonschema:"first sample generator"`
	Y *GeneratorSpec `yaml:"Y,omitempty" json:"Y,omitempty" jsonschema:"second sample generator, omitted for the one-sample t-test"`
}

// SimulationSpec configures the engine.
type SimulationSpec struct {
	Iterations int     `yaml:"iterations,omitempty" json:"iterations,omitempty" jsonschema:"number of trials"`
	Strategy   string  `yaml:"strategy,omitempty" json:"strategy,omitempty" jsonschema:"basic, another_test (retry once) or add_sample (grow sample)"`
	Seed       *uint64 `yaml:"seed,omitempty" json:"seed,omitempty" jsonschema:"random seed for a reproducible run"`
	Workers    int     `yaml:"workers,omitempty" json:"workers,omitempty" jsonschema:"parallel workers, default 1"`
	GrowRatio  float64 `yaml:"grow_ratio,omitempty" json:"grow_ratio,omitempty" jsonschema:"sample size multiplier of the add_sample strategy"`
}

// Scenario is a complete simulation description.
type Scenario struct {
	Test       TestSpec       `yaml:"test" json:"test" jsonschema:"significance test"`
	Generators Generators     `yaml:"generators" json:"generators" jsonschema:"sample generators"`
	Simulation SimulationSpec `yaml:"simulation,omitempty" json:"simulation,omitempty" jsonschema:"simulation settings"`
}

// Defaults fill fields a scenario leaves unset.
type Defaults struct {
	Iterations int
	Workers    int
	Alpha      float64
	GrowRatio  float64
	Seed       *uint64
}

// Parse decodes a YAML or JSON scenario and validates it against the schema.
func Parse(data []byte) (*Scenario, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, schemaError(fmt.Errorf("decode: %w", err))
	}
	if err := validateDecoded(raw); err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, schemaError(fmt.Errorf("decode: %w", err))
	}
	return &s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks an in-memory scenario against the schema.
func (s *Scenario) Validate() error {
	data, err := toJSON(s)
	if err != nil {
		return err
	}
	if err := validateJSON(data); err != nil {
		return schemaError(err)
	}
	return nil
}

func validateDecoded(raw any) error {
	data, err := toJSON(raw)
	if err != nil {
		return schemaError(err)
	}
	if err := validateJSON(data); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	return &simerr.Error{Kind: simerr.KindConfig, Field: "scenario", Message: "invalid scenario", Cause: err}
}

// ApplyDefaults fills unset fields from d.
func (s *Scenario) ApplyDefaults(d Defaults) {
	if s.Test.Alpha == 0 {
		s.Test.Alpha = d.Alpha
	}
	if s.Simulation.Iterations == 0 {
		s.Simulation.Iterations = d.Iterations
	}
	if s.Simulation.Workers == 0 {
		s.Simulation.Workers = d.Workers
	}
	if s.Simulation.GrowRatio == 0 {
		s.Simulation.GrowRatio = d.GrowRatio
	}
	if s.Simulation.Seed == nil && d.Seed != nil {
		seed := *d.Seed
		s.Simulation.Seed = &seed
	}
}

// BuildGenerator constructs the generator described by spec.
func BuildGenerator(spec GeneratorSpec) (*distribution.Generator, error) {
	return distribution.Build(spec.Distribution, spec.SampleSize, spec.Params)
}

// BuildTest constructs the significance test described by spec. A zero alpha
// means significance.DefaultAlpha.
func BuildTest(spec TestSpec) (*significance.Test, error) {
	if spec.Alpha == 0 {
		spec.Alpha = significance.DefaultAlpha
	}
	alt, err := significance.ParseAlternative(spec.Alternative)
	if err != nil {
		return nil, err
	}
	return significance.New(significance.Spec{
		Family:      spec.Family,
		Method:      spec.Method,
		Alternative: alt,
		Alpha:       spec.Alpha,
		PopMean:     spec.Mu,
	})
}

// Build constructs the engine. Every configuration problem is reported here,
// before any sampling happens.
func Build(s *Scenario, onTrial func(int, simulation.Trial)) (*simulation.Engine, error) {
	test, err := BuildTest(s.Test)
	if err != nil {
		return nil, err
	}
	if s.Generators.X == nil {
		return nil, simerr.Config("generators.X", "is required")
	}
	x, err := BuildGenerator(*s.Generators.X)
	if err != nil {
		return nil, err
	}
	var y *distribution.Generator
	if s.Generators.Y != nil {
		if y, err = BuildGenerator(*s.Generators.Y); err != nil {
			return nil, err
		}
	}
	strategy, err := simulation.ParseStrategy(s.Simulation.Strategy)
	if err != nil {
		return nil, err
	}

	return simulation.NewEngine(simulation.Config{
		Test:       test,
		X:          x,
		Y:          y,
		Iterations: s.Simulation.Iterations,
		Strategy:   strategy,
		Seed:       s.Simulation.Seed,
		GrowRatio:  s.Simulation.GrowRatio,
		Workers:    s.Simulation.Workers,
		OnTrial:    onTrial,
	})
}
