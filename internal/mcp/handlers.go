package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sigsim/internal/distribution"
	"sigsim/internal/export"
	"sigsim/internal/scenario"
	"sigsim/internal/significance"
	"sigsim/internal/simerr"
	"sigsim/internal/simulation"
	"sigsim/internal/visuals"
)

const (
	// maxIterations bounds a single tool call.
	maxIterations = 1_000_000
	// maxReturnedTrials caps the trial records embedded in a response.
	maxReturnedTrials = 1000
)

// DistributionOption describes a supported distribution.
type DistributionOption struct {
	Name     string             `json:"name"`
	Defaults map[string]float64 `json:"defaults"`
}

// TestOption describes a test family and its methods.
type TestOption struct {
	Family  string   `json:"family"`
	Methods []string `json:"methods"`
}

// ListOptionsOutput is the output of list_options.
type ListOptionsOutput struct {
	Distributions []DistributionOption `json:"distributions"`
	Tests         []TestOption         `json:"tests"`
	Alternatives  []string             `json:"alternatives"`
	Strategies    []string             `json:"strategies"`
}

// RunSimulationOutput is the output of run_simulation.
type RunSimulationOutput struct {
	Summary    *simulation.Summary     `json:"summary"`
	Densities  simulation.DensityPlot  `json:"densities"`
	Curves     *simulation.PowerCurves `json:"power_curves,omitempty"`
	Trials     []simulation.Trial      `json:"trials,omitempty"`
	Truncated  bool                    `json:"trials_truncated,omitempty"`
	ExportPath string                  `json:"export_path,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// DensityPointsOutput is the output of density_points.
type DensityPointsOutput struct {
	Name      string              `json:"name"`
	PlotRange [2]float64          `json:"plot_range"`
	Points    distribution.Points `json:"points"`
}

// Options returns the enumerable configuration space of the simulator.
func Options() ListOptionsOutput {
	out := ListOptionsOutput{
		Alternatives: []string{
			significance.TwoSided.String(),
			significance.Greater.String(),
			significance.Less.String(),
		},
		Strategies: simulation.StrategyNames(),
	}
	for _, k := range distribution.Kinds() {
		out.Distributions = append(out.Distributions, DistributionOption{Name: k.String(), Defaults: k.Defaults()})
	}
	for _, name := range significance.FamilyNames() {
		f, _ := significance.ParseFamily(name)
		out.Tests = append(out.Tests, TestOption{Family: name, Methods: f.Methods()})
	}
	return out
}

func (s *Server) handleListOptions(ctx context.Context, req *sdk.CallToolRequest, _ ListOptionsInput) (*sdk.CallToolResult, any, error) {
	log.Info().Str("tool", "list_options").Msg("Tool called")
	out := Options()
	res, err := textResult(out)
	return res, out, err
}

func (s *Server) handleRunSimulation(ctx context.Context, req *sdk.CallToolRequest, in RunSimulationInput) (*sdk.CallToolResult, any, error) {
	start := time.Now()
	sc := in.Scenario
	sc.ApplyDefaults(s.cfg.Defaults())

	log.Info().
		Str("tool", "run_simulation").
		Str("family", sc.Test.Family).
		Str("method", sc.Test.Method).
		Str("strategy", sc.Simulation.Strategy).
		Int("iterations", sc.Simulation.Iterations).
		Msg("Tool called")

	if sc.Simulation.Iterations > maxIterations {
		return nil, nil, simerr.Config("simulation.iterations", "must be <= %d for a single call, got %d", maxIterations, sc.Simulation.Iterations)
	}
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	engine, err := scenario.Build(&sc, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Execute(ctx); err != nil {
		return nil, nil, err
	}
	summary, err := engine.Summarize()
	if err != nil {
		return nil, nil, err
	}

	out := RunSimulationOutput{
		Summary:   summary,
		Densities: engine.Densities(distribution.DefaultDensityPoints),
		Warnings:  warnings(engine, summary),
	}
	if summary.Power != nil {
		curves := summary.Power.Curves(distribution.DefaultDensityPoints)
		out.Curves = &curves
	}
	if in.IncludeTrials {
		trials := engine.Trials()
		if len(trials) > maxReturnedTrials {
			trials = trials[:maxReturnedTrials]
			out.Truncated = true
		}
		out.Trials = trials
	}
	if in.Export {
		path := export.DefaultPath(s.cfg.ExportDir, summary.RunID)
		if err := export.WriteXLSX(path, engine.Trials(), summary); err != nil {
			return nil, nil, err
		}
		out.ExportPath = path
	}

	var charts []string
	if s.cfg.EnableMermaidCharts {
		charts = append(charts,
			visuals.GeneratePValueHistogram(summary.Histogram, summary.Alpha),
			visuals.GenerateDensityChart(out.Densities),
		)
		if out.Curves != nil {
			charts = append(charts, visuals.GeneratePowerChart(*out.Curves, summary.Power.Power))
		}
	}

	log.Info().
		Str("tool", "run_simulation").
		Str("run_id", summary.RunID).
		Float64("rejection_rate", summary.RejectionRate).
		Dur("elapsed", time.Since(start)).
		Msg("Tool finished")

	res, err := textResult(out, charts...)
	return res, out, err
}

func (s *Server) handleDensityPoints(ctx context.Context, req *sdk.CallToolRequest, in DensityPointsInput) (*sdk.CallToolResult, any, error) {
	log.Info().Str("tool", "density_points").Str("distribution", in.Generator.Distribution).Msg("Tool called")

	g, err := scenario.BuildGenerator(in.Generator)
	if err != nil {
		return nil, nil, err
	}
	low, high := g.PlotRange()
	out := DensityPointsOutput{
		Name:      g.Name(),
		PlotRange: [2]float64{low, high},
		Points:    g.DensityPoints(in.Points),
	}
	res, err := textResult(out)
	return res, out, err
}
