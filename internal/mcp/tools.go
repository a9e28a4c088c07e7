package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sigsim/internal/scenario"
)

// ListOptionsInput takes no arguments.
type ListOptionsInput struct{}

// RunSimulationInput is the input of run_simulation.
type RunSimulationInput struct {
	Scenario      scenario.Scenario `json:"scenario" jsonschema:"test, generators and simulation settings"`
	IncludeTrials bool              `json:"include_trials,omitempty" jsonschema:"return the per-trial records (at most 1000)"`
	Export        bool              `json:"export,omitempty" jsonschema:"write the per-trial records to an XLSX workbook in the export directory"`
}

// DensityPointsInput is the input of density_points.
type DensityPointsInput struct {
	Generator scenario.GeneratorSpec `json:"generator" jsonschema:"distribution and parameters"`
	Points    int                    `json:"points,omitempty" jsonschema:"number of evenly spaced points, default 100"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_options",
		Description: "List the supported distributions with their default parameters, the test families with their methods, the alternatives and the trial strategies.",
	}, s.handleListOptions)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "run_simulation",
		Description: "Repeatedly draw samples from the X (and Y) generators, run the chosen significance test on each draw and summarise the p-values. " +
			"Under identical X and Y the rejection rate estimates the type-I error; under differing generators it estimates power. " +
			"Strategies another_test and add_sample model a researcher who re-tests or enlarges the sample after a non-significant result. " +
			"t-tests also report the theoretical power from the non-central t-distribution. " +
			"A trial whose test is undefined aborts the whole run: Brunner-Munzel fails when X and Y are completely separated, " +
			"which is common with small samples and large effects; use larger samples or the Mann-Whitney test (wilcoxon_test/normal) there.",
	}, s.handleRunSimulation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "density_points",
		Description: "Evaluate a generator's probability density at evenly spaced points across its plot range.",
	}, s.handleDensityPoints)
}
