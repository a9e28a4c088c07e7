package commands

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sigsim/internal/distribution"
	"sigsim/internal/export"
	"sigsim/internal/scenario"
	"sigsim/internal/simulation"
	"sigsim/internal/visuals"
)

var simFlags struct {
	scenarioPath string

	family      string
	method      string
	alternative string
	alpha       float64
	mu          float64

	x          string
	y          string
	xParams    map[string]string
	yParams    map[string]string
	xSize      int
	ySize      int
	iterations int
	strategy   string
	seed       uint64
	workers    int
	growRatio  float64
	asJSON     bool
	chart      bool
	export     bool
	exportFile string
	noProgress bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulation and print its summary",
	Long: `Run a simulation described by a scenario file, by flags, or by a scenario file
with individual values overridden by flags.

A trial whose test is undefined aborts the run. Brunner-Munzel is undefined when the
X and Y samples are completely separated, which small samples with a large effect
hit often; use larger samples or --test wilcoxon_test --method normal instead.

Examples:
  sigsim simulate --scenario welch.yaml
  sigsim simulate --test t_test --method welch --y-params mu=0.5 --iterations 20000
  sigsim simulate --test wilcoxon_test --method paired --strategy another_test --seed 7`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simFlags.scenarioPath, "scenario", "s", "", "scenario file (YAML or JSON)")
	f.StringVar(&simFlags.family, "test", "t_test", "test family: t_test, wilcoxon_test or brunner_munzel_test")
	f.StringVar(&simFlags.method, "method", "welch", "method within the test family")
	f.StringVar(&simFlags.alternative, "alternative", "two-sided", "two-sided, greater or less")
	f.Float64Var(&simFlags.alpha, "alpha", 0, "significance level (default from configuration, 0.05)")
	f.Float64Var(&simFlags.mu, "mu", 0, "baseline of the one-sample t-test")
	f.StringVar(&simFlags.x, "x", "norm", "distribution of X")
	f.StringVar(&simFlags.y, "y", "norm", "distribution of Y (ignored by the one-sample t-test)")
	f.StringToStringVar(&simFlags.xParams, "x-params", nil, "parameters of X, e.g. mu=0,sigma=1")
	f.StringToStringVar(&simFlags.yParams, "y-params", nil, "parameters of Y")
	f.IntVar(&simFlags.xSize, "x-size", distribution.DefaultSampleSize, "sample size of X")
	f.IntVar(&simFlags.ySize, "y-size", distribution.DefaultSampleSize, "sample size of Y")
	f.IntVarP(&simFlags.iterations, "iterations", "n", 0, "number of trials (default from configuration)")
	f.StringVar(&simFlags.strategy, "strategy", "basic", "basic, another_test or add_sample")
	f.Uint64Var(&simFlags.seed, "seed", 0, "random seed for a reproducible run")
	f.IntVarP(&simFlags.workers, "workers", "w", 0, "parallel workers (default from configuration)")
	f.Float64Var(&simFlags.growRatio, "grow-ratio", 0, "sample size multiplier of add_sample (default 1.1)")
	f.BoolVar(&simFlags.asJSON, "json", false, "print the summary as JSON")
	f.BoolVar(&simFlags.chart, "chart", false, "print Mermaid charts after the summary")
	f.BoolVar(&simFlags.export, "export", false, "write the trials to an XLSX workbook in the export directory")
	f.StringVar(&simFlags.exportFile, "export-file", "", "write the trials to this XLSX workbook")
	f.BoolVar(&simFlags.noProgress, "no-progress", false, "do not report progress on a terminal")
}

// buildScenario merges the scenario file, if any, with explicitly set flags.
func buildScenario(cmd *cobra.Command) (*scenario.Scenario, error) {
	flags := cmd.Flags()
	set := func(name string) bool { return simFlags.scenarioPath == "" || flags.Changed(name) }

	sc := &scenario.Scenario{}
	if simFlags.scenarioPath != "" {
		loaded, err := scenario.Load(simFlags.scenarioPath)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}

	if set("test") {
		sc.Test.Family = simFlags.family
	}
	if set("method") {
		sc.Test.Method = simFlags.method
	}
	if set("alternative") {
		sc.Test.Alternative = simFlags.alternative
	}
	if flags.Changed("alpha") {
		sc.Test.Alpha = simFlags.alpha
	}
	if flags.Changed("mu") {
		sc.Test.Mu = simFlags.mu
	}

	xParams, err := parseParams("x-params", simFlags.xParams)
	if err != nil {
		return nil, err
	}
	yParams, err := parseParams("y-params", simFlags.yParams)
	if err != nil {
		return nil, err
	}
	sc.Generators.X = mergeGenerator(sc.Generators.X, set("x"), simFlags.x, set("x-size"), simFlags.xSize, xParams)

	oneSample := sc.Test.Family == "t_test" && sc.Test.Method == "one-sample"
	if !oneSample || flags.Changed("y") {
		sc.Generators.Y = mergeGenerator(sc.Generators.Y, set("y"), simFlags.y, set("y-size"), simFlags.ySize, yParams)
	}

	if flags.Changed("iterations") {
		sc.Simulation.Iterations = simFlags.iterations
	}
	if set("strategy") {
		sc.Simulation.Strategy = simFlags.strategy
	}
	if flags.Changed("seed") {
		seed := simFlags.seed
		sc.Simulation.Seed = &seed
	}
	if flags.Changed("workers") {
		sc.Simulation.Workers = simFlags.workers
	}
	if flags.Changed("grow-ratio") {
		sc.Simulation.GrowRatio = simFlags.growRatio
	}
	return sc, nil
}

func mergeGenerator(g *scenario.GeneratorSpec, setDist bool, dist string, setSize bool, size int, params map[string]float64) *scenario.GeneratorSpec {
	if g == nil {
		g = &scenario.GeneratorSpec{}
		setDist, setSize = true, true
	}
	if setDist {
		g.Distribution = dist
	}
	if setSize {
		g.SampleSize = size
	}
	if params != nil {
		g.Params = params
	}
	return g
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}
	sc.ApplyDefaults(cfg.Defaults())
	if err := sc.Validate(); err != nil {
		return err
	}

	var onTrial func(int, simulation.Trial)
	if !simFlags.noProgress && !simFlags.asJSON && isatty.IsTerminal(os.Stderr.Fd()) {
		onTrial = progressReporter(cmd.ErrOrStderr(), sc.Simulation.Iterations)
	}

	engine, err := scenario.Build(sc, onTrial)
	if err != nil {
		return err
	}
	if err := engine.Execute(cmd.Context()); err != nil {
		return err
	}
	if onTrial != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	summary, err := engine.Summarize()
	if err != nil {
		return err
	}

	exportPath := simFlags.exportFile
	if exportPath == "" && simFlags.export {
		exportPath = export.DefaultPath(cfg.ExportDir, summary.RunID)
	}
	if exportPath != "" {
		if err := export.WriteXLSX(exportPath, engine.Trials(), summary); err != nil {
			return err
		}
		log.Info().Str("path", exportPath).Msg("Trials exported")
	}

	out := cmd.OutOrStdout()
	if simFlags.asJSON {
		return writeJSON(out, summary)
	}
	if err := printSummary(out, engine, summary); err != nil {
		return err
	}
	if exportPath != "" {
		fmt.Fprintf(out, "\nTrials written to %s\n", exportPath)
	}
	if simFlags.chart {
		printCharts(out, engine, summary)
	}
	return nil
}

func progressReporter(w io.Writer, total int) func(int, simulation.Trial) {
	var done atomic.Int64
	step := max(int64(total/100), 1)
	return func(int, simulation.Trial) {
		n := done.Add(1)
		if n%step == 0 || n == int64(total) {
			fmt.Fprintf(w, "\r%3d%% (%d/%d)", n*100/int64(total), n, total)
		}
	}
}

func printSummary(w io.Writer, e *simulation.Engine, s *simulation.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Test\t%s\n", s.Test)
	fmt.Fprintf(tw, "X\t%s (n=%d)\n", e.X().Name(), e.X().SampleSize())
	if e.Y() != nil {
		fmt.Fprintf(tw, "Y\t%s (n=%d)\n", e.Y().Name(), e.Y().SampleSize())
	}
	fmt.Fprintf(tw, "Strategy\t%s\n", s.Strategy)
	fmt.Fprintf(tw, "Trials\t%d (%d workers, %s)\n", s.Iterations, s.Workers, s.Elapsed.Round(1e6))
	fmt.Fprintf(tw, "Rejections\t%d\n", s.Rejections)
	fmt.Fprintf(tw, "Rejection rate\t%.4f\n", s.RejectionRate)
	if s.RetriedTrials > 0 {
		fmt.Fprintf(tw, "Retried trials\t%d\n", s.RetriedTrials)
	}
	fmt.Fprintf(tw, "p-value quantiles\t5%%=%.4f 25%%=%.4f 50%%=%.4f 75%%=%.4f 95%%=%.4f\n",
		s.PValues.P5, s.PValues.P25, s.PValues.P50, s.PValues.P75, s.PValues.P95)
	fmt.Fprintf(tw, "Mean statistic\t%.4f\n", s.MeanStatistic)
	if s.Power != nil {
		fmt.Fprintf(tw, "Mean dof\t%.2f\n", s.MeanDoF)
		fmt.Fprintf(tw, "Theoretical power\t%.4f (noncentrality %.4f)\n", s.Power.Power, s.Power.Noncentrality)
	}
	return tw.Flush()
}

func printCharts(w io.Writer, e *simulation.Engine, s *simulation.Summary) {
	fmt.Fprintf(w, "\n%s\n", visuals.GeneratePValueHistogram(s.Histogram, s.Alpha))
	fmt.Fprintf(w, "\n%s\n", visuals.GenerateDensityChart(e.Densities(distribution.DefaultDensityPoints)))
	if s.Power != nil {
		fmt.Fprintf(w, "\n%s\n", visuals.GeneratePowerChart(s.Power.Curves(distribution.DefaultDensityPoints), s.Power.Power))
	}
}
