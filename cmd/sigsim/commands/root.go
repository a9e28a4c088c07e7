package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sigsim/internal/config"
	"sigsim/internal/logging"
	"sigsim/internal/mcp"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "sigsim",
	Short: "sigsim simulates the validity and power of significance tests",
	Long: `sigsim repeatedly draws synthetic samples from configurable distributions, runs a
significance test on every draw and reports the rejection rate, the p-value
distribution and, for t-tests, the theoretical power.

Without a subcommand it serves the simulator as MCP tools over stdio.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("sigsim starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("MCP Server starting Stdio loop")
		return mcp.NewServer(cfg, Version).Serve(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(simulateCmd, densityCmd, sampleCmd, optionsCmd, schemaCmd)
}
