package commands

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"sigsim/internal/mcp"
	"sigsim/internal/scenario"
	"sigsim/internal/simerr"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List distributions, tests, alternatives and strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeJSON(cmd.OutOrStdout(), mcp.Options())
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema [scenario|tool-input]",
	Short: "Print the JSON Schema of scenario files or of the run_simulation tool input",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "scenario"
		if len(args) == 1 {
			which = args[0]
		}
		out := cmd.OutOrStdout()
		switch which {
		case "scenario":
			_, err := fmt.Fprintln(out, string(scenario.Schema()))
			return err
		case "tool-input":
			s, err := jsonschema.For[mcp.RunSimulationInput](nil)
			if err != nil {
				return fmt.Errorf("infer schema: %w", err)
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}
		return simerr.Config("schema", "must be scenario or tool-input, got %q", which)
	},
}
