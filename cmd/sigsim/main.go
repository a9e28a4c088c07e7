package main

import (
	"fmt"
	"os"

	"sigsim/cmd/sigsim/commands"
	"sigsim/internal/simerr"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(simerr.ExitCode(err))
	}
}
