package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"corogen/internal/version"
)

// errReported is returned once diagnostics have been printed; main only
// sets the exit status for it.
var errReported = errors.New("errors reported")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "corogen",
		Short:         "Coroutine lowering to structured CIR",
		Long:          `corogen checks coroutine sources and lowers them into a structured CIR-like IR`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			return setupLogging(cmd)
		},
	}

	rootCmd.AddCommand(newLowerCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "path to corogen.toml (default: nearest one above the input)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "off", "log level (off|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("jobs", 0, "max functions lowered in parallel (0=from config)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().Bool("no-cache", false, "ignore the on-disk IR cache")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-pass timing information")
	return rootCmd
}

// main runs the root command. Any error exits with status 1.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "corogen: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
