package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"corogen/internal/version"
)

func newVersionCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show corogen build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			v := strings.TrimSpace(version.Version)
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(out, "corogen %s\n", version.Colored(v))
			if full {
				fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
				fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include commit and build date")
	return cmd
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
