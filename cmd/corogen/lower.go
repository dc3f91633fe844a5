package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLowerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lower [flags] <file>",
		Short: "Lower a file and print its IR",
		Args:  cobra.ExactArgs(1),
		RunE:  runLower,
	}
	cmd.Flags().StringP("output", "o", "", "write the IR to this file instead of stdout")
	return cmd
}

func runLower(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	res, err := runPipeline(cmd, args[0])
	if err != nil {
		return err
	}
	if output == "" || output == "-" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Text)
		return err
	}
	if err := os.WriteFile(output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
