package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func shouldUseColor(mode colorMode, f *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(f)
	}
}

// setupColor applies --color to fatih/color's global switch.
func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(value)
	if err != nil {
		return err
	}
	color.NoColor = !shouldUseColor(mode, os.Stdout)
	return nil
}
