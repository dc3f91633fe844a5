package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"corogen/internal/driver"
)

var (
	coroutineColor = color.New(color.FgMagenta, color.Bold)
	okColor        = color.New(color.FgGreen)
)

// maxNameWidth caps the width of one table column.
const maxNameWidth = 40

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] <file>",
		Short: "Lower a file and report per-function statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(cmd, args[0])
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// statsRow is one table line before padding; styled marks the KIND cell
// as a coroutine.
type statsRow struct {
	cells  [5]string
	styled bool
}

func printStats(out io.Writer, res *driver.Result) {
	rows := []statsRow{{cells: [5]string{"FUNCTION", "KIND", "CO_RETURNS", "AWAITS", "FINAL_SUSPEND"}}}
	coroutines := 0
	for _, st := range res.Stats {
		row := statsRow{cells: [5]string{st.Name, "plain", strconv.Itoa(st.Coreturns), strconv.Itoa(st.Awaits), "-"}}
		if st.Coroutine {
			coroutines++
			row.cells[1] = "coroutine"
			row.cells[4] = yesNo(st.FinalSuspend)
			row.styled = true
		}
		rows = append(rows, row)
	}

	var widths [5]int
	for _, row := range rows {
		for i, cell := range row.cells {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxNameWidth))
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row.cells {
			if runewidth.StringWidth(cell) > maxNameWidth {
				cell = runewidth.Truncate(cell, maxNameWidth, "...")
			}
			padded := cell
			if i < len(row.cells)-1 {
				padded = runewidth.FillRight(cell, widths[i]+2)
			}
			if i == 1 && row.styled {
				padded = coroutineColor.Sprint(cell) + padded[len(cell):]
			}
			b.WriteString(padded)
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}

	cached := ""
	if res.Cached {
		cached = " (cached)"
	}
	fmt.Fprintf(out, "%s %s: %d functions, %d coroutines%s\n", okColor.Sprint("ok"), res.Path, len(res.Stats), coroutines, cached)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
