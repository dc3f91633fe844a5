package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"corogen/internal/diag"
	"corogen/internal/driver"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	noteLabel    = color.New(color.FgCyan)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorLabel
	case diag.SevWarning:
		return warningLabel
	default:
		return noteLabel
	}
}

// printDiagnostics writes one "path:line:col: error[CODE]: message" line per
// diagnostic, followed by its notes.
func printDiagnostics(w io.Writer, res *driver.Result) {
	for _, d := range res.Diags.Items() {
		label := severityColor(d.Severity).Sprintf("%s[%s]", d.Severity.Label(), d.Code.ID())
		fmt.Fprintf(w, "%s: %s: %s\n", res.FileSet.Position(d.Primary), label, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s: %s: %s\n", res.FileSet.Position(n.Span), noteLabel.Sprint("note"), n.Msg)
		}
	}
}
