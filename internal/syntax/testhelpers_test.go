package syntax_test

import (
	"fmt"
	"strings"
	"testing"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/source"
	"corogen/internal/syntax"
)

func diagnosticsSummary(bag *diag.Bag) string {
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.coro", []byte(src))
	bag := diag.NewBag(100)
	f := syntax.ParseFile(fs, id, diag.BagReporter{Bag: bag})
	if f == nil {
		t.Fatal("ParseFile returned nil")
	}
	return f, bag
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return f
}
