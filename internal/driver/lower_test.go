package driver_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"corogen/internal/cirerr"
	"corogen/internal/config"
	"corogen/internal/diag"
	"corogen/internal/driver"
	"corogen/internal/trace"
)

const prelude = `
awaiter V { ready noexcept; suspend; resume void noexcept; }
promise task {
  return_value int;
  initial_suspend suspend_always;
  final_suspend suspend_never;
  unhandled_exception;
}
promise job {
  return_void;
  initial_suspend suspend_never;
  final_suspend suspend_always;
}
promise fragile {
  return_void;
  initial_suspend suspend_never;
  final_suspend suspend_always;
  alloc_failure;
}
extern void log(int);
`

func opts(jobs int) driver.Options {
	cfg := config.Default()
	cfg.Lower.Jobs = jobs
	return driver.Options{Config: cfg, MaxDiagnostics: 50}
}

func TestLowerSourceProducesValidModule(t *testing.T) {
	src := prelude + `
int add(int a, int b) { return a + b; }
task f(int x) { co_await V(); co_return add(x, 1); }
job g() { co_await V(); log(2); }
`
	res, err := driver.LowerSource(context.Background(), "unit.coro", []byte(src), opts(1))
	if err != nil {
		t.Fatalf("LowerSource: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diags.Items())
	}
	if res.Module == nil || res.Cached {
		t.Fatalf("want a freshly lowered module, got module=%v cached=%v", res.Module, res.Cached)
	}
	for _, want := range []string{"@add", "cir.func coroutine @f", "cir.func coroutine @g", "@__builtin_coro_id"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("output lacks %q:\n%s", want, res.Text)
		}
	}

	got := make(map[string]driver.FuncStat)
	for _, st := range res.Stats {
		got[st.Name] = st
	}
	if st := got["add"]; st.Coroutine {
		t.Errorf("add marked as coroutine: %+v", st)
	}
	if st := got["f"]; !st.Coroutine || st.Coreturns != 1 || !st.FinalSuspend {
		t.Errorf("f stats = %+v", st)
	}
	if st := got["g"]; !st.Coroutine || st.Coreturns != 0 || !st.FinalSuspend {
		t.Errorf("g stats = %+v", st)
	}
}

func TestFrontEndErrorsAreDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"undeclared", `int f() { return y; }`, diag.SemUnknownIdent},
		{"missing semicolon", `int f() { return 1 }`, diag.SynExpectSemicolon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := driver.LowerSource(context.Background(), "bad.coro", []byte(prelude+tt.src), opts(1))
			if err != nil {
				t.Fatalf("front end errors must not be returned as errors: %v", err)
			}
			if !res.HasErrors() || res.Module != nil {
				t.Fatalf("want diagnostics and no module, got %d diagnostics", res.Diags.Len())
			}
			found := false
			for _, d := range res.Diags.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("no %s among %v", tt.code.ID(), res.Diags.Items())
			}
		})
	}
}

func TestUnsupportedConstructFailsTheUnit(t *testing.T) {
	src := prelude + `
int ok() { return 1; }
fragile f() { co_await V(); }
`
	for _, jobs := range []int{1, 4} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			res, err := driver.LowerSource(context.Background(), "u.coro", []byte(src), opts(jobs))
			if !errors.Is(err, cirerr.ErrUnsupported) {
				t.Fatalf("want unsupported error, got %v", err)
			}
			if res.Module != nil || res.Text != "" {
				t.Errorf("failed unit produced output")
			}
		})
	}
}

func TestParallelLoweringMatchesSerial(t *testing.T) {
	var b strings.Builder
	b.WriteString(prelude)
	for i := range 24 {
		fmt.Fprintf(&b, "task f%d(int x) { co_await V(); co_return x + %d; }\n", i, i)
	}
	src := []byte(b.String())

	serial, err := driver.LowerSource(context.Background(), "p.coro", src, opts(1))
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := driver.LowerSource(context.Background(), "p.coro", src, opts(8))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if serial.Text != parallel.Text {
		t.Errorf("parallel output differs from serial output")
	}
	if len(parallel.Stats) != 24 {
		t.Fatalf("got %d stats, want 24", len(parallel.Stats))
	}
	for i, st := range parallel.Stats {
		if want := fmt.Sprintf("f%d", i); st.Name != want {
			t.Errorf("stats[%d].Name = %q, want %q", i, st.Name, want)
		}
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := prelude + `task f() { co_await V(); co_return 1; }`
	if _, err := driver.LowerSource(ctx, "c.coro", []byte(src), opts(2)); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	o := opts(1)
	o.Config.Target.CharWidth = 0
	if _, err := driver.LowerSource(context.Background(), "x.coro", []byte(prelude), o); err == nil {
		t.Fatal("want configuration error")
	}
}

func TestLowerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.coro")
	if err := os.WriteFile(path, []byte(prelude+`job g() { co_await V(); }`), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := driver.LowerFile(context.Background(), path, opts(0))
	if err != nil {
		t.Fatalf("LowerFile: %v", err)
	}
	if res.Module == nil || res.Module.Name != "main.coro" {
		t.Errorf("module not named after the file: %+v", res.Module)
	}

	if _, err := driver.LowerFile(context.Background(), filepath.Join(t.TempDir(), "missing.coro"), opts(0)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want not-exist error, got %v", err)
	}
}

func TestPassSpansAreTraced(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	src := prelude + `job g() { co_await V(); }`
	res, err := driver.LowerSource(ctx, "t.coro", []byte(src), opts(1))
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopePass {
			seen[ev.Name] = true
		}
	}
	for _, pass := range []string{"parse", "sema", "lower", "validate"} {
		if !seen[pass] {
			t.Errorf("no span for pass %q", pass)
		}
	}
	if n := len(res.Timings.Phases); n != 4 {
		t.Errorf("got %d timed passes, want 4", n)
	}
}
