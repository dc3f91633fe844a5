package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPrelude = `
awaiter V { ready noexcept; suspend; resume void noexcept; }
promise task {
  return_value int;
  initial_suspend suspend_always;
  final_suspend suspend_never;
  unhandled_exception;
}
`

func writeSource(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unit.coro")
	if err := os.WriteFile(path, []byte(testPrelude+body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestLowerPrintsIR(t *testing.T) {
	path := writeSource(t, `task f(int x) { co_await V(); co_return x; }`)
	stdout, _, err := execute(t, "lower", path)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if !strings.Contains(stdout, "cir.func coroutine @f") {
		t.Errorf("IR missing coroutine:\n%s", stdout)
	}
}

func TestLowerWritesOutputFile(t *testing.T) {
	path := writeSource(t, `int one() { return 1; }`)
	out := filepath.Join(t.TempDir(), "one.cir")
	stdout, _, err := execute(t, "lower", path, "-o", out)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout should be empty with -o, got %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "@one") {
		t.Errorf("output file lacks @one:\n%s", data)
	}
}

func TestCheckPrintsStats(t *testing.T) {
	path := writeSource(t, `
int one() { return 1; }
task f(int x) { if (x) { co_return 1; } co_await V(); co_return 2; }
`)
	stdout, _, err := execute(t, "check", "--jobs", "2", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header, two rows and a summary, got:\n%s", stdout)
	}
	if fields := strings.Fields(lines[1]); len(fields) != 5 || fields[0] != "one" || fields[1] != "plain" {
		t.Errorf("row for one = %q", lines[1])
	}
	if fields := strings.Fields(lines[2]); len(fields) != 5 || fields[0] != "f" || fields[1] != "coroutine" || fields[2] != "2" || fields[4] != "yes" {
		t.Errorf("row for f = %q", lines[2])
	}
	if !strings.Contains(lines[3], "2 functions, 1 coroutines") {
		t.Errorf("summary = %q", lines[3])
	}
}

func TestDiagnosticsFormat(t *testing.T) {
	path := writeSource(t, `int f() { return y; }`)
	_, stderr, err := execute(t, "check", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("want errReported, got %v", err)
	}
	if !strings.Contains(stderr, "unit.coro:") || !strings.Contains(stderr, ": error[SEM3001]: ") {
		t.Errorf("unexpected diagnostic output:\n%s", stderr)
	}
}

func TestInvalidFlags(t *testing.T) {
	path := writeSource(t, ``)
	tests := []struct {
		name string
		args []string
	}{
		{"color", []string{"--color", "sometimes", "check", path}},
		{"log level", []string{"--log-level", "loud", "check", path}},
		{"trace level", []string{"--trace-level", "everything", "check", path}},
		{"jobs", []string{"--jobs", "-1", "check", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("want an error")
			}
		})
	}
}

func TestConfigFlag(t *testing.T) {
	path := writeSource(t, `task f() { co_await V(); co_return 1; }`)
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(cfgPath, []byte("[target]\nnew_align = 64\nchar_width = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := execute(t, "--config", cfgPath, "lower", path)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	// 64 bits of operator new alignment are 8 bytes.
	if !strings.Contains(stdout, "cir.const #cir.int<8> : !u32i") {
		t.Errorf("coro.id alignment not taken from the config:\n%s", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version", "--full")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "corogen ") || !strings.Contains(stdout, "commit: unknown") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestTimingsFlag(t *testing.T) {
	path := writeSource(t, `int one() { return 1; }`)
	_, stderr, err := execute(t, "--timings", "check", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, pass := range []string{"parse", "sema", "lower", "validate", "total"} {
		if !strings.Contains(stderr, pass) {
			t.Errorf("timings lack %q:\n%s", pass, stderr)
		}
	}
}

func TestRingTraceDumpedOnFailure(t *testing.T) {
	path := writeSource(t, `
promise fragile {
  return_void;
  initial_suspend suspend_never;
  final_suspend suspend_always;
  alloc_failure;
}
fragile f() { co_await V(); }
`)
	_, stderr, err := execute(t, "--trace-level", "phase", "--trace-mode", "ring", "lower", path)
	if err == nil {
		t.Fatal("want an unsupported-construct error")
	}
	if !strings.Contains(stderr, "trace: last events before the failure:") || !strings.Contains(stderr, "lower") {
		t.Errorf("ring buffer not dumped:\n%s", stderr)
	}
}
