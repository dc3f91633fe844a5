package cirgen

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"corogen/internal/cir"
)

func TestPlainFunction(t *testing.T) {
	mod, stats := mustLower(t, `
int add(int a, int b) {
  int s = a + b;
  if (s > 10) {
    return 10;
  }
  return s;
}
`)
	fn := lookup(t, mod, "add")
	if fn.Coroutine || stats["add"].Coroutine {
		t.Error("add is not a coroutine")
	}
	if got := len(allocaNamed(fn, retValName)); got != 1 {
		t.Errorf("got %d return slots, want 1", got)
	}
	for _, name := range []string{"a.addr", "b.addr", "s"} {
		if len(allocaNamed(fn, name)) != 1 {
			t.Errorf("missing slot %s", name)
		}
	}
	for _, c := range callees(fn) {
		if strings.HasPrefix(c, "__builtin_coro_") {
			t.Errorf("plain function calls %s", c)
		}
	}
	if n := len(collect(fn, cir.OpCmp)); n != 1 {
		t.Errorf("got %d comparisons, want 1", n)
	}
}

func TestVoidFunctionFallsOffTheEnd(t *testing.T) {
	mod, _ := mustLower(t, `
void run(int n) {
  while (n > 0) {
    log(n);
    n = n - 1;
  }
}
`)
	fn := lookup(t, mod, "run")
	rets := collect(fn, cir.OpReturn)
	if len(rets) != 1 || len(rets[0].Operands) != 0 {
		t.Errorf("want a single void return, got %d", len(rets))
	}
	if len(collect(fn, cir.OpWhile)) != 1 {
		t.Error("loop missing")
	}
}

func TestNestedBlockOpensScope(t *testing.T) {
	mod, _ := mustLower(t, `
void f() {
  {
    int x = 1;
    log(x);
  }
}
`)
	fn := lookup(t, mod, "f")
	scopes := collect(fn, cir.OpScope)
	if len(scopes) != 1 {
		t.Fatalf("got %d scopes, want 1", len(scopes))
	}
	x := allocaNamed(fn, "x")
	if len(x) != 1 || x[0].Parent != scopes[0].Regions[0].Entry() {
		t.Error("locals of a nested block live in its scope")
	}
	if term := scopes[0].Regions[0].Entry().Terminator(); term == nil || term.Kind != cir.OpYield {
		t.Error("scope region must end in cir.yield")
	}
}

func TestCalleeDeclarations(t *testing.T) {
	mod, _ := mustLower(t, `
int twice(int x) { return x + x; }
task f() {
  log(twice(2));
  co_return 1;
}
`)
	for _, name := range []string{cir.BuiltinCoroID, cir.BuiltinCoroAlloc, cir.BuiltinCoroBegin, cir.BuiltinCoroEnd, cir.BuiltinCoroSize} {
		fn := mod.Lookup(name)
		if fn == nil || !fn.Builtin || !fn.IsDeclaration() {
			t.Errorf("%s must be declared as a builtin", name)
		}
	}
	if fn := mod.Lookup("log"); fn == nil || fn.Builtin || !fn.IsDeclaration() {
		t.Error("extern log must be a plain declaration")
	}
	if fn := mod.Lookup("twice"); fn == nil || fn.IsDeclaration() {
		t.Error("twice must be defined")
	}
	text := cir.String(mod)
	for _, want := range []string{
		"cir.func builtin private @__builtin_coro_id(!u32i, !cir.ptr<!void>, !cir.ptr<!void>, !cir.ptr<!void>) -> !u32i",
		`@"operator new"`,
		"cir.func coroutine @f() -> !rec_task",
		"cir.await(init,",
		"cir.await(final,",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
}

func TestConcurrentLoweringDeclaresIntrinsicsOnce(t *testing.T) {
	var src strings.Builder
	const n = 16
	for i := range n {
		fmt.Fprintf(&src, "task c%d(int v) { co_await A(); co_return v; }\n", i)
	}
	res := checkSource(t, src.String())
	mod := cir.NewModule("concurrent")
	gen := New(mod, DefaultOptions())

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(4)
	for i, fn := range res.Definitions() {
		g.Go(func() error {
			_, _, err := gen.EmitFunction(ctx, fn, i)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if err := cir.Validate(mod); err != nil {
		t.Fatal(err)
	}

	want := mod.Lookup(cir.BuiltinCoroID)
	defs := 0
	for _, fn := range mod.Funcs() {
		if fn.IsDeclaration() {
			continue
		}
		defs++
		for _, op := range collect(fn, cir.OpCall) {
			if op.Call.Callee.Name == cir.BuiltinCoroID && op.Call.Callee != want {
				t.Errorf("%s calls a second declaration of %s", fn.Name, cir.BuiltinCoroID)
			}
		}
	}
	if defs != n {
		t.Errorf("got %d definitions, want %d", defs, n)
	}
}
