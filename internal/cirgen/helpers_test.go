package cirgen

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"corogen/internal/cir"
	"corogen/internal/cirerr"
	"corogen/internal/diag"
	"corogen/internal/sema"
	"corogen/internal/source"
	"corogen/internal/syntax"
)

const prelude = `
awaiter A { ready; suspend; resume int; }
awaiter V { ready noexcept; suspend; resume void noexcept; }
awaiter Veto { ready; suspend bool; resume void; }
awaiter C { ready; suspend; resume complex; }
awaiter Throwing { ready; suspend; resume void; }
promise task {
  return_value int;
  initial_suspend suspend_always;
  final_suspend suspend_never;
  yield_value V;
  unhandled_exception;
}
promise job {
  return_void;
  initial_suspend suspend_never;
  final_suspend suspend_always;
}
promise eager {
  return_void;
  initial_suspend Throwing;
  final_suspend suspend_always;
  unhandled_exception;
}
promise fragile {
  return_void;
  initial_suspend suspend_never;
  final_suspend suspend_always;
  alloc_failure;
}
extern void log(int);
`

func checkSource(t *testing.T, src string) *sema.Result {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("cirgen.coro", []byte(prelude+src))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	f := syntax.ParseFile(fs, id, rep)
	res := sema.Check(f, sema.Options{Reporter: rep})
	if bag.HasErrors() {
		var b strings.Builder
		for _, d := range bag.Items() {
			fmt.Fprintf(&b, "[%s] %s; ", d.Code.ID(), d.Message)
		}
		t.Fatalf("front end errors: %s", b.String())
	}
	return res
}

// lowerResult lowers every definition in order and stops at the first error.
func lowerResult(res *sema.Result, opts Options) (*cir.Module, map[string]FuncStats, error) {
	mod := cir.NewModule("test")
	gen := New(mod, opts)
	stats := make(map[string]FuncStats)
	for i, fn := range res.Definitions() {
		_, st, err := gen.EmitFunction(context.Background(), fn, i)
		if err != nil {
			return mod, stats, err
		}
		stats[st.Name] = st
	}
	return mod, stats, nil
}

func lowerSource(t *testing.T, src string, opts Options) (*cir.Module, map[string]FuncStats, error) {
	t.Helper()
	return lowerResult(checkSource(t, src), opts)
}

// mustLower lowers src and checks that the module validates.
func mustLower(t *testing.T, src string) (*cir.Module, map[string]FuncStats) {
	t.Helper()
	mod, stats, err := lowerSource(t, src, DefaultOptions())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if err := cir.Validate(mod); err != nil {
		t.Fatalf("invalid module: %v\n%s", err, cir.String(mod))
	}
	return mod, stats
}

// prepare defines name and returns a Function ready for emitBody.
func prepare(t *testing.T, res *sema.Result, name string, opts Options) *Function {
	t.Helper()
	decl := res.Funcs[name]
	if decl == nil {
		t.Fatalf("function %q not found", name)
	}
	gen := New(cir.NewModule("test"), opts)
	fn, err := gen.mod.Define(decl.QualifiedName(), funcType(decl), 0)
	if err != nil {
		t.Fatal(err)
	}
	return newFunction(context.Background(), gen, decl, fn, 0)
}

// catch runs fn and converts an internal invariant panic into an error.
func catch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(*cirerr.Error)
			if !ok {
				panic(r)
			}
			err = cerr
		}
	}()
	return fn()
}

func lookup(t *testing.T, mod *cir.Module, name string) *cir.Func {
	t.Helper()
	fn := mod.Lookup(name)
	if fn == nil || fn.IsDeclaration() {
		t.Fatalf("no definition of %s in\n%s", name, cir.String(mod))
	}
	return fn
}

func collect(fn *cir.Func, kind cir.OpKind) []*cir.Op {
	var out []*cir.Op
	fn.Walk(func(op *cir.Op) {
		if op.Kind == kind {
			out = append(out, op)
		}
	})
	return out
}

// callees lists the callee of every call in textual order.
func callees(fn *cir.Func) []string {
	var out []string
	for _, op := range collect(fn, cir.OpCall) {
		out = append(out, op.Call.Callee.Name)
	}
	return out
}

func countCalls(fn *cir.Func, name string) int {
	n := 0
	for _, c := range callees(fn) {
		if c == name {
			n++
		}
	}
	return n
}

func awaitKinds(fn *cir.Func) []string {
	var out []string
	for _, op := range collect(fn, cir.OpAwait) {
		out = append(out, op.Await.String())
	}
	return out
}

func allocaNamed(fn *cir.Func, name string) []*cir.Op {
	var out []*cir.Op
	for _, op := range collect(fn, cir.OpAlloca) {
		if op.Alloca.Name == name {
			out = append(out, op)
		}
	}
	return out
}
