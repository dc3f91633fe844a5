package sema_test

import (
	"fmt"
	"strings"
	"testing"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/sema"
	"corogen/internal/source"
	"corogen/internal/syntax"
)

const prelude = `
awaiter A { ready; suspend; resume int; }
awaiter V { ready noexcept; suspend; resume void noexcept; }
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
extern void log(int);
`

func check(t *testing.T, src string) (*sema.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("sema.coro", []byte(prelude+src))
	bag := diag.NewBag(100)
	f := syntax.ParseFile(fs, id, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", summary(bag))
	}
	res := sema.Check(f, sema.Options{Reporter: diag.BagReporter{Bag: bag}})
	return res, bag
}

func mustCheck(t *testing.T, src string) *sema.Result {
	t.Helper()
	res, bag := check(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(bag))
	}
	return res
}

func summary(bag *diag.Bag) string {
	var b strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&b, "[%s] %s; ", d.Code.ID(), d.Message)
	}
	return b.String()
}

func coroutine(t *testing.T, res *sema.Result, name string) *ast.CoroutineBodyData {
	t.Helper()
	fn := res.Funcs[name]
	if fn == nil {
		t.Fatalf("function %q not found", name)
	}
	cb := fn.CoroutineBody()
	if cb == nil {
		t.Fatalf("%q is not a coroutine", name)
	}
	return cb
}
