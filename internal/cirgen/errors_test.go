package cirgen

import (
	"context"
	"errors"
	"testing"

	"corogen/internal/ast"
	"corogen/internal/cirerr"
)

func TestUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		op   string
	}{
		{"bool await_suspend", `job f() { co_await Veto(); }`, DefaultOptions(), "coro.suspend"},
		{"throwing initial resume", `eager f() { co_await V(); }`, DefaultOptions(), "coro.resume"},
		{"complex resume", `job f() { complex c = co_await C(); }`, DefaultOptions(), "coro.resume"},
		{"alloc failure", `fragile f() { co_await V(); }`, DefaultOptions(), "coro.body"},
		{"debug info", `job f() { co_await V(); }`, Options{NewAlign: 128, CharWidth: 8, DebugInfo: true}, "coro.params"},
		{"frame outside coroutine", `void f() { __builtin_coro_frame(); }`, DefaultOptions(), "coro.frame"},
		{"other intrinsic", `job f() { __builtin_coro_destroy(__builtin_coro_frame()); co_await V(); }`, DefaultOptions(), "coro.intrinsic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, _, err := lowerSource(t, tt.src, tt.opts)
			if !errors.Is(err, cirerr.ErrUnsupported) {
				t.Fatalf("err = %v, want unsupported", err)
			}
			if !errors.Is(err, &cirerr.Error{Kind: cirerr.KindUnsupported, Op: tt.op}) {
				t.Errorf("err = %v, want op %s", err, tt.op)
			}
			cerr, _ := cirerr.AsError(err)
			if cerr.Func != "f" {
				t.Errorf("error names function %q, want f", cerr.Func)
			}
			if fn := mod.Lookup("f"); fn == nil || !fn.IsDeclaration() {
				t.Error("a failed definition must not keep its body")
			}
		})
	}
}

func TestThrowingInitialResumeWithoutHandlerIsFine(t *testing.T) {
	mustLower(t, `
promise loose {
  return_void;
  initial_suspend Throwing;
  final_suspend suspend_always;
}
loose f() { co_await V(); }
`)
}

func TestInternalViolations(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		mutate func(*ast.CoroutineBodyData)
	}{
		{
			name:   "param move count",
			src:    `task f(int a, int b) { co_return a + b; }`,
			mutate: func(cb *ast.CoroutineBodyData) { cb.ParamMoves = cb.ParamMoves[:1] },
		},
		{
			name: "two references in one copy",
			src:  `task f(int a, int b) { co_return a; }`,
			mutate: func(cb *ast.CoroutineBodyData) {
				first := cb.ParamMoves[0].Data.(*ast.DeclData).Var
				second := cb.ParamMoves[1].Data.(*ast.DeclData).Var
				sum := ast.NewExpr(ast.ExprBinary, first.Span, &ast.BinaryData{Op: ast.BinaryAdd, X: first.Init, Y: second.Init})
				sum.Type = ast.IntType
				first.Init = sum
			},
		},
		{
			name:   "missing promise declaration",
			src:    `task f() { co_return 1; }`,
			mutate: func(cb *ast.CoroutineBodyData) { cb.PromiseDecl = nil },
		},
		{
			name: "return slot without return statement",
			src:  `task f() { co_return 1; }`,
			mutate: func(cb *ast.CoroutineBodyData) {
				cb.ReturnStmt = nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkSource(t, tt.src)
			tt.mutate(res.Funcs["f"].CoroutineBody())
			mod, _, err := lowerResult(res, DefaultOptions())
			if !cirerr.IsInternal(err) {
				t.Fatalf("err = %v, want an internal invariant violation", err)
			}
			if fn := mod.Lookup("f"); fn != nil && !fn.IsDeclaration() {
				t.Error("no definition may survive an internal error")
			}
		})
	}
}

func TestCoroutineBodyTwiceIsInternal(t *testing.T) {
	res := checkSource(t, `job f() { co_await V(); }`)
	f := prepare(t, res, "f", DefaultOptions())
	if err := catch(f.emitBody); err != nil {
		t.Fatal(err)
	}
	err := catch(func() error {
		return f.emitCoroutineBody(res.Funcs["f"].CoroutineBody())
	})
	if !cirerr.IsInternal(err) {
		t.Fatalf("second lowering: err = %v, want an internal invariant violation", err)
	}
}

func TestPhasesAdvanceInOrder(t *testing.T) {
	if !phaseStart.next(phaseIdentityCreated) || phaseStart.next(phaseFrameBegun) {
		t.Error("phases must advance one step at a time")
	}
	if !phaseFallthroughResolved.next(phaseFinalSuspendSkipped) || !phaseFallthroughResolved.next(phaseFinalSuspendResolved) {
		t.Error("final suspend may be resolved or skipped")
	}
	if phaseFinalSuspendResolved.next(phaseFinalSuspendSkipped) || phaseDone.next(phaseDone) {
		t.Error("final suspend resolves once and done is terminal")
	}
}

func TestNonCoroutineWithoutBody(t *testing.T) {
	res := checkSource(t, ``)
	gen := New(nil, DefaultOptions())
	_, _, err := gen.EmitFunction(context.Background(), res.OperatorNew, 0)
	if !errors.Is(err, cirerr.ErrLowering) {
		t.Errorf("err = %v, want a lowering error", err)
	}
}
