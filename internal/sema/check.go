package sema

import (
	"fmt"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/source"
)

// Well-known names of synthesized declarations.
const (
	PromiseVarName  = "__promise"
	CopyPrefix      = "__copy_"
	OperatorNewName = "operator new"
	PromiseTypeName = "promise_type"
	BuiltinFrame    = "__builtin_coro_frame"
	BuiltinSize     = "__builtin_coro_size"
	builtinPrefix   = "__builtin_coro_"
)

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
}

// Result stores what lowering needs from the checked file.
type Result struct {
	File *ast.File
	// Records by name: awaiters, tasks and the promise types (task::promise_type).
	Records map[string]*ast.RecordDecl
	// Funcs holds free functions by name; a definition replaces an earlier declaration.
	Funcs       map[string]*ast.FuncDecl
	OperatorNew *ast.FuncDecl
}

// Coroutines returns the checked coroutine definitions in declaration order.
func (r *Result) Coroutines() []*ast.FuncDecl {
	var out []*ast.FuncDecl
	for _, fn := range r.File.Funcs {
		if fn.IsCoroutine {
			out = append(out, fn)
		}
	}
	return out
}

// Definitions returns every function with a body in declaration order.
func (r *Result) Definitions() []*ast.FuncDecl {
	var out []*ast.FuncDecl
	for _, fn := range r.File.Funcs {
		if fn.Body != nil {
			out = append(out, fn)
		}
	}
	return out
}

// Check performs semantic analysis of f. It mutates f in place and returns
// the global tables. Errors are reported through opts.Reporter; the tree is
// only fit for lowering when none were reported.
func Check(f *ast.File, opts Options) *Result {
	res := &Result{
		File:    f,
		Records: make(map[string]*ast.RecordDecl),
		Funcs:   make(map[string]*ast.FuncDecl),
	}
	if f == nil {
		return res
	}
	tc := &typeChecker{
		reporter: opts.Reporter,
		result:   res,
		types:    make(map[string]*ast.Type),
	}
	tc.run()
	return res
}

type typeChecker struct {
	reporter diag.Reporter
	result   *Result
	types    map[string]*ast.Type

	// per-function state
	fn    *ast.FuncDecl
	coro  *coroContext
	scope *scope
	loops int
}

func (tc *typeChecker) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(tc.reporter, code, sp, fmt.Sprintf(format, args...))
}

func (tc *typeChecker) run() {
	tc.declareBuiltins()
	tc.declareRecords()
	tc.declareFuncs()
	for _, fn := range tc.result.File.Funcs {
		if fn.Body != nil && tc.result.Funcs[fn.Name] == fn {
			tc.checkFunc(fn)
		}
	}
}

func (tc *typeChecker) declareBuiltins() {
	tc.types["void"] = ast.VoidType
	tc.types["bool"] = ast.BoolType
	tc.types["int"] = ast.IntType
	tc.types["complex"] = ast.ComplexType

	for _, name := range []string{"suspend_always", "suspend_never"} {
		spec := &ast.AwaiterSpec{Name: name, ReadyNoexcept: true, ResumeNoexcept: true}
		fillAwaiter(tc.addAwaiter(spec), spec, ast.VoidType)
	}

	size := &ast.VarDecl{Name: "size", Type: ast.SizeType, IsParam: true}
	tc.result.OperatorNew = &ast.FuncDecl{
		Name:   OperatorNewName,
		Params: []*ast.VarDecl{size},
		Result: ast.VoidPtrType,
		Extern: true,
	}
}

func (tc *typeChecker) resolveType(ref *ast.TypeRef) *ast.Type {
	if ref == nil {
		return nil
	}
	t, ok := tc.types[ref.Name]
	if !ok {
		tc.errorf(diag.SemUnknownType, ref.Span, "unknown type %q", ref.Name)
		return nil
	}
	return t
}

func (tc *typeChecker) declareFuncs() {
	for _, fn := range tc.result.File.Funcs {
		if _, isType := tc.types[fn.Name]; isType {
			tc.errorf(diag.SemRedeclared, fn.Span, "%q is already declared as a type", fn.Name)
			continue
		}
		if prev, ok := tc.result.Funcs[fn.Name]; ok {
			if prev.Body != nil || fn.Body == nil {
				tc.errorf(diag.SemRedeclared, fn.Span, "function %q is already declared", fn.Name)
				continue
			}
		}
		if !tc.resolveSignature(fn) {
			continue
		}
		if prev, ok := tc.result.Funcs[fn.Name]; ok && !sameSignature(prev, fn) {
			tc.errorf(diag.SemRedeclared, fn.Span, "definition of %q does not match its declaration", fn.Name)
			continue
		}
		tc.result.Funcs[fn.Name] = fn
	}
}

func (tc *typeChecker) resolveSignature(fn *ast.FuncDecl) bool {
	ok := true
	fn.Result = tc.resolveType(fn.ResultRef)
	if fn.Result == nil {
		ok = false
	} else if fn.Result.IsComplex() {
		tc.errorf(diag.SemTypeMismatch, fn.ResultRef.Span, "functions cannot return complex values")
		ok = false
	}
	seen := make(map[string]bool, len(fn.Params))
	for i, p := range fn.Params {
		p.Type = tc.resolveType(p.TypeRef)
		switch {
		case p.Type == nil:
			ok = false
		case !p.Type.IsScalar() || p.Type.Kind == ast.TypeVoidPtr:
			tc.errorf(diag.SemTypeMismatch, p.Span, "parameter type %s is not supported", p.Type)
			ok = false
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("arg%d", i)
			p.Implicit = true
		}
		if seen[p.Name] {
			tc.errorf(diag.SemRedeclared, p.Span, "parameter %q is already declared", p.Name)
			ok = false
		}
		seen[p.Name] = true
	}
	return ok
}

func sameSignature(a, b *ast.FuncDecl) bool {
	if !ast.SameType(a.Result, b.Result) || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !ast.SameType(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

func (tc *typeChecker) checkFunc(fn *ast.FuncDecl) {
	tc.fn = fn
	tc.coro = nil
	tc.loops = 0
	defer func() {
		tc.fn = nil
		tc.coro = nil
		tc.scope = nil
	}()

	if at, found := findCoroutineSyntax(fn.Body); found {
		task := fn.Result
		if !task.IsRecord() || task.Record.Kind != ast.RecordTask {
			tc.errorf(diag.SemCoroutineNotTask, at,
				"%q uses coroutine syntax but returns %s, not a task type", fn.Name, fn.Result)
			return
		}
		tc.coro = newCoroContext(task.Record.Promise, fn.Body.Span)
	}

	tc.scope = newScope(nil)
	for _, p := range fn.Params {
		tc.scope.declare(p)
	}
	body := fn.Body
	tc.checkCompound(body, false)
	if tc.coro != nil {
		fn.Body = tc.synthesizeCoroutine(fn, body)
		fn.IsCoroutine = true
	}
}

// findCoroutineSyntax reports the first co_await, co_yield or co_return in body.
func findCoroutineSyntax(body *ast.Stmt) (source.Span, bool) {
	var at source.Span
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *ast.Stmt:
			if n.Kind == ast.StmtCoreturn {
				at, found = n.Span, true
			}
		case *ast.Expr:
			if n.Kind == ast.ExprCoawait || n.Kind == ast.ExprCoyield {
				at, found = n.Span, true
			}
		}
		return !found
	})
	return at, found
}
