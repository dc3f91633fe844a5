package cirgen

import (
	"context"
	"fmt"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
	"corogen/internal/trace"
)

// retValName is the slot holding the value a function returns.
const retValName = "__retval"

// Function holds the state of lowering one definition.
type Function struct {
	gen     *Generator
	decl    *ast.FuncDecl
	fn      *cir.Func
	builder *cir.Builder

	tracer trace.Tracer
	span   uint64

	// localDeclMap maps parameters and locals to their stack slots.
	localDeclMap map[*ast.VarDecl]*cir.Value
	// opaqueLValues maps bound opaque values to the address of their source.
	opaqueLValues map[*ast.Expr]*cir.Value

	returnValue *cir.Value
	fnArgs      []*ast.VarDecl

	curLexScope *lexicalScope
	unreachable bool

	curCoro *coroData
	awaits  int
}

func newFunction(ctx context.Context, g *Generator, decl *ast.FuncDecl, fn *cir.Func, span uint64) *Function {
	return &Function{
		gen:           g,
		decl:          decl,
		fn:            fn,
		builder:       cir.NewBuilder(fn),
		tracer:        trace.FromContext(ctx),
		span:          span,
		localDeclMap:  make(map[*ast.VarDecl]*cir.Value),
		opaqueLValues: make(map[*ast.Expr]*cir.Value),
		fnArgs:        decl.Params,
	}
}

// emitBody lowers the prologue, the body and closes the function scope.
func (f *Function) emitBody() error {
	b := f.builder
	b.SetLoc(f.decl.Span)

	scope := f.pushScope(scopeFunction, f.fn.Body)
	if !f.decl.Result.IsVoid() {
		ty := convertType(f.decl.Result)
		f.returnValue = b.Alloca(retValName, ty, alignOf(ty), false)
	}

	args := f.fn.Args
	if f.decl.Parent != nil {
		args = args[1:]
	}
	for i, p := range f.fnArgs {
		ty := convertType(p.Type)
		addr := b.Alloca(p.Name+".addr", ty, alignOf(ty), true)
		b.Store(args[i], addr)
		f.localDeclMap[p] = addr
	}

	var err error
	if data := f.decl.CoroutineBody(); data != nil {
		err = f.emitCoroutineBody(data)
	} else {
		err = f.emitStmt(f.decl.Body, true)
	}
	if err != nil {
		return err
	}
	if f.curLexScope != scope {
		panic(cirerr.Internal("func", "unbalanced lexical scopes"))
	}
	f.popScope()
	return nil
}

func (f *Function) stats() FuncStats {
	st := FuncStats{
		Name:      f.fn.Name,
		Coroutine: f.fn.Coroutine,
		Awaits:    f.awaits,
	}
	if f.curCoro != nil {
		st.Coreturns = f.curCoro.coreturnCount
		st.FinalSuspend = f.curCoro.finalSuspendEmitted
	}
	return st
}

// emitAlloca creates a named stack slot at ip without moving the builder.
func (f *Function) emitAlloca(name string, ty *cir.Type, align int, ip cir.InsertPoint) *cir.Value {
	return f.builder.AllocaAt(ip, name, ty, align)
}

// createTempAlloca places a slot among the leading allocas of the current
// scope's entry block.
func (f *Function) createTempAlloca(name string, ty *cir.Type) *cir.Value {
	blk := f.curLexScope.entryBlock()
	return f.emitAlloca(name, ty, alignOf(ty), f.builder.BestAllocaInsertPoint(blk))
}

// declareCallee returns the module declaration of name, creating it on first use.
func (f *Function) declareCallee(name string, ty *cir.Type, builtin bool) *cir.Func {
	callee, err := f.gen.mod.GetOrDeclare(name, ty, builtin)
	if err != nil {
		panic(cirerr.Internal("callee", "%v", err))
	}
	return callee
}

// declareFunc returns the callee for a source function.
func (f *Function) declareFunc(fn *ast.FuncDecl) *cir.Func {
	return f.declareCallee(fn.QualifiedName(), funcType(fn), false)
}

// emitCall calls callee with args at the insertion point.
func (f *Function) emitCall(callee *cir.Func, args ...*cir.Value) *cir.Op {
	return f.builder.Call(callee, args...)
}

func (f *Function) errorf(op, format string, args ...any) error {
	return cirerr.Lowering(op, fmt.Errorf(format, args...))
}

// markUnreachable opens a fresh block after a terminator so following code
// still has an insertion point.
func (f *Function) markUnreachable() {
	b := f.builder
	b.CreateBlock(b.Block().Parent)
	f.unreachable = true
}

func (f *Function) tracePoint(name, detail string) {
	trace.Point(f.tracer, trace.ScopeStep, name, f.span, detail)
}
