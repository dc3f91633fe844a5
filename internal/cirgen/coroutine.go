package cirgen

import (
	"strconv"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// frameAddrName is the slot the raw frame allocation is stored in.
const frameAddrName = "__coro_frame_addr"

// emitCoroutineBody lowers a synthesized coroutine body. It must run once
// per function, after the prologue.
func (f *Function) emitCoroutineBody(s *ast.CoroutineBodyData) error {
	b := f.builder
	nullPtr := b.NullPtr(cir.VoidPtrTy)
	f.fn.Coroutine = true

	coroID := f.emitCoroIDBuiltinCall(nullPtr)
	coro := f.createCoroData(coroID)

	coroAlloc := f.emitCoroAllocBuiltinCall()
	f.advance(phaseAllocElisionTested)

	frameAddr := f.emitAlloca(frameAddrName, cir.VoidPtrTy, alignOf(cir.VoidPtrTy), b.BestAllocaInsertPoint(f.curLexScope.entryBlock()))
	b.Store(nullPtr, frameAddr)
	_, err := b.If(coroAlloc.Result, func() error {
		mem, err := f.emitScalarExpr(s.Allocate)
		if err != nil {
			return err
		}
		b.Store(mem, frameAddr)
		b.Yield()
		return nil
	}, nil)
	if err != nil {
		return err
	}
	coro.coroBegin = f.emitCoroBeginBuiltinCall(b.Load(frameAddr)).Result
	f.advance(phaseFrameBegun)

	if s.ReturnStmtOnAllocFailure != nil {
		return cirerr.Unsupported("coro.body", "get_return_object_on_allocation_failure")
	}
	if f.gen.opts.DebugInfo {
		return cirerr.Unsupported("coro.params", "debug info for coroutine parameters")
	}

	replacer := newParamReplacer(f.localDeclMap)
	defer replacer.restore()

	if n := len(s.ParamMoves); n != 0 && n != len(f.fnArgs) {
		panic(cirerr.Internal("coro.params", "%d parameter moves for %d parameters", n, len(f.fnArgs)))
	}
	for _, pm := range s.ParamMoves {
		if err := f.emitStmt(pm, true); err != nil {
			return err
		}
		replacer.addCopy(pm)
	}
	f.advance(phaseParamsCopied)

	if s.PromiseDecl == nil {
		panic(cirerr.Internal("coro.body", "coroutine body without a promise declaration"))
	}
	if err := f.emitStmt(s.PromiseDecl, true); err != nil {
		return err
	}
	f.advance(phasePromiseConstructed)

	if (f.returnValue != nil) != (s.ReturnStmt != nil) {
		panic(cirerr.Internal("coro.body", "return slot and return statement disagree"))
	}
	if f.returnValue != nil {
		if err := f.emitAnyExprToMem(s.ReturnValue, f.returnValue); err != nil {
			return err
		}
	}
	f.advance(phaseReturnObjectMaterialized)

	// The handler is recorded for the initial suspend check; no try region
	// is emitted around the body.
	coro.exceptionHandler = s.ExceptionHandler

	if s.InitSuspend == nil || s.FinalSuspend == nil {
		panic(cirerr.Internal("coro.body", "coroutine body without initial or final suspend"))
	}
	coro.currentAwaitKind = cir.AwaitInit
	if err := f.emitStmt(s.InitSuspend, true); err != nil {
		return err
	}
	f.advance(phaseInitialSuspended)

	coro.currentAwaitKind = cir.AwaitUser
	canFallthrough, err := f.emitBodyAndFallthrough(s)
	if err != nil {
		return err
	}

	if !canFallthrough && coro.coreturnCount == 0 {
		f.advance(phaseFinalSuspendSkipped)
		f.advance(phaseDone)
		return nil
	}
	coro.currentAwaitKind = cir.AwaitFinal
	g := b.Guard()
	if coro.finalSuspendInsPoint != nil {
		b.SetInsertionPointBefore(coro.finalSuspendInsPoint)
	}
	err = f.emitStmt(s.FinalSuspend, true)
	g.Restore()
	if err != nil {
		return err
	}
	coro.finalSuspendEmitted = true
	f.advance(phaseFinalSuspendResolved)
	f.advance(phaseDone)
	return nil
}

// emitBodyAndFallthrough lowers the user body and, when control can reach
// its end, the fallthrough handler. It reports whether control falls through.
func (f *Function) emitBodyAndFallthrough(s *ast.CoroutineBodyData) (bool, error) {
	if err := f.emitStmt(s.Body, true); err != nil {
		return false, err
	}
	f.advance(phaseUserBodyLowered)

	canFallthrough := !f.curLexScope.hasCoreturn() && !f.unreachable
	if canFallthrough && s.FallthroughHandler != nil {
		if err := f.emitStmt(s.FallthroughHandler, true); err != nil {
			return false, err
		}
	}
	f.tracePoint("coro:fallthrough", strconv.FormatBool(canFallthrough))
	f.advance(phaseFallthroughResolved)
	return canFallthrough, nil
}

// emitCoreturnStmt lowers co_return: the promise call, then a branch to the
// scope's return block which becomes the final suspend insertion point.
func (f *Function) emitCoreturnStmt(d *ast.CoreturnData) error {
	coro := f.coro()
	// Implicit co_return: the final suspend for that path hinges on canFallthrough.
	if !d.Implicit {
		coro.coreturnCount++
	}
	f.curLexScope.setCoreturn()

	if rv := d.Operand; rv != nil && rv.Type.IsVoid() && rv.IgnoreParens().Kind != ast.ExprInitList {
		if _, err := f.emitAnyExpr(rv, nil, true); err != nil {
			return err
		}
	}
	if d.PromiseCall == nil {
		panic(cirerr.Internal("coro.return", "co_return without a promise call"))
	}
	if _, err := f.emitAnyExpr(d.PromiseCall, nil, true); err != nil {
		return err
	}
	coro.finalSuspendInsPoint = f.builder.Br(f.curLexScope.getOrCreateRetBlock())
	f.markUnreachable()
	return nil
}
