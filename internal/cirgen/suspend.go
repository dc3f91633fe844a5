package cirgen

import (
	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// resumeRValName is the slot a scalar await_resume result is parked in.
const resumeRValName = "__coawait_resume_rval"

// bindOpaque evaluates source once and makes opaque refer to its address.
func (f *Function) bindOpaque(opaque, source *ast.Expr) error {
	if _, bound := f.opaqueLValues[opaque]; bound {
		panic(cirerr.Internal("coro.suspend", "opaque value bound twice"))
	}
	var addr *cir.Value
	if source.Category == ast.LValue {
		lv, err := f.emitLValue(source)
		if err != nil {
			return err
		}
		addr = lv.addr
	} else {
		addr = f.createTempAlloca("ref.tmp", convertType(source.Type))
		if err := f.emitAggExpr(source, addr); err != nil {
			return err
		}
	}
	f.opaqueLValues[opaque] = addr
	return nil
}

func (f *Function) unbindOpaque(opaque *ast.Expr) {
	delete(f.opaqueLValues, opaque)
}

func (f *Function) isOpaqueBound(opaque *ast.Expr) bool {
	_, ok := f.opaqueLValues[opaque]
	return ok
}

// memberCallCanThrow reports whether e calls a member that is not noexcept.
func memberCallCanThrow(e *ast.Expr) bool {
	e = e.IgnoreParens()
	if e.Kind != ast.ExprMemberCall {
		return true
	}
	m := e.Data.(*ast.MemberCallData).Method
	return m == nil || !m.Noexcept
}

// emitSuspendExpression lowers one suspend point into a cir.await of the
// given kind. In location mode the resume expression must be addressable;
// in value mode a scalar result is parked in a slot of the enclosing scope
// and reloaded after the op.
func (f *Function) emitSuspendExpression(d *ast.SuspendData, kind cir.AwaitKind, slot *cir.Value, ignore, forLValue bool) (lv LValue, rv RValue, err error) {
	coro := f.coro()
	if err := f.bindOpaque(d.Opaque, d.Common); err != nil {
		return LValue{}, RValue{}, err
	}
	defer f.unbindOpaque(d.Opaque)

	b := f.builder
	scopeEntry := f.curLexScope.entryBlock()
	var rval *cir.Value
	f.awaits++

	_, err = b.Await(kind,
		func() error {
			cond, err := f.evaluateExprAsBool(d.Ready.IgnoreParens())
			if err != nil {
				return err
			}
			b.Condition(cond)
			return nil
		},
		func() error {
			if !d.Suspend.Type.IsVoid() {
				return cirerr.Unsupported("coro.suspend", "await_suspend returning bool")
			}
			if _, err := f.emitAnyExpr(d.Suspend, nil, true); err != nil {
				return err
			}
			b.Yield()
			return nil
		},
		func() error {
			if coro.exceptionHandler != nil && kind == cir.AwaitInit && memberCallCanThrow(d.Resume) {
				return cirerr.Unsupported("coro.resume", "unhandled_exception around a throwing await_resume")
			}
			if forLValue {
				var err error
				if lv, err = f.emitLValue(d.Resume); err != nil {
					return err
				}
				b.Yield()
				return nil
			}
			var err error
			if rv, err = f.emitAnyExpr(d.Resume, slot, ignore); err != nil {
				return err
			}
			if !rv.IsIgnored() {
				if !rv.IsScalar() {
					return cirerr.Unsupported("coro.resume", "aggregate or complex await_resume result")
				}
				v := rv.Value()
				rval = f.emitAlloca(resumeRValName, v.Type, 1, b.BestAllocaInsertPoint(scopeEntry))
				b.Store(v, rval)
			}
			b.Yield()
			return nil
		},
	)
	if err != nil {
		return LValue{}, RValue{}, err
	}
	if forLValue || ignore || rv.IsIgnored() {
		return lv, RValue{}, nil
	}
	return LValue{}, scalarRV(b.Load(rval)), nil
}

// emitCoawaitExpr lowers co_await, tagged with the phase of the body.
func (f *Function) emitCoawaitExpr(e *ast.Expr, slot *cir.Value, ignore bool) (RValue, error) {
	_, rv, err := f.emitSuspendExpression(e.Suspend(), f.coro().currentAwaitKind, slot, ignore, false)
	return rv, err
}

// emitCoyieldExpr lowers co_yield.
func (f *Function) emitCoyieldExpr(e *ast.Expr, slot *cir.Value, ignore bool) (RValue, error) {
	_, rv, err := f.emitSuspendExpression(e.Suspend(), cir.AwaitYield, slot, ignore, false)
	return rv, err
}

func (f *Function) emitCoawaitLValue(e *ast.Expr) (LValue, error) {
	lv, _, err := f.emitSuspendExpression(e.Suspend(), f.coro().currentAwaitKind, nil, false, true)
	return lv, err
}

func (f *Function) emitCoyieldLValue(e *ast.Expr) (LValue, error) {
	lv, _, err := f.emitSuspendExpression(e.Suspend(), cir.AwaitYield, nil, false, true)
	return lv, err
}
