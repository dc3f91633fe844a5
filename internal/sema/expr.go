package sema

import (
	"strings"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/source"
)

// checkExpr resolves and types e. It returns the expression to use in place
// of e, or nil after reporting an error.
func (tc *typeChecker) checkExpr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case *ast.IntLitData:
		e.Type = ast.IntType
	case *ast.BoolLitData:
		e.Type = ast.BoolType
	case *ast.NullPtrData:
		e.Type = ast.VoidPtrType
	case *ast.DeclRefData:
		return tc.checkDeclRef(e, d)
	case *ast.CallData:
		return tc.checkCall(e, d)
	case *ast.BuiltinCallData:
		return tc.checkBuiltin(e, d)
	case *ast.UnaryData:
		x := tc.checkExpr(d.X)
		if x == nil {
			return nil
		}
		if d.Op == ast.UnaryNot {
			if d.X = tc.convertCond(x); d.X == nil {
				return nil
			}
			e.Type = ast.BoolType
			break
		}
		if d.X = tc.convert(x, ast.IntType); d.X == nil {
			return nil
		}
		e.Type = ast.IntType
	case *ast.BinaryData:
		x, y := tc.checkExpr(d.X), tc.checkExpr(d.Y)
		if x == nil || y == nil {
			return nil
		}
		if !x.Type.IsArithmetic() || !y.Type.IsArithmetic() {
			tc.errorf(diag.SemTypeMismatch, e.Span, "invalid operands to binary %s (%s and %s)", d.Op, x.Type, y.Type)
			return nil
		}
		d.X, d.Y = tc.convert(x, ast.IntType), tc.convert(y, ast.IntType)
		e.Type = ast.IntType
		if d.Op.IsComparison() {
			e.Type = ast.BoolType
		}
	case *ast.AssignData:
		return tc.checkAssign(e, d)
	case *ast.ParenData:
		x := tc.checkExpr(d.X)
		if x == nil {
			return nil
		}
		d.X = x
		e.Type, e.Category = x.Type, x.Category
	case *ast.InitListData:
		tc.errorf(diag.SemTypeMismatch, e.Span, "initializer list is only allowed as a co_return operand")
		return nil
	case *ast.SuspendData:
		return tc.checkSuspend(e, d)
	default:
		tc.errorf(diag.SemTypeMismatch, e.Span, "unexpected %s expression", e.Kind)
		return nil
	}
	return e
}

func (tc *typeChecker) checkDeclRef(e *ast.Expr, d *ast.DeclRefData) *ast.Expr {
	v := tc.scope.lookup(d.Name)
	if v == nil {
		if _, isFunc := tc.result.Funcs[d.Name]; isFunc {
			tc.errorf(diag.SemTypeMismatch, e.Span, "function %q used as a value", d.Name)
		} else if _, isType := tc.types[d.Name]; isType {
			tc.errorf(diag.SemTypeMismatch, e.Span, "type %q used as a value", d.Name)
		} else {
			tc.errorf(diag.SemUnknownIdent, e.Span, "use of undeclared identifier %q", d.Name)
		}
		return nil
	}
	if v.Type == nil {
		return nil
	}
	d.Var = v
	e.Type = v.Type
	e.Category = ast.LValue
	return e
}

func (tc *typeChecker) checkCall(e *ast.Expr, d *ast.CallData) *ast.Expr {
	if t, isType := tc.types[d.Name]; isType {
		if !t.IsRecord() || t.Record.Kind != ast.RecordAwaiter {
			tc.errorf(diag.SemNotCallable, e.Span, "type %s cannot be constructed here", t)
			return nil
		}
		if len(d.Args) != 0 {
			tc.errorf(diag.SemArity, e.Span, "awaiter %s takes no constructor arguments", t)
			return nil
		}
		e.Kind = ast.ExprConstruct
		e.Data = &ast.ConstructData{Record: t.Record}
		e.Type = t
		return e
	}
	fn, ok := tc.result.Funcs[d.Name]
	if !ok {
		if tc.scope.lookup(d.Name) != nil {
			tc.errorf(diag.SemNotCallable, e.Span, "%q is not a function", d.Name)
		} else {
			tc.errorf(diag.SemUnknownIdent, e.Span, "use of undeclared function %q", d.Name)
		}
		return nil
	}
	if len(d.Args) != len(fn.Params) {
		tc.errorf(diag.SemArity, e.Span, "%q expects %d arguments, got %d", d.Name, len(fn.Params), len(d.Args))
		return nil
	}
	if !tc.checkArgs(d.Args, fn.Params) {
		return nil
	}
	d.Func = fn
	e.Type = fn.Result
	return e
}

func (tc *typeChecker) checkArgs(args []*ast.Expr, params []*ast.VarDecl) bool {
	ok := true
	for i, arg := range args {
		a := tc.checkExpr(arg)
		if a != nil {
			a = tc.convert(a, params[i].Type)
		}
		if a == nil {
			ok = false
			continue
		}
		args[i] = a
	}
	return ok
}

// builtinResult gives the type of the coroutine builtins callable from source.
func builtinResult(name string) *ast.Type {
	switch name {
	case BuiltinFrame, "__builtin_coro_promise", "__builtin_coro_free", "__builtin_coro_noop":
		return ast.VoidPtrType
	case BuiltinSize:
		return ast.SizeType
	case "__builtin_coro_done":
		return ast.BoolType
	}
	return ast.VoidType
}

func (tc *typeChecker) checkBuiltin(e *ast.Expr, d *ast.BuiltinCallData) *ast.Expr {
	if !strings.HasPrefix(d.Name, builtinPrefix) {
		tc.errorf(diag.SemUnknownIdent, e.Span, "unknown builtin %q", d.Name)
		return nil
	}
	for i, arg := range d.Args {
		a := tc.checkExpr(arg)
		if a == nil {
			return nil
		}
		d.Args[i] = tc.rvalue(a)
	}
	e.Type = builtinResult(d.Name)
	return e
}

func (tc *typeChecker) checkAssign(e *ast.Expr, d *ast.AssignData) *ast.Expr {
	target := tc.checkExpr(d.Target)
	value := tc.checkExpr(d.Value)
	if target == nil || value == nil {
		return nil
	}
	if inner := target.IgnoreParens(); inner.Kind == ast.ExprCoawait || inner.Kind == ast.ExprCoyield {
		tc.errorf(diag.SemCoroutineInLocation, target.Span, "result of %s is not assignable", inner.Kind)
		return nil
	}
	if target.Category != ast.LValue {
		tc.errorf(diag.SemNotAssignable, target.Span, "expression is not assignable")
		return nil
	}
	if !target.Type.IsScalar() {
		tc.errorf(diag.SemNotAssignable, target.Span, "cannot assign to a value of type %s", target.Type)
		return nil
	}
	if d.Value = tc.convert(value, target.Type); d.Value == nil {
		return nil
	}
	d.Target = target
	e.Type = target.Type
	e.Category = ast.LValue
	return e
}

// rvalue loads lvalues.
func (tc *typeChecker) rvalue(e *ast.Expr) *ast.Expr {
	if e.Category != ast.LValue {
		return e
	}
	return implicitCast(ast.CastLValueToRValue, e, e.Type)
}

func implicitCast(kind ast.CastKind, x *ast.Expr, to *ast.Type) *ast.Expr {
	c := ast.NewExpr(ast.ExprImplicitCast, x.Span, &ast.ImplicitCastData{Cast: kind, X: x})
	c.Type = to
	return c
}

// convert applies the implicit conversions from e to type to.
func (tc *typeChecker) convert(e *ast.Expr, to *ast.Type) *ast.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ast.ExprInitList {
		if !to.IsScalar() {
			tc.errorf(diag.SemTypeMismatch, e.Span, "cannot initialize %s from an empty initializer list", to)
			return nil
		}
		e.Type = to
		return e
	}
	e = tc.rvalue(e)
	switch {
	case ast.SameType(e.Type, to):
		return e
	case e.Type.Kind == ast.TypeInt && to.Kind == ast.TypeBool:
		return implicitCast(ast.CastIntToBool, e, to)
	case e.Type.Kind == ast.TypeBool && to.Kind == ast.TypeInt:
		return implicitCast(ast.CastBoolToInt, e, to)
	}
	tc.errorf(diag.SemTypeMismatch, e.Span, "cannot convert %s to %s", e.Type, to)
	return nil
}

func (tc *typeChecker) convertCond(e *ast.Expr) *ast.Expr {
	if !e.Type.IsArithmetic() {
		tc.errorf(diag.SemBadCondition, e.Span, "value of type %s is not contextually convertible to bool", e.Type)
		return nil
	}
	return tc.convert(e, ast.BoolType)
}

func (tc *typeChecker) checkSuspend(e *ast.Expr, d *ast.SuspendData) *ast.Expr {
	if tc.coro == nil {
		tc.errorf(diag.SemCoroutineNotTask, e.Span, "%s outside of a coroutine", e.Kind)
		return nil
	}
	if e.Kind == ast.ExprCoyield {
		method := tc.coro.promise.Method(YieldValue)
		if method == nil {
			tc.errorf(diag.SemNoYieldValue, e.Span, "promise type %s has no member yield_value", tc.coro.promise.Name)
			return nil
		}
		arg := tc.convert(tc.checkExpr(d.Operand), method.Params[0].Type)
		if arg == nil {
			return nil
		}
		d.Operand = arg
		return tc.buildSuspend(e, d, tc.promiseCall(YieldValue, e.Span, arg))
	}
	operand := tc.checkExpr(d.Operand)
	if operand == nil {
		return nil
	}
	d.Operand = operand
	if !operand.Type.IsRecord() || operand.Type.Record.Kind != ast.RecordAwaiter {
		tc.errorf(diag.SemNotAwaitable, operand.Span, "expression of type %s is not awaitable", operand.Type)
		return nil
	}
	return tc.buildSuspend(e, d, operand)
}

// buildSuspend expands a suspend point around common:
//
//	auto && x = common;
//	if (!x.await_ready()) { x.await_suspend(__builtin_coro_frame()); }
//	x.await_resume();
func (tc *typeChecker) buildSuspend(e *ast.Expr, d *ast.SuspendData, common *ast.Expr) *ast.Expr {
	sp := e.Span
	opaque := ast.NewExpr(ast.ExprOpaqueValue, common.Span, &ast.OpaqueValueData{Source: common})
	opaque.Type = common.Type
	opaque.Category = ast.LValue

	frame := ast.NewExpr(ast.ExprBuiltinCall, sp, &ast.BuiltinCallData{Name: BuiltinFrame})
	frame.Type = ast.VoidPtrType

	d.Common = common
	d.Opaque = opaque
	d.Ready = memberCall(opaque, AwaitReady, sp)
	d.Suspend = memberCall(opaque, AwaitSuspend, sp, frame)
	d.Resume = memberCall(opaque, AwaitResume, sp)
	e.Type = d.Resume.Type
	e.Category = ast.RValue
	return e
}

func memberCall(obj *ast.Expr, name string, sp source.Span, args ...*ast.Expr) *ast.Expr {
	method := obj.Type.Record.Method(name)
	call := ast.NewExpr(ast.ExprMemberCall, sp, &ast.MemberCallData{Object: obj, Method: method, Args: args})
	call.Type = method.Result
	return call
}
