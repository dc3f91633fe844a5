package sema

import (
	"corogen/internal/ast"
	"corogen/internal/diag"
)

func (tc *typeChecker) checkStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch d := s.Data.(type) {
	case *ast.CompoundData:
		tc.checkCompound(s, true)
	case *ast.DeclData:
		tc.checkLocal(d.Var)
	case *ast.ExprStmtData:
		if e := tc.checkExpr(d.Expr); e != nil {
			d.Expr = e
		}
	case *ast.IfData:
		d.Cond = tc.checkCond(d.Cond)
		tc.checkSubStmt(d.Then)
		tc.checkSubStmt(d.Else)
	case *ast.WhileData:
		d.Cond = tc.checkCond(d.Cond)
		tc.loops++
		tc.checkSubStmt(d.Body)
		tc.loops--
	case *ast.BreakData:
		if tc.loops == 0 {
			tc.errorf(diag.SemBreakOutsideLoop, s.Span, "break statement not within a loop")
		}
	case *ast.ReturnData:
		tc.checkReturn(s, d)
	case *ast.CoreturnData:
		tc.checkCoreturn(s, d)
	}
}

func (tc *typeChecker) checkCompound(s *ast.Stmt, newScope bool) {
	if newScope {
		tc.pushScope()
		defer tc.popScope()
	}
	for _, st := range s.Data.(*ast.CompoundData).Stmts {
		tc.checkStmt(st)
	}
}

// checkSubStmt checks the arm of an if or the body of a loop in its own scope.
func (tc *typeChecker) checkSubStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	tc.pushScope()
	defer tc.popScope()
	tc.checkStmt(s)
}

func (tc *typeChecker) checkLocal(v *ast.VarDecl) {
	v.Type = tc.resolveType(v.TypeRef)
	if v.Type != nil && v.Type.IsVoid() {
		tc.errorf(diag.SemTypeMismatch, v.Span, "variable %q declared void", v.Name)
		v.Type = nil
	}
	if v.Init != nil {
		if init := tc.checkExpr(v.Init); init != nil && v.Type != nil {
			v.Init = tc.convert(init, v.Type)
		}
	}
	if !tc.scope.declare(v) {
		tc.errorf(diag.SemRedeclared, v.Span, "%q is already declared in this scope", v.Name)
	}
}

func (tc *typeChecker) checkCond(e *ast.Expr) *ast.Expr {
	e = tc.checkExpr(e)
	if e == nil {
		return nil
	}
	if !e.Type.IsArithmetic() {
		tc.errorf(diag.SemBadCondition, e.Span, "condition of type %s is not contextually convertible to bool", e.Type)
		return nil
	}
	return tc.convert(e, ast.BoolType)
}

func (tc *typeChecker) checkReturn(s *ast.Stmt, d *ast.ReturnData) {
	if tc.coro != nil {
		tc.errorf(diag.SemReturnInCoroutine, s.Span, "return statement not allowed in coroutine; did you mean co_return?")
		return
	}
	result := tc.fn.Result
	if d.Value == nil {
		if !result.IsVoid() {
			tc.errorf(diag.SemTypeMismatch, s.Span, "non-void function %q should return a value", tc.fn.Name)
		}
		return
	}
	v := tc.checkExpr(d.Value)
	if v == nil {
		return
	}
	if result.IsVoid() {
		if !v.Type.IsVoid() {
			tc.errorf(diag.SemTypeMismatch, v.Span, "void function %q should not return a value", tc.fn.Name)
		}
		d.Value = v
		return
	}
	d.Value = tc.convert(v, result)
}

func (tc *typeChecker) checkCoreturn(s *ast.Stmt, d *ast.CoreturnData) {
	if tc.coro == nil {
		tc.errorf(diag.SemCoroutineNotTask, s.Span, "co_return outside of a coroutine")
		return
	}
	promise := tc.coro.promise
	var operand *ast.Expr
	if d.Operand != nil {
		if d.Operand.Kind == ast.ExprInitList {
			operand = d.Operand
		} else if operand = tc.checkExpr(d.Operand); operand == nil {
			return
		}
		d.Operand = operand
	}

	// co_return; and co_return <void expr>; go through return_void
	if operand == nil || (operand.Kind != ast.ExprInitList && operand.Type.IsVoid()) {
		if promise.Method(ReturnVoid) == nil {
			tc.errorf(diag.SemNoReturnVoid, s.Span, "promise type %s has no member return_void", promise.Name)
			return
		}
		d.PromiseCall = tc.promiseCall(ReturnVoid, s.Span)
		return
	}
	method := promise.Method(ReturnValue)
	if method == nil {
		tc.errorf(diag.SemNoReturnValue, s.Span, "promise type %s has no member return_value", promise.Name)
		return
	}
	arg := tc.convert(operand, method.Params[0].Type)
	if arg == nil {
		return
	}
	d.PromiseCall = tc.promiseCall(ReturnValue, s.Span, arg)
}
