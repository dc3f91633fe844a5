package sema

import (
	"corogen/internal/ast"
	"corogen/internal/source"
)

type coroContext struct {
	promise    *ast.RecordDecl
	promiseVar *ast.VarDecl
}

func newCoroContext(promise *ast.RecordDecl, sp source.Span) *coroContext {
	v := &ast.VarDecl{Name: PromiseVarName, Span: sp, Type: promise.Type, Implicit: true}
	return &coroContext{promise: promise, promiseVar: v}
}

func (tc *typeChecker) promiseRef(sp source.Span) *ast.Expr {
	ref := ast.NewExpr(ast.ExprDeclRef, sp, &ast.DeclRefData{Name: PromiseVarName, Var: tc.coro.promiseVar})
	ref.Type = tc.coro.promise.Type
	ref.Category = ast.LValue
	return ref
}

func (tc *typeChecker) promiseCall(method string, sp source.Span, args ...*ast.Expr) *ast.Expr {
	return memberCall(tc.promiseRef(sp), method, sp, args...)
}

// implicitSuspend builds `co_await __promise.<method>()` as a statement.
func (tc *typeChecker) implicitSuspend(method string, sp source.Span) *ast.Stmt {
	if tc.coro.promise.Method(method) == nil {
		return nil
	}
	e := ast.NewExpr(ast.ExprCoawait, sp, nil)
	d := &ast.SuspendData{Implicit: true}
	e.Data = d
	common := tc.promiseCall(method, sp)
	d.Operand = common
	tc.buildSuspend(e, d, common)
	return ast.NewExprStmt(e)
}

func (tc *typeChecker) synthesizeCoroutine(fn *ast.FuncDecl, body *ast.Stmt) *ast.Stmt {
	sp := body.Span
	promise := tc.coro.promise
	data := &ast.CoroutineBodyData{
		Body:    body,
		Promise: tc.coro.promiseVar,
	}

	for _, p := range fn.Params {
		ref := ast.NewExpr(ast.ExprDeclRef, p.Span, &ast.DeclRefData{Name: p.Name, Var: p})
		ref.Type = p.Type
		ref.Category = ast.LValue
		cp := &ast.VarDecl{
			Name:     CopyPrefix + p.Name,
			Span:     p.Span,
			Type:     p.Type,
			Init:     implicitCast(ast.CastLValueToRValue, ref, p.Type),
			Implicit: true,
		}
		data.ParamMoves = append(data.ParamMoves, ast.NewDeclStmt(cp))
	}

	construct := ast.NewExpr(ast.ExprConstruct, sp, &ast.ConstructData{Record: promise})
	construct.Type = promise.Type
	tc.coro.promiseVar.Init = construct
	data.PromiseDecl = ast.NewDeclStmt(tc.coro.promiseVar)

	data.InitSuspend = tc.implicitSuspend(InitialSuspend, sp)
	data.FinalSuspend = tc.implicitSuspend(FinalSuspend, sp)

	if promise.Method(ReturnVoid) != nil {
		data.FallthroughHandler = ast.NewStmt(ast.StmtCoreturn, source.Span{File: sp.File, Start: sp.End, End: sp.End},
			&ast.CoreturnData{PromiseCall: tc.promiseCall(ReturnVoid, sp), Implicit: true})
	}
	if promise.Method(UnhandledException) != nil {
		data.ExceptionHandler = ast.NewExprStmt(tc.promiseCall(UnhandledException, sp))
	}

	size := ast.NewExpr(ast.ExprBuiltinCall, sp, &ast.BuiltinCallData{Name: BuiltinSize})
	size.Type = ast.SizeType
	opNew := tc.result.OperatorNew
	data.Allocate = ast.NewExpr(ast.ExprCall, sp, &ast.CallData{Name: opNew.Name, Func: opNew, Args: []*ast.Expr{size}})
	data.Allocate.Type = opNew.Result

	data.ReturnValue = tc.promiseCall(GetReturnObject, sp)
	if !fn.Result.IsVoid() {
		data.ReturnStmt = ast.NewStmt(ast.StmtReturn, sp, &ast.ReturnData{Value: data.ReturnValue})
	}
	if m := promise.Method(ReturnOnAllocFailure); m != nil {
		call := ast.NewExpr(ast.ExprCall, sp, &ast.CallData{Name: m.QualifiedName(), Func: m})
		call.Type = m.Result
		data.ReturnStmtOnAllocFailure = ast.NewStmt(ast.StmtReturn, sp, &ast.ReturnData{Value: call})
	}
	return ast.NewStmt(ast.StmtCoroutineBody, sp, data)
}
