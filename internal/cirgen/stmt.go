package cirgen

import (
	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// emitStmt lowers s. A compound statement opens a cir.scope unless
// useCurrentScope is set.
func (f *Function) emitStmt(s *ast.Stmt, useCurrentScope bool) error {
	f.builder.SetLoc(s.Span)
	switch s.Kind {
	case ast.StmtCompound:
		data := s.Data.(*ast.CompoundData)
		if useCurrentScope {
			return f.emitCompound(data)
		}
		_, err := f.builder.Scope(func() error {
			return f.emitInScope(scopeBlock, f.builder.Block().Parent, func() error {
				return f.emitCompound(data)
			})
		})
		return err
	case ast.StmtDecl:
		return f.emitDeclStmt(s.Data.(*ast.DeclData).Var)
	case ast.StmtExpr:
		_, err := f.emitAnyExpr(s.Data.(*ast.ExprStmtData).Expr, nil, true)
		return err
	case ast.StmtIf:
		return f.emitIfStmt(s.Data.(*ast.IfData))
	case ast.StmtWhile:
		return f.emitWhileStmt(s.Data.(*ast.WhileData))
	case ast.StmtBreak:
		return f.emitBreakStmt()
	case ast.StmtReturn:
		return f.emitReturnStmt(s.Data.(*ast.ReturnData))
	case ast.StmtCoreturn:
		return f.emitCoreturnStmt(s.Data.(*ast.CoreturnData))
	case ast.StmtCoroutineBody:
		panic(cirerr.Internal("stmt", "nested coroutine body"))
	case ast.StmtNull:
		return nil
	}
	return f.errorf("stmt", "unexpected statement kind %s", s.Kind)
}

func (f *Function) emitCompound(data *ast.CompoundData) error {
	for _, st := range data.Stmts {
		if err := f.emitStmt(st, false); err != nil {
			return err
		}
	}
	return nil
}

// emitInScope runs fill inside a new lexical scope over region.
func (f *Function) emitInScope(kind scopeKind, region *cir.Region, fill func() error) error {
	f.pushScope(kind, region)
	if err := fill(); err != nil {
		f.curLexScope = f.curLexScope.parent
		return err
	}
	f.popScope()
	return nil
}

func (f *Function) emitDeclStmt(v *ast.VarDecl) error {
	ty := convertType(v.Type)
	b := f.builder
	addr := f.emitAlloca(v.Name, ty, alignOf(ty), b.BestAllocaInsertPoint(f.curLexScope.entryBlock()))
	addr.Def.Alloca.Init = v.Init != nil
	f.localDeclMap[v] = addr
	if v.Init == nil {
		return nil
	}
	return f.emitAnyExprToMem(v.Init, addr)
}

// emitAnyExprToMem evaluates e into the slot at addr.
func (f *Function) emitAnyExprToMem(e *ast.Expr, addr *cir.Value) error {
	switch {
	case e.Type.IsRecord():
		return f.emitAggExpr(e, addr)
	case e.Type.IsComplex():
		rv, err := f.emitAnyExpr(e, nil, false)
		if err != nil {
			return err
		}
		f.builder.Store(rv.Value(), addr)
		return nil
	}
	v, err := f.emitScalarExpr(e)
	if err != nil {
		return err
	}
	f.builder.Store(v, addr)
	return nil
}

func (f *Function) emitIfStmt(data *ast.IfData) error {
	cond, err := f.evaluateExprAsBool(data.Cond)
	if err != nil {
		return err
	}
	outer := f.unreachable
	thenDead, elseDead := outer, outer
	arm := func(st *ast.Stmt, dead *bool) cir.RegionFunc {
		return func() error {
			f.unreachable = outer
			err := f.emitInScope(scopeIfArm, f.builder.Block().Parent, func() error {
				return f.emitStmt(st, true)
			})
			*dead = f.unreachable
			return err
		}
	}
	var elseFn cir.RegionFunc
	if data.Else != nil {
		elseFn = arm(data.Else, &elseDead)
	}
	if _, err := f.builder.If(cond, arm(data.Then, &thenDead), elseFn); err != nil {
		return err
	}
	f.unreachable = outer || (data.Else != nil && thenDead && elseDead)
	return nil
}

func (f *Function) emitWhileStmt(data *ast.WhileData) error {
	outer := f.unreachable
	var body *lexicalScope
	_, err := f.builder.While(
		func() error {
			return f.emitInScope(scopeLoopCond, f.builder.Block().Parent, func() error {
				v, err := f.evaluateExprAsBool(data.Cond)
				if err != nil {
					return err
				}
				f.builder.Condition(v)
				return nil
			})
		},
		func() error {
			return f.emitInScope(scopeLoopBody, f.builder.Block().Parent, func() error {
				body = f.curLexScope
				return f.emitStmt(data.Body, true)
			})
		},
	)
	if err != nil {
		return err
	}
	f.unreachable = outer || (isConstTrue(data.Cond) && !body.sawBreak)
	return nil
}

func isConstTrue(e *ast.Expr) bool {
	e = e.IgnoreImplicit()
	if e == nil || e.Kind != ast.ExprBoolLit {
		return false
	}
	return e.Data.(*ast.BoolLitData).Value
}

func (f *Function) emitBreakStmt() error {
	loop := f.curLexScope.enclosingLoop()
	if loop == nil {
		return f.errorf("stmt", "break outside of a loop")
	}
	if !f.unreachable {
		loop.sawBreak = true
	}
	f.builder.Break()
	f.markUnreachable()
	return nil
}

func (f *Function) emitReturnStmt(data *ast.ReturnData) error {
	if f.curCoro != nil {
		panic(cirerr.Internal("stmt", "return statement in a coroutine"))
	}
	if data.Value != nil {
		if f.returnValue == nil {
			if _, err := f.emitAnyExpr(data.Value, nil, true); err != nil {
				return err
			}
		} else if err := f.emitAnyExprToMem(data.Value, f.returnValue); err != nil {
			return err
		}
	}
	f.builder.Br(f.curLexScope.getOrCreateRetBlock())
	f.markUnreachable()
	return nil
}
