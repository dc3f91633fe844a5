package syntax

import (
	"corogen/internal/ast"
	"corogen/internal/diag"
)

func (p *Parser) parseBlock() *ast.Stmt {
	start := p.advance().Span // '{'
	var stmts []*ast.Stmt
	for !p.at(RBrace) && !p.at(EOF) {
		before := p.tok.Span
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
		if p.tok.Span == before && !p.at(RBrace) && !p.at(EOF) {
			p.advance()
		}
	}
	p.expect(RBrace, diag.SynUnexpectedToken)
	return ast.NewStmt(ast.StmtCompound, p.spanFrom(start), &ast.CompoundData{Stmts: stmts})
}

func (p *Parser) parseStmt() *ast.Stmt {
	start := p.tok.Span
	switch p.tok.Kind {
	case LBrace:
		return p.parseBlock()
	case Semicolon:
		p.advance()
		return ast.NewStmt(ast.StmtNull, start, nil)
	case KwIf:
		p.advance()
		cond := p.parseParenCond()
		then := p.parseStmt()
		var els *ast.Stmt
		if p.eat(KwElse) {
			els = p.parseStmt()
		}
		if cond == nil || then == nil {
			return nil
		}
		return ast.NewStmt(ast.StmtIf, p.spanFrom(start), &ast.IfData{Cond: cond, Then: then, Else: els})
	case KwWhile:
		p.advance()
		cond := p.parseParenCond()
		body := p.parseStmt()
		if cond == nil || body == nil {
			return nil
		}
		return ast.NewStmt(ast.StmtWhile, p.spanFrom(start), &ast.WhileData{Cond: cond, Body: body})
	case KwBreak:
		p.advance()
		p.expectSemicolon()
		return ast.NewStmt(ast.StmtBreak, p.spanFrom(start), &ast.BreakData{})
	case KwReturn:
		p.advance()
		var value *ast.Expr
		if !p.at(Semicolon) {
			value = p.parseExpr()
		}
		p.expectSemicolon()
		return ast.NewStmt(ast.StmtReturn, p.spanFrom(start), &ast.ReturnData{Value: value})
	case KwCoReturn:
		p.advance()
		var operand *ast.Expr
		switch {
		case p.at(Semicolon):
		case p.at(LBrace) && p.peek().Kind == RBrace:
			lb := p.advance().Span
			p.advance()
			operand = ast.NewExpr(ast.ExprInitList, p.spanFrom(lb), &ast.InitListData{})
		default:
			operand = p.parseExpr()
		}
		p.expectSemicolon()
		return ast.NewStmt(ast.StmtCoreturn, p.spanFrom(start), &ast.CoreturnData{Operand: operand})
	case Ident:
		// TYPE NAME [= EXPR];
		if p.peek().Kind == Ident {
			return p.parseLocalDecl()
		}
	}
	e := p.parseExpr()
	if e == nil {
		p.syncTo(Semicolon, RBrace)
		return nil
	}
	if !p.expectSemicolon() {
		p.syncTo(Semicolon, RBrace)
	}
	return ast.NewStmt(ast.StmtExpr, p.spanFrom(start), &ast.ExprStmtData{Expr: e})
}

func (p *Parser) parseLocalDecl() *ast.Stmt {
	start := p.tok.Span
	ty := p.parseTypeRef()
	name := p.advance()
	v := &ast.VarDecl{Name: name.Text, TypeRef: ty}
	if p.eat(Assign) {
		v.Init = p.parseExpr()
	}
	if !p.expectSemicolon() {
		p.syncTo(Semicolon, RBrace)
	}
	v.Span = p.spanFrom(start)
	return ast.NewDeclStmt(v)
}

func (p *Parser) parseParenCond() *ast.Expr {
	if _, ok := p.expect(LParen, diag.SynUnexpectedToken); !ok {
		return nil
	}
	cond := p.parseExpr()
	if _, ok := p.expect(RParen, diag.SynUnexpectedToken); !ok {
		p.syncTo(RParen, LBrace, Semicolon)
		p.eat(RParen)
	}
	return cond
}
