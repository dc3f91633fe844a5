package syntax

import (
	"strconv"
	"strings"

	"corogen/internal/ast"
	"corogen/internal/diag"
)

var binaryPrec = map[Kind]struct {
	prec int
	op   ast.BinaryOp
}{
	EqEq:   {1, ast.BinaryEq},
	BangEq: {1, ast.BinaryNe},
	Lt:     {2, ast.BinaryLt},
	LtEq:   {2, ast.BinaryLe},
	Gt:     {2, ast.BinaryGt},
	GtEq:   {2, ast.BinaryGe},
	Plus:   {3, ast.BinaryAdd},
	Minus:  {3, ast.BinarySub},
	Star:   {4, ast.BinaryMul},
	Slash:  {4, ast.BinaryDiv},
}

func (p *Parser) parseExpr() *ast.Expr {
	lhs := p.parseBinary(1)
	if lhs == nil || !p.at(Assign) {
		return lhs
	}
	p.advance()
	rhs := p.parseExpr()
	if rhs == nil {
		return nil
	}
	return ast.NewExpr(ast.ExprAssign, lhs.Span.Cover(rhs.Span), &ast.AssignData{Target: lhs, Value: rhs})
}

func (p *Parser) parseBinary(minPrec int) *ast.Expr {
	lhs := p.parseUnary()
	for lhs != nil {
		info, ok := binaryPrec[p.tok.Kind]
		if !ok || info.prec < minPrec {
			return lhs
		}
		p.advance()
		rhs := p.parseBinary(info.prec + 1)
		if rhs == nil {
			return nil
		}
		lhs = ast.NewExpr(ast.ExprBinary, lhs.Span.Cover(rhs.Span), &ast.BinaryData{Op: info.op, X: lhs, Y: rhs})
	}
	return lhs
}

func (p *Parser) parseUnary() *ast.Expr {
	start := p.tok.Span
	switch p.tok.Kind {
	case Minus, Bang:
		op := ast.UnaryNeg
		if p.tok.Kind == Bang {
			op = ast.UnaryNot
		}
		p.advance()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return ast.NewExpr(ast.ExprUnary, start.Cover(x.Span), &ast.UnaryData{Op: op, X: x})
	case KwCoAwait, KwCoYield:
		kind := ast.ExprCoawait
		if p.tok.Kind == KwCoYield {
			kind = ast.ExprCoyield
		}
		p.advance()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return ast.NewExpr(kind, start.Cover(x.Span), &ast.SuspendData{Operand: x})
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *ast.Expr {
	tok := p.tok
	switch tok.Kind {
	case IntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 32)
		if err != nil {
			p.errorf(diag.LexBadNumber, tok.Span, "integer literal %s does not fit in int", tok.Text)
		}
		return ast.NewExpr(ast.ExprIntLit, tok.Span, &ast.IntLitData{Value: v})
	case KwTrue, KwFalse:
		p.advance()
		return ast.NewExpr(ast.ExprBoolLit, tok.Span, &ast.BoolLitData{Value: tok.Kind == KwTrue})
	case KwNullptr:
		p.advance()
		return ast.NewExpr(ast.ExprNullPtr, tok.Span, &ast.NullPtrData{})
	case LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(RParen, diag.SynUnexpectedToken)
		if x == nil {
			return nil
		}
		return ast.NewExpr(ast.ExprParen, p.spanFrom(tok.Span), &ast.ParenData{X: x})
	case Ident:
		p.advance()
		if !p.at(LParen) {
			return ast.NewExpr(ast.ExprDeclRef, tok.Span, &ast.DeclRefData{Name: tok.Text})
		}
		p.advance()
		var args []*ast.Expr
		for !p.at(RParen) && !p.at(EOF) {
			arg := p.parseExpr()
			if arg == nil {
				p.syncTo(RParen, Semicolon)
				break
			}
			args = append(args, arg)
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen, diag.SynUnexpectedToken)
		sp := p.spanFrom(tok.Span)
		if strings.HasPrefix(tok.Text, "__builtin_") {
			return ast.NewExpr(ast.ExprBuiltinCall, sp, &ast.BuiltinCallData{Name: tok.Text, Args: args})
		}
		return ast.NewExpr(ast.ExprCall, sp, &ast.CallData{Name: tok.Text, Args: args})
	}
	p.errorf(diag.SynUnexpectedToken, tok.Span, "expected expression, found %s", p.describe(tok))
	return nil
}
