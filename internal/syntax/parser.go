package syntax

import (
	"fmt"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/source"
)

// Parser is a recursive-descent parser for one file.
type Parser struct {
	lx   *Lexer
	file *source.File
	rep  diag.Reporter
	tok  Token
	last source.Span
}

// ParseFile parses the file registered under id.
func ParseFile(fs *source.FileSet, id source.FileID, rep diag.Reporter) *ast.File {
	file := fs.Get(id)
	if file == nil {
		return nil
	}
	p := &Parser{lx: NewLexer(file, rep), file: file, rep: rep}
	p.advance()
	return p.parseFile()
}

func (p *Parser) advance() Token {
	prev := p.tok
	p.last = prev.Span
	p.tok = p.lx.Next()
	return prev
}

func (p *Parser) at(k Kind) bool { return p.tok.Kind == k }

func (p *Parser) peek() Token { return p.lx.Peek() }

func (p *Parser) eat(k Kind) bool {
	if p.tok.Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(p.rep, code, sp, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(k Kind, code diag.Code) (Token, bool) {
	if p.tok.Kind == k {
		return p.advance(), true
	}
	p.errorf(code, p.tok.Span, "expected %s, found %s", k, p.describe(p.tok))
	return Token{Kind: Invalid, Span: p.tok.Span}, false
}

func (p *Parser) expectSemicolon() bool {
	if p.eat(Semicolon) {
		return true
	}
	// point at the end of the previous token, that's where the ';' belongs
	at := source.Span{File: p.last.File, Start: p.last.End, End: p.last.End}
	p.errorf(diag.SynExpectSemicolon, at, "expected ';' after %s", p.describeSpan(p.last))
	return false
}

func (p *Parser) describe(t Token) string {
	switch t.Kind {
	case Ident, IntLit:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case EOF:
		return t.Kind.String()
	}
	return fmt.Sprintf("'%s'", t.Kind)
}

func (p *Parser) describeSpan(sp source.Span) string {
	if int(sp.End) <= len(p.file.Content) && sp.Start < sp.End {
		return fmt.Sprintf("%q", p.file.Content[sp.Start:sp.End])
	}
	return "statement"
}

// syncTo skips tokens until one of kinds (consumed when it is ';') or EOF.
func (p *Parser) syncTo(kinds ...Kind) {
	for !p.at(EOF) {
		if p.tok.Is(kinds...) {
			if p.at(Semicolon) {
				p.advance()
			}
			return
		}
		p.advance()
	}
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.last)
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file.Path, Span: source.Span{File: p.file.ID}}
	for !p.at(EOF) {
		before := p.tok.Span
		switch p.tok.Kind {
		case KwAwaiter:
			if a := p.parseAwaiter(); a != nil {
				f.Awaiters = append(f.Awaiters, a)
			}
		case KwPromise:
			if pr := p.parsePromise(); pr != nil {
				f.Promises = append(f.Promises, pr)
			}
		case KwExtern:
			p.advance()
			if fn := p.parseFunc(true); fn != nil {
				f.Funcs = append(f.Funcs, fn)
			}
		case Ident:
			if fn := p.parseFunc(false); fn != nil {
				f.Funcs = append(f.Funcs, fn)
			}
		default:
			p.errorf(diag.SynUnexpectedToken, p.tok.Span, "expected declaration, found %s", p.describe(p.tok))
			p.syncTo(Semicolon, RBrace, KwAwaiter, KwPromise, KwExtern)
			p.eat(RBrace)
		}
		if p.tok.Span == before && !p.at(EOF) {
			p.advance()
		}
	}
	f.Span.End = p.tok.Span.End
	return f
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok, ok := p.expect(Ident, diag.SynExpectType)
	if !ok {
		return nil
	}
	return &ast.TypeRef{Name: tok.Text, Span: tok.Span}
}

// awaiter NAME { ready [noexcept]; suspend [bool]; resume TYPE [noexcept]; }
func (p *Parser) parseAwaiter() *ast.AwaiterSpec {
	start := p.advance().Span
	name, ok := p.expect(Ident, diag.SynExpectIdentifier)
	if !ok {
		p.syncTo(RBrace)
		p.eat(RBrace)
		return nil
	}
	spec := &ast.AwaiterSpec{Name: name.Text}
	if _, ok := p.expect(LBrace, diag.SynUnexpectedToken); !ok {
		p.syncTo(Semicolon)
		return nil
	}
	for !p.at(RBrace) && !p.at(EOF) {
		member, ok := p.expect(Ident, diag.SynExpectIdentifier)
		if !ok {
			p.syncTo(Semicolon, RBrace)
			continue
		}
		switch member.Text {
		case "ready":
			spec.ReadyNoexcept = p.eat(KwNoexcept)
		case "suspend":
			if p.at(Ident) && p.tok.Text == "bool" {
				p.advance()
				spec.SuspendBool = true
			}
		case "resume":
			spec.ResumeType = p.parseTypeRef()
			spec.ResumeNoexcept = p.eat(KwNoexcept)
		default:
			p.errorf(diag.SynUnknownMember, member.Span, "unknown awaiter member %q", member.Text)
			p.syncTo(Semicolon, RBrace)
			continue
		}
		if !p.expectSemicolon() {
			p.syncTo(Semicolon, RBrace)
		}
	}
	p.expect(RBrace, diag.SynUnexpectedToken)
	p.eat(Semicolon)
	spec.Span = p.spanFrom(start)
	return spec
}

// promise NAME { return_void; | return_value T; initial_suspend A; final_suspend A; ... }
func (p *Parser) parsePromise() *ast.PromiseSpec {
	start := p.advance().Span
	name, ok := p.expect(Ident, diag.SynExpectIdentifier)
	if !ok {
		p.syncTo(RBrace)
		p.eat(RBrace)
		return nil
	}
	spec := &ast.PromiseSpec{Name: name.Text}
	if _, ok := p.expect(LBrace, diag.SynUnexpectedToken); !ok {
		p.syncTo(Semicolon)
		return nil
	}
	for !p.at(RBrace) && !p.at(EOF) {
		member, ok := p.expect(Ident, diag.SynExpectIdentifier)
		if !ok {
			p.syncTo(Semicolon, RBrace)
			continue
		}
		switch member.Text {
		case "return_void":
			spec.ReturnVoid = true
		case "return_value":
			spec.ReturnValue = p.parseTypeRef()
		case "initial_suspend":
			spec.InitialSuspend = p.parseTypeRef()
		case "final_suspend":
			spec.FinalSuspend = p.parseTypeRef()
		case "yield_value":
			spec.YieldValue = p.parseTypeRef()
		case "unhandled_exception":
			spec.UnhandledException = true
		case "alloc_failure":
			spec.AllocFailure = true
		default:
			p.errorf(diag.SynUnknownMember, member.Span, "unknown promise member %q", member.Text)
			p.syncTo(Semicolon, RBrace)
			continue
		}
		if !p.expectSemicolon() {
			p.syncTo(Semicolon, RBrace)
		}
	}
	p.expect(RBrace, diag.SynUnexpectedToken)
	p.eat(Semicolon)
	spec.Span = p.spanFrom(start)
	return spec
}

// TYPE NAME(TYPE [p], ...) { body } | TYPE NAME(...);
func (p *Parser) parseFunc(extern bool) *ast.FuncDecl {
	start := p.tok.Span
	result := p.parseTypeRef()
	if result == nil {
		p.syncTo(Semicolon, RBrace)
		return nil
	}
	name, ok := p.expect(Ident, diag.SynExpectIdentifier)
	if !ok {
		p.syncTo(Semicolon, RBrace)
		return nil
	}
	fn := &ast.FuncDecl{Name: name.Text, ResultRef: result, Extern: extern}
	if _, ok := p.expect(LParen, diag.SynUnexpectedToken); !ok {
		p.syncTo(Semicolon, RBrace)
		return nil
	}
	for !p.at(RParen) && !p.at(EOF) {
		ty := p.parseTypeRef()
		if ty == nil {
			p.syncTo(RParen)
			break
		}
		param := &ast.VarDecl{TypeRef: ty, IsParam: true, Span: ty.Span}
		if p.at(Ident) {
			tok := p.advance()
			param.Name = tok.Text
			param.Span = ty.Span.Cover(tok.Span)
		}
		fn.Params = append(fn.Params, param)
		if !p.eat(Comma) {
			break
		}
	}
	p.expect(RParen, diag.SynUnexpectedToken)
	fn.Noexcept = p.eat(KwNoexcept)
	if extern || p.at(Semicolon) {
		fn.Extern = true
		p.expectSemicolon()
		fn.Span = p.spanFrom(start)
		return fn
	}
	if !p.at(LBrace) {
		p.errorf(diag.SynUnexpectedToken, p.tok.Span, "expected function body, found %s", p.describe(p.tok))
		p.syncTo(Semicolon, RBrace)
		return nil
	}
	fn.Body = p.parseBlock()
	fn.Span = p.spanFrom(start)
	return fn
}
