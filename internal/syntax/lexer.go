package syntax

import (
	"fmt"

	"corogen/internal/diag"
	"corogen/internal/source"

	"fortio.org/safecast"
)

// Lexer produces tokens from one source file. Comments and whitespace are
// skipped.
type Lexer struct {
	file *source.File
	off  int
	rep  diag.Reporter
	look *Token
}

// NewLexer creates a lexer over file.
func NewLexer(file *source.File, rep diag.Reporter) *Lexer {
	return &Lexer{file: file, rep: rep}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

func (lx *Lexer) scan() Token {
	lx.skipTrivia()
	src := lx.file.Content
	if lx.off >= len(src) {
		return Token{Kind: EOF, Span: lx.span(lx.off, lx.off)}
	}
	start := lx.off
	ch := src[lx.off]
	switch {
	case isIdentStart(ch):
		for lx.off < len(src) && isIdentContinue(src[lx.off]) {
			lx.off++
		}
		text := string(src[start:lx.off])
		kind := Ident
		if kw, ok := LookupKeyword(text); ok {
			kind = kw
		}
		return Token{Kind: kind, Span: lx.span(start, lx.off), Text: text}
	case isDigit(ch):
		for lx.off < len(src) && isDigit(src[lx.off]) {
			lx.off++
		}
		if lx.off < len(src) && isIdentStart(src[lx.off]) {
			for lx.off < len(src) && isIdentContinue(src[lx.off]) {
				lx.off++
			}
			sp := lx.span(start, lx.off)
			diag.ReportError(lx.rep, diag.LexBadNumber, sp,
				fmt.Sprintf("malformed number %q", src[start:lx.off]))
			return Token{Kind: Invalid, Span: sp, Text: string(src[start:lx.off])}
		}
		return Token{Kind: IntLit, Span: lx.span(start, lx.off), Text: string(src[start:lx.off])}
	}

	lx.off++
	kind := Invalid
	two := func(next byte, long, short Kind) Kind {
		if lx.off < len(src) && src[lx.off] == next {
			lx.off++
			return long
		}
		return short
	}
	switch ch {
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '{':
		kind = LBrace
	case '}':
		kind = RBrace
	case ';':
		kind = Semicolon
	case ',':
		kind = Comma
	case '+':
		kind = Plus
	case '-':
		kind = Minus
	case '*':
		kind = Star
	case '/':
		kind = Slash
	case '=':
		kind = two('=', EqEq, Assign)
	case '!':
		kind = two('=', BangEq, Bang)
	case '<':
		kind = two('=', LtEq, Lt)
	case '>':
		kind = two('=', GtEq, Gt)
	}
	sp := lx.span(start, lx.off)
	if kind == Invalid {
		diag.ReportError(lx.rep, diag.LexUnknownChar, sp, fmt.Sprintf("unexpected character %q", ch))
	}
	return Token{Kind: kind, Span: sp, Text: string(src[start:lx.off])}
}

func (lx *Lexer) skipTrivia() {
	src := lx.file.Content
	for lx.off < len(src) {
		switch ch := src[lx.off]; {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.off++
		case ch == '/' && lx.off+1 < len(src) && src[lx.off+1] == '/':
			for lx.off < len(src) && src[lx.off] != '\n' {
				lx.off++
			}
		case ch == '/' && lx.off+1 < len(src) && src[lx.off+1] == '*':
			start := lx.off
			lx.off += 2
			closed := false
			for lx.off+1 < len(src) {
				if src[lx.off] == '*' && src[lx.off+1] == '/' {
					lx.off += 2
					closed = true
					break
				}
				lx.off++
			}
			if !closed {
				lx.off = len(src)
				diag.ReportError(lx.rep, diag.LexUnterminatedBlockComment, lx.span(start, start+2),
					"block comment is not terminated")
			}
		default:
			return
		}
	}
}

func (lx *Lexer) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: lx.file.ID, Start: s, End: e}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
