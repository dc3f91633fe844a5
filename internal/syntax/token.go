package syntax

import "corogen/internal/source"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Ident represents an identifier token.
	Ident
	// IntLit represents a decimal integer literal.
	IntLit

	KwAwaiter
	KwPromise
	KwExtern
	KwNoexcept
	KwIf
	KwElse
	KwWhile
	KwBreak
	KwReturn
	KwCoReturn
	KwCoAwait
	KwCoYield
	KwTrue
	KwFalse
	KwNullptr

	LParen
	RParen
	LBrace
	RBrace
	Semicolon
	Comma
	Assign
	Plus
	Minus
	Star
	Slash
	Bang
	Lt
	LtEq
	Gt
	GtEq
	EqEq
	BangEq
)

var kindNames = [...]string{
	Invalid:    "invalid token",
	EOF:        "end of file",
	Ident:      "identifier",
	IntLit:     "integer literal",
	KwAwaiter:  "awaiter",
	KwPromise:  "promise",
	KwExtern:   "extern",
	KwNoexcept: "noexcept",
	KwIf:       "if",
	KwElse:     "else",
	KwWhile:    "while",
	KwBreak:    "break",
	KwReturn:   "return",
	KwCoReturn: "co_return",
	KwCoAwait:  "co_await",
	KwCoYield:  "co_yield",
	KwTrue:     "true",
	KwFalse:    "false",
	KwNullptr:  "nullptr",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	Semicolon:  ";",
	Comma:      ",",
	Assign:     "=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Bang:       "!",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	EqEq:       "==",
	BangEq:     "!=",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

var keywords = map[string]Kind{
	"awaiter":   KwAwaiter,
	"promise":   KwPromise,
	"extern":    KwExtern,
	"noexcept":  KwNoexcept,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"break":     KwBreak,
	"return":    KwReturn,
	"co_return": KwCoReturn,
	"co_await":  KwCoAwait,
	"co_yield":  KwCoYield,
	"true":      KwTrue,
	"false":     KwFalse,
	"nullptr":   KwNullptr,
}

// LookupKeyword returns the keyword kind for ident, if any.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Token is one lexeme with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token has one of the given kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}
