package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Syntax
	SynUnexpectedToken  Code = 2001
	SynExpectSemicolon  Code = 2012
	SynExpectIdentifier Code = 2102
	SynExpectType       Code = 2103
	SynUnknownMember    Code = 2104

	// Semantic
	SemUnknownIdent        Code = 3001
	SemUnknownType         Code = 3002
	SemRedeclared          Code = 3003
	SemTypeMismatch        Code = 3004
	SemArity               Code = 3005
	SemNotCallable         Code = 3006
	SemBadCondition        Code = 3007
	SemBreakOutsideLoop    Code = 3008
	SemReturnInCoroutine   Code = 3009
	SemCoroutineNotTask    Code = 3010
	SemNotAwaitable        Code = 3011
	SemNoReturnValue       Code = 3012
	SemNoReturnVoid        Code = 3013
	SemNoYieldValue        Code = 3014
	SemNotAssignable       Code = 3015
	SemIncompletePromise   Code = 3016
	SemCoroutineInLocation Code = 3017

	// IO
	IOReadError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	SynUnexpectedToken:          "Unexpected token",
	SynExpectSemicolon:          "Expected semicolon",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectType:               "Expected type",
	SynUnknownMember:            "Unknown declaration member",
	SemUnknownIdent:             "Unknown identifier",
	SemUnknownType:              "Unknown type",
	SemRedeclared:               "Redeclaration",
	SemTypeMismatch:             "Type mismatch",
	SemArity:                    "Wrong number of arguments",
	SemNotCallable:              "Callee is not a function",
	SemBadCondition:             "Condition is not boolean",
	SemBreakOutsideLoop:         "break outside of a loop",
	SemReturnInCoroutine:        "return inside a coroutine",
	SemCoroutineNotTask:         "Coroutine must return a task type",
	SemNotAwaitable:             "Expression is not awaitable",
	SemNoReturnValue:            "Promise has no return_value",
	SemNoReturnVoid:             "Promise has no return_void",
	SemNoYieldValue:             "Promise has no yield_value",
	SemNotAssignable:            "Expression is not assignable",
	SemIncompletePromise:        "Promise declaration is incomplete",
	SemCoroutineInLocation:      "Suspend expression used as a location",
	IOReadError:                 "Cannot read file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
