package ast

import "corogen/internal/source"

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtCompound is a braced statement list.
	StmtCompound StmtKind = iota
	// StmtDecl declares one local variable.
	StmtDecl
	// StmtExpr evaluates an expression for side effects.
	StmtExpr
	// StmtIf is if/else.
	StmtIf
	// StmtWhile is a while loop.
	StmtWhile
	// StmtBreak leaves the innermost loop.
	StmtBreak
	// StmtReturn is a plain return (not allowed in coroutines).
	StmtReturn
	// StmtCoreturn is co_return, explicit or synthesized for fallthrough.
	StmtCoreturn
	// StmtCoroutineBody wraps a coroutine's user body with its synthesized parts.
	StmtCoroutineBody
	// StmtNull is an empty statement.
	StmtNull
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtCompound:
		return "Compound"
	case StmtDecl:
		return "Decl"
	case StmtExpr:
		return "Expr"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtBreak:
		return "Break"
	case StmtReturn:
		return "Return"
	case StmtCoreturn:
		return "Coreturn"
	case StmtCoroutineBody:
		return "CoroutineBody"
	case StmtNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// Stmt represents a statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData // Kind-specific payload
}

func (*Stmt) node() {}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// CompoundData holds data for StmtCompound.
type CompoundData struct {
	Stmts []*Stmt
}

// DeclData holds data for StmtDecl.
type DeclData struct {
	Var *VarDecl
}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then *Stmt
	Else *Stmt // nil without else
}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Stmt
}

// BreakData holds data for StmtBreak.
type BreakData struct{}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

// CoreturnData holds data for StmtCoreturn.
type CoreturnData struct {
	Operand     *Expr // nil for `co_return;`
	PromiseCall *Expr // promise.return_value(operand) or promise.return_void()
	Implicit    bool  // synthesized fallthrough handler
}

// CoroutineBodyData holds data for StmtCoroutineBody.
type CoroutineBodyData struct {
	Body         *Stmt
	PromiseDecl  *Stmt // StmtDecl of __promise
	InitSuspend  *Stmt // StmtExpr wrapping the initial suspend point
	FinalSuspend *Stmt // StmtExpr wrapping the final suspend point

	// FallthroughHandler is the implicit `co_return;`, present iff the promise has return_void.
	FallthroughHandler *Stmt
	// ExceptionHandler calls promise.unhandled_exception(), present iff declared.
	ExceptionHandler *Stmt

	Allocate    *Expr // operator new(__builtin_coro_size())
	ReturnValue *Expr // promise.get_return_object()
	// ReturnStmt returns the return object; nil iff the function returns void.
	ReturnStmt *Stmt
	// ReturnStmtOnAllocFailure is present iff the promise declares
	// get_return_object_on_allocation_failure.
	ReturnStmtOnAllocFailure *Stmt

	// ParamMoves holds one StmtDecl per parameter copy.
	ParamMoves []*Stmt
	Promise    *VarDecl
}

func (*CompoundData) stmtData()      {}
func (*DeclData) stmtData()          {}
func (*ExprStmtData) stmtData()      {}
func (*IfData) stmtData()            {}
func (*WhileData) stmtData()         {}
func (*BreakData) stmtData()         {}
func (*ReturnData) stmtData()        {}
func (*CoreturnData) stmtData()      {}
func (*CoroutineBodyData) stmtData() {}

// NewStmt allocates a statement node.
func NewStmt(kind StmtKind, span source.Span, data StmtData) *Stmt {
	return &Stmt{Kind: kind, Span: span, Data: data}
}

// NewExprStmt wraps e into a StmtExpr.
func NewExprStmt(e *Expr) *Stmt {
	return NewStmt(StmtExpr, e.Span, &ExprStmtData{Expr: e})
}

// NewDeclStmt wraps v into a StmtDecl.
func NewDeclStmt(v *VarDecl) *Stmt {
	return NewStmt(StmtDecl, v.Span, &DeclData{Var: v})
}
