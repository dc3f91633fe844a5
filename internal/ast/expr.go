package ast

import "corogen/internal/source"

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIntLit is an integer literal.
	ExprIntLit ExprKind = iota
	// ExprBoolLit is true/false.
	ExprBoolLit
	// ExprNullPtr is nullptr.
	ExprNullPtr
	// ExprDeclRef references a variable.
	ExprDeclRef
	// ExprCall calls a free function.
	ExprCall
	// ExprMemberCall calls a member function on an object.
	ExprMemberCall
	// ExprBuiltinCall calls a compiler builtin such as __builtin_coro_frame.
	ExprBuiltinCall
	// ExprConstruct default-constructs a record in place.
	ExprConstruct
	// ExprUnary is a unary operator.
	ExprUnary
	// ExprBinary is a binary operator.
	ExprBinary
	// ExprAssign is simple assignment.
	ExprAssign
	// ExprParen is a parenthesized expression.
	ExprParen
	// ExprImplicitCast is a conversion inserted by sema.
	ExprImplicitCast
	// ExprInitList is a braced initializer.
	ExprInitList
	// ExprOpaqueValue stands for a value computed once elsewhere.
	ExprOpaqueValue
	// ExprCoawait is co_await (explicit, or an implicit initial/final suspend).
	ExprCoawait
	// ExprCoyield is co_yield.
	ExprCoyield
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "IntLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprNullPtr:
		return "NullPtr"
	case ExprDeclRef:
		return "DeclRef"
	case ExprCall:
		return "Call"
	case ExprMemberCall:
		return "MemberCall"
	case ExprBuiltinCall:
		return "BuiltinCall"
	case ExprConstruct:
		return "Construct"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprAssign:
		return "Assign"
	case ExprParen:
		return "Paren"
	case ExprImplicitCast:
		return "ImplicitCast"
	case ExprInitList:
		return "InitList"
	case ExprOpaqueValue:
		return "OpaqueValue"
	case ExprCoawait:
		return "Coawait"
	case ExprCoyield:
		return "Coyield"
	default:
		return "Unknown"
	}
}

// ValueCategory tells whether an expression designates an object or a value.
type ValueCategory uint8

const (
	RValue ValueCategory = iota
	LValue
)

// Expr represents an expression.
type Expr struct {
	Kind     ExprKind
	Span     source.Span
	Type     *Type // set by sema
	Category ValueCategory
	Data     ExprData
}

func (*Expr) node() {}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// IntLitData holds data for ExprIntLit.
type IntLitData struct {
	Value int64
}

// BoolLitData holds data for ExprBoolLit.
type BoolLitData struct {
	Value bool
}

// NullPtrData holds data for ExprNullPtr.
type NullPtrData struct{}

// DeclRefData holds data for ExprDeclRef.
type DeclRefData struct {
	Name string
	Var  *VarDecl // resolved by sema
}

// CallData holds data for ExprCall.
type CallData struct {
	Name string
	Func *FuncDecl // resolved by sema
	Args []*Expr
}

// MemberCallData holds data for ExprMemberCall.
type MemberCallData struct {
	Object *Expr
	Method *FuncDecl
	Args   []*Expr
}

// BuiltinCallData holds data for ExprBuiltinCall.
type BuiltinCallData struct {
	Name string
	Args []*Expr
}

// ConstructData holds data for ExprConstruct.
type ConstructData struct {
	Record *RecordDecl
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op UnaryOp
	X  *Expr
}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryEq
	BinaryNe
)

// IsComparison reports whether op yields bool.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryLt
}

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryLt:
		return "<"
	case BinaryLe:
		return "<="
	case BinaryGt:
		return ">"
	case BinaryGe:
		return ">="
	case BinaryEq:
		return "=="
	case BinaryNe:
		return "!="
	}
	return "?"
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op   BinaryOp
	X, Y *Expr
}

// AssignData holds data for ExprAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

// ParenData holds data for ExprParen.
type ParenData struct {
	X *Expr
}

// CastKind enumerates implicit conversions.
type CastKind uint8

const (
	// CastLValueToRValue loads the value of an lvalue.
	CastLValueToRValue CastKind = iota
	// CastIntToBool compares against zero.
	CastIntToBool
	// CastBoolToInt widens a bool.
	CastBoolToInt
	// CastNoOp changes nothing but the static type.
	CastNoOp
)

// ImplicitCastData holds data for ExprImplicitCast.
type ImplicitCastData struct {
	Cast CastKind
	X    *Expr
}

// InitListData holds data for ExprInitList.
type InitListData struct {
	Elems []*Expr
}

// OpaqueValueData holds data for ExprOpaqueValue.
type OpaqueValueData struct {
	Source *Expr
}

// SuspendData holds data for ExprCoawait and ExprCoyield.
//
// Ready, Suspend and Resume all reference Opaque, which stands for Common:
//
//	auto && x = Common;
//	if (!x.await_ready()) { x.await_suspend(frame); }
//	x.await_resume();
type SuspendData struct {
	Operand  *Expr // operand as written
	Common   *Expr
	Opaque   *Expr // ExprOpaqueValue with Source == Common
	Ready    *Expr
	Suspend  *Expr
	Resume   *Expr
	Implicit bool
}

func (*IntLitData) exprData()       {}
func (*BoolLitData) exprData()      {}
func (*NullPtrData) exprData()      {}
func (*DeclRefData) exprData()      {}
func (*CallData) exprData()         {}
func (*MemberCallData) exprData()   {}
func (*BuiltinCallData) exprData()  {}
func (*ConstructData) exprData()    {}
func (*UnaryData) exprData()        {}
func (*BinaryData) exprData()       {}
func (*AssignData) exprData()       {}
func (*ParenData) exprData()        {}
func (*ImplicitCastData) exprData() {}
func (*InitListData) exprData()     {}
func (*OpaqueValueData) exprData()  {}
func (*SuspendData) exprData()      {}

// NewExpr allocates an expression node.
func NewExpr(kind ExprKind, span source.Span, data ExprData) *Expr {
	return &Expr{Kind: kind, Span: span, Data: data}
}

// IgnoreParens strips any number of enclosing parentheses.
func (e *Expr) IgnoreParens() *Expr {
	for e != nil && e.Kind == ExprParen {
		e = e.Data.(*ParenData).X
	}
	return e
}

// IgnoreImplicit strips parentheses and implicit casts.
func (e *Expr) IgnoreImplicit() *Expr {
	for e != nil {
		switch e.Kind {
		case ExprParen:
			e = e.Data.(*ParenData).X
		case ExprImplicitCast:
			e = e.Data.(*ImplicitCastData).X
		default:
			return e
		}
	}
	return e
}

// Suspend returns the payload of a co_await/co_yield expression, or nil.
func (e *Expr) Suspend() *SuspendData {
	if e == nil || (e.Kind != ExprCoawait && e.Kind != ExprCoyield) {
		return nil
	}
	data, _ := e.Data.(*SuspendData)
	return data
}
