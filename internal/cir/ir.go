package cir

import (
	"corogen/internal/source"
)

// Value is an SSA value: an op result or a function argument. A nil *Value
// means "no value" (void calls, failed lowering).
type Value struct {
	ID   int
	Type *Type
	Def  *Op // nil for function arguments
	Arg  int // argument index when Def is nil
}

// OpKind enumerates op kinds.
type OpKind uint8

const (
	OpConst OpKind = iota
	OpAlloca
	OpLoad
	OpStore
	OpCall
	OpBinOp
	OpUnary
	OpCmp
	OpCast
	OpIf
	OpWhile
	OpScope
	OpAwait
	// terminators
	OpYield
	OpCondition
	OpBr
	OpBreak
	OpReturn
)

var opNames = [...]string{
	OpConst:     "cir.const",
	OpAlloca:    "cir.alloca",
	OpLoad:      "cir.load",
	OpStore:     "cir.store",
	OpCall:      "cir.call",
	OpBinOp:     "cir.binop",
	OpUnary:     "cir.unary",
	OpCmp:       "cir.cmp",
	OpCast:      "cir.cast",
	OpIf:        "cir.if",
	OpWhile:     "cir.while",
	OpScope:     "cir.scope",
	OpAwait:     "cir.await",
	OpYield:     "cir.yield",
	OpCondition: "cir.condition",
	OpBr:        "cir.br",
	OpBreak:     "cir.break",
	OpReturn:    "cir.return",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return "cir.unknown"
}

// IsTerminator reports whether ops of kind k end a block.
func (k OpKind) IsTerminator() bool {
	return k >= OpYield
}

// AwaitKind labels a suspend point.
type AwaitKind uint8

const (
	AwaitInit AwaitKind = iota
	AwaitUser
	AwaitYield
	AwaitFinal
)

func (k AwaitKind) String() string {
	switch k {
	case AwaitInit:
		return "init"
	case AwaitUser:
		return "user"
	case AwaitYield:
		return "yield"
	case AwaitFinal:
		return "final"
	}
	return "unknown"
}

// ConstKind selects the constant payload.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstNull
)

// ConstAttr is the payload of OpConst.
type ConstAttr struct {
	Kind ConstKind
	Int  int64
	Bool bool
}

// AllocaAttr is the payload of OpAlloca.
type AllocaAttr struct {
	Name  string
	Elem  *Type
	Align int
	Init  bool
}

// CallAttr is the payload of OpCall.
type CallAttr struct {
	Callee *Func
}

// Region index names for the structured ops.
const (
	RegionThen = 0
	RegionElse = 1

	RegionCond = 0
	RegionBody = 1

	RegionReady   = 0
	RegionSuspend = 1
	RegionResume  = 2
)

// Op is one operation. Payload fields are meaningful only for their kinds.
type Op struct {
	Kind     OpKind
	Loc      source.Span
	Operands []*Value
	Result   *Value
	Regions  []*Region
	Parent   *Block

	Const  ConstAttr
	Alloca AllocaAttr
	Call   CallAttr
	Pred   string    // OpBinOp, OpUnary, OpCmp and OpCast mnemonic
	Await  AwaitKind // OpAwait
	Target *Block    // OpBr
}

// Region is a list of blocks owned by an op or a function.
type Region struct {
	Blocks []*Block
	Parent *Op   // nil for a function body
	Func   *Func // owning function
}

// Block is a straight-line list of ops ending with a terminator.
type Block struct {
	Ops    []*Op
	Parent *Region
}

// Terminator returns the last op if it is a terminator, else nil.
func (b *Block) Terminator() *Op {
	if b == nil || len(b.Ops) == 0 {
		return nil
	}
	last := b.Ops[len(b.Ops)-1]
	if !last.Kind.IsTerminator() {
		return nil
	}
	return last
}

// Terminated reports whether b ends with a terminator.
func (b *Block) Terminated() bool {
	return b.Terminator() != nil
}

// Empty reports whether b holds no ops.
func (b *Block) Empty() bool {
	return b == nil || len(b.Ops) == 0
}

func (b *Block) indexOf(op *Op) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}
	return -1
}

// Entry returns the first block of r.
func (r *Region) Entry() *Block {
	if r == nil || len(r.Blocks) == 0 {
		return nil
	}
	return r.Blocks[0]
}

// Last returns the last block of r.
func (r *Region) Last() *Block {
	if r == nil || len(r.Blocks) == 0 {
		return nil
	}
	return r.Blocks[len(r.Blocks)-1]
}

// RemoveBlock drops b from r.
func (r *Region) RemoveBlock(b *Block) {
	for i, blk := range r.Blocks {
		if blk == b {
			r.Blocks = append(r.Blocks[:i], r.Blocks[i+1:]...)
			b.Parent = nil
			return
		}
	}
}

// Func is a function definition or declaration.
type Func struct {
	Name      string
	Type      *Type
	Args      []*Value
	Body      *Region // nil for declarations
	Builtin   bool
	Coroutine bool
	Order     int // position among definitions, used for printing

	nextValue int
}

// IsDeclaration reports whether f has no body.
func (f *Func) IsDeclaration() bool { return f.Body == nil }

func (f *Func) newValue(t *Type, def *Op) *Value {
	v := &Value{ID: f.nextValue, Type: t, Def: def}
	f.nextValue++
	return v
}

// Walk visits every op of f in textual order, descending into regions.
func (f *Func) Walk(fn func(*Op)) {
	if f.Body != nil {
		walkRegion(f.Body, fn)
	}
}

func walkRegion(r *Region, fn func(*Op)) {
	for _, b := range r.Blocks {
		for _, op := range b.Ops {
			fn(op)
			for _, sub := range op.Regions {
				walkRegion(sub, fn)
			}
		}
	}
}

// EnclosingOp returns the structured op whose region contains op, or nil at
// function level.
func (op *Op) EnclosingOp() *Op {
	if op.Parent == nil || op.Parent.Parent == nil {
		return nil
	}
	return op.Parent.Parent.Parent
}
