package cir

import (
	"fmt"

	"corogen/internal/source"
)

// InsertPoint is a position inside a block: before Before, or at the end
// when Before is nil.
type InsertPoint struct {
	Block  *Block
	Before *Op
}

// IsSet reports whether ip points into a block.
func (ip InsertPoint) IsSet() bool { return ip.Block != nil }

// Builder creates ops at an insertion point inside one function.
type Builder struct {
	fn  *Func
	ip  InsertPoint
	loc source.Span
}

// NewBuilder returns a builder positioned at the end of fn's entry block.
func NewBuilder(fn *Func) *Builder {
	b := &Builder{fn: fn}
	if fn.Body != nil {
		b.SetInsertionPointToEnd(fn.Body.Entry())
	}
	return b
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.fn }

// SetLoc sets the location attached to subsequently created ops.
func (b *Builder) SetLoc(sp source.Span) { b.loc = sp }

// Loc returns the current location.
func (b *Builder) Loc() source.Span { return b.loc }

// InsertionPoint returns the current insertion point.
func (b *Builder) InsertionPoint() InsertPoint { return b.ip }

// RestoreInsertionPoint moves the builder back to ip.
func (b *Builder) RestoreInsertionPoint(ip InsertPoint) { b.ip = ip }

// SetInsertionPointToEnd positions the builder after the last op of blk.
func (b *Builder) SetInsertionPointToEnd(blk *Block) {
	b.ip = InsertPoint{Block: blk}
}

// SetInsertionPointBefore positions the builder right before op.
func (b *Builder) SetInsertionPointBefore(op *Op) {
	b.ip = InsertPoint{Block: op.Parent, Before: op}
}

// Block returns the block the builder inserts into.
func (b *Builder) Block() *Block { return b.ip.Block }

// InsertionGuard restores a saved insertion point.
type InsertionGuard struct {
	b  *Builder
	ip InsertPoint
}

// Guard saves the insertion point; call Restore (usually deferred) to go back.
func (b *Builder) Guard() InsertionGuard {
	return InsertionGuard{b: b, ip: b.ip}
}

// Restore resets the builder to the saved insertion point.
func (g InsertionGuard) Restore() {
	g.b.ip = g.ip
}

// CreateBlock appends a new block to r and moves the insertion point to it.
func (b *Builder) CreateBlock(r *Region) *Block {
	blk := &Block{Parent: r}
	r.Blocks = append(r.Blocks, blk)
	b.SetInsertionPointToEnd(blk)
	return blk
}

// BestAllocaInsertPoint returns the position after the leading allocas of blk.
func (b *Builder) BestAllocaInsertPoint(blk *Block) InsertPoint {
	for _, op := range blk.Ops {
		if op.Kind != OpAlloca {
			return InsertPoint{Block: blk, Before: op}
		}
	}
	return InsertPoint{Block: blk}
}

func (b *Builder) insert(op *Op) *Op {
	blk := b.ip.Block
	if blk == nil {
		panic(fmt.Sprintf("cir: %s created without an insertion point", op.Kind))
	}
	op.Parent = blk
	op.Loc = b.loc
	if b.ip.Before == nil {
		blk.Ops = append(blk.Ops, op)
		return op
	}
	idx := blk.indexOf(b.ip.Before)
	if idx < 0 {
		panic(fmt.Sprintf("cir: insertion point %s is not in its block", b.ip.Before.Kind))
	}
	blk.Ops = append(blk.Ops, nil)
	copy(blk.Ops[idx+1:], blk.Ops[idx:])
	blk.Ops[idx] = op
	return op
}

func (b *Builder) create(kind OpKind, result *Type, operands ...*Value) *Op {
	op := &Op{Kind: kind, Operands: operands}
	if result != nil && !result.IsVoid() {
		op.Result = b.fn.newValue(result, op)
	}
	return b.insert(op)
}

// ConstInt creates an integer constant of type t.
func (b *Builder) ConstInt(t *Type, v int64) *Value {
	op := b.create(OpConst, t)
	op.Const = ConstAttr{Kind: ConstInt, Int: v}
	return op.Result
}

// ConstBool creates a !cir.bool constant.
func (b *Builder) ConstBool(v bool) *Value {
	op := b.create(OpConst, BoolTy)
	op.Const = ConstAttr{Kind: ConstBool, Bool: v}
	return op.Result
}

// NullPtr creates a null pointer constant of pointer type t.
func (b *Builder) NullPtr(t *Type) *Value {
	op := b.create(OpConst, t)
	op.Const = ConstAttr{Kind: ConstNull}
	return op.Result
}

// Alloca creates a stack slot for elem at the insertion point.
func (b *Builder) Alloca(name string, elem *Type, align int, init bool) *Value {
	op := b.create(OpAlloca, PtrTo(elem))
	op.Alloca = AllocaAttr{Name: name, Elem: elem, Align: align, Init: init}
	return op.Result
}

// AllocaAt creates a stack slot at ip without moving the builder.
func (b *Builder) AllocaAt(ip InsertPoint, name string, elem *Type, align int) *Value {
	g := b.Guard()
	defer g.Restore()
	b.ip = ip
	return b.Alloca(name, elem, align, false)
}

// Load reads through a pointer.
func (b *Builder) Load(ptr *Value) *Value {
	return b.create(OpLoad, ptr.Type.Elem, ptr).Result
}

// Store writes v through ptr.
func (b *Builder) Store(v, ptr *Value) *Op {
	return b.create(OpStore, nil, v, ptr)
}

// Call calls callee. The result is nil for void callees.
func (b *Builder) Call(callee *Func, args ...*Value) *Op {
	op := b.create(OpCall, callee.Type.Result, args...)
	op.Call = CallAttr{Callee: callee}
	return op
}

// BinOp creates an arithmetic op (add, sub, mul, div).
func (b *Builder) BinOp(pred string, x, y *Value) *Value {
	op := b.create(OpBinOp, x.Type, x, y)
	op.Pred = pred
	return op.Result
}

// Unary creates minus or not.
func (b *Builder) Unary(pred string, x *Value) *Value {
	op := b.create(OpUnary, x.Type, x)
	op.Pred = pred
	return op.Result
}

// Cmp creates a comparison yielding !cir.bool.
func (b *Builder) Cmp(pred string, x, y *Value) *Value {
	op := b.create(OpCmp, BoolTy, x, y)
	op.Pred = pred
	return op.Result
}

// Cast converts x to type to.
func (b *Builder) Cast(kind string, x *Value, to *Type) *Value {
	op := b.create(OpCast, to, x)
	op.Pred = kind
	return op.Result
}

// RegionFunc fills a region; the builder is positioned in its entry block.
type RegionFunc func() error

func (b *Builder) buildRegion(op *Op, fill RegionFunc) error {
	r := &Region{Parent: op, Func: b.fn}
	op.Regions = append(op.Regions, r)
	g := b.Guard()
	defer g.Restore()
	b.CreateBlock(r)
	if fill == nil {
		return nil
	}
	return fill()
}

// If creates a cir.if; elseFn may be nil for an if without else region.
// The builder ends up after the op.
func (b *Builder) If(cond *Value, thenFn, elseFn RegionFunc) (*Op, error) {
	op := b.create(OpIf, nil, cond)
	if err := b.buildRegion(op, thenFn); err != nil {
		return op, err
	}
	if elseFn != nil {
		if err := b.buildRegion(op, elseFn); err != nil {
			return op, err
		}
	}
	return op, nil
}

// While creates a cir.while with a condition and a body region.
func (b *Builder) While(condFn, bodyFn RegionFunc) (*Op, error) {
	op := b.create(OpWhile, nil)
	if err := b.buildRegion(op, condFn); err != nil {
		return op, err
	}
	return op, b.buildRegion(op, bodyFn)
}

// Scope creates a cir.scope with one region.
func (b *Builder) Scope(bodyFn RegionFunc) (*Op, error) {
	op := b.create(OpScope, nil)
	return op, b.buildRegion(op, bodyFn)
}

// Await creates a cir.await of the given kind with ready, suspend and
// resume regions.
func (b *Builder) Await(kind AwaitKind, readyFn, suspendFn, resumeFn RegionFunc) (*Op, error) {
	op := b.create(OpAwait, nil)
	op.Await = kind
	for _, fill := range []RegionFunc{readyFn, suspendFn, resumeFn} {
		if err := b.buildRegion(op, fill); err != nil {
			return op, err
		}
	}
	return op, nil
}

// Yield returns control to the parent op.
func (b *Builder) Yield() *Op { return b.create(OpYield, nil) }

// Condition terminates a condition region.
func (b *Builder) Condition(v *Value) *Op { return b.create(OpCondition, nil, v) }

// Br branches to target, which must be in the same region.
func (b *Builder) Br(target *Block) *Op {
	op := b.create(OpBr, nil)
	op.Target = target
	return op
}

// Break leaves the innermost loop.
func (b *Builder) Break() *Op { return b.create(OpBreak, nil) }

// Return returns from the function; v is nil for void.
func (b *Builder) Return(v *Value) *Op {
	if v == nil {
		return b.create(OpReturn, nil)
	}
	return b.create(OpReturn, nil, v)
}
