package cirgen

import (
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

type scopeKind uint8

const (
	scopeFunction scopeKind = iota
	scopeBlock
	scopeIfArm
	scopeLoopCond
	scopeLoopBody
)

// lexicalScope tracks one region being filled: its entry block, its shared
// return block and whether a co_return was lowered inside it.
type lexicalScope struct {
	kind     scopeKind
	parent   *lexicalScope
	region   *cir.Region
	entry    *cir.Block
	retBlock *cir.Block

	coreturn bool
	// sawBreak is set on loop bodies left by a reachable break.
	sawBreak bool
}

func (s *lexicalScope) entryBlock() *cir.Block { return s.entry }

func (s *lexicalScope) hasCoreturn() bool { return s.coreturn }

// setCoreturn marks s and every enclosing scope of the same function.
func (s *lexicalScope) setCoreturn() {
	for it := s; it != nil; it = it.parent {
		it.coreturn = true
	}
}

// getOrCreateRetBlock returns the block every return in s branches to. It
// is appended to the region when the scope closes.
func (s *lexicalScope) getOrCreateRetBlock() *cir.Block {
	if s.retBlock == nil {
		s.retBlock = &cir.Block{Parent: s.region}
	}
	return s.retBlock
}

func (s *lexicalScope) enclosingLoop() *lexicalScope {
	for it := s; it != nil && it.kind != scopeFunction; it = it.parent {
		if it.kind == scopeLoopBody {
			return it
		}
	}
	return nil
}

// pushScope opens a scope for region; the builder must already be in its
// entry block.
func (f *Function) pushScope(kind scopeKind, region *cir.Region) *lexicalScope {
	s := &lexicalScope{
		kind:   kind,
		parent: f.curLexScope,
		region: region,
		entry:  region.Entry(),
	}
	f.curLexScope = s
	return s
}

// popScope terminates the current block of the scope and finalises its
// return block.
func (f *Function) popScope() {
	s := f.curLexScope
	if s == nil {
		panic(cirerr.Internal("scope", "pop without an open scope"))
	}
	b := f.builder
	if blk := b.Block(); blk != nil && blk.Parent == s.region && !blk.Terminated() {
		switch {
		case blk.Empty() && blk != s.entry:
			s.region.RemoveBlock(blk)
		case s.kind == scopeFunction:
			f.emitReturn()
		case s.kind == scopeLoopCond:
			panic(cirerr.Internal("scope", "loop condition region left without cir.condition"))
		default:
			b.Yield()
		}
	}
	if s.retBlock != nil {
		g := b.Guard()
		s.region.Blocks = append(s.region.Blocks, s.retBlock)
		b.SetInsertionPointToEnd(s.retBlock)
		f.emitReturn()
		g.Restore()
	}
	f.curLexScope = s.parent
}

// emitReturn leaves the function from the insertion point.
func (f *Function) emitReturn() {
	b := f.builder
	if f.fn.Coroutine {
		f.emitCoroEndBuiltinCall(b.NullPtr(cir.VoidPtrTy))
	}
	if f.returnValue != nil {
		b.Return(b.Load(f.returnValue))
		return
	}
	b.Return(nil)
}
