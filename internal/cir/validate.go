package cir

import (
	"errors"
	"fmt"
)

// Builtin names checked on coroutine functions.
const (
	BuiltinCoroID    = "__builtin_coro_id"
	BuiltinCoroAlloc = "__builtin_coro_alloc"
	BuiltinCoroBegin = "__builtin_coro_begin"
	BuiltinCoroEnd   = "__builtin_coro_end"
	BuiltinCoroSize  = "__builtin_coro_size"
)

// Validate checks module invariants and returns every violation joined.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs() {
		if err := ValidateFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks a single function.
func ValidateFunc(f *Func) error {
	if f.IsDeclaration() {
		return nil
	}
	var errs []error
	if f.Builtin {
		errs = append(errs, errors.New("builtin function has a body"))
	}
	v := &validator{fn: f, defined: make(map[*Value]bool)}
	v.region(f.Body)
	errs = append(errs, v.errs...)
	if f.Coroutine {
		errs = append(errs, validateCoroutine(f)...)
	}
	return errors.Join(errs...)
}

type validator struct {
	fn      *Func
	defined map[*Value]bool
	loops   int
	errs    []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func regionName(r *Region) string {
	if r.Parent == nil {
		return "function body"
	}
	op := r.Parent
	for i, sub := range op.Regions {
		if sub != r {
			continue
		}
		switch op.Kind {
		case OpIf:
			if i == RegionElse {
				return "cir.if else region"
			}
			return "cir.if then region"
		case OpWhile:
			if i == RegionCond {
				return "cir.while cond region"
			}
			return "cir.while body region"
		case OpAwait:
			return fmt.Sprintf("cir.await %s region", [...]string{"ready", "suspend", "resume"}[min(i, 2)])
		}
	}
	return op.Kind.String() + " region"
}

// wantsCondition reports whether r must end with cir.condition.
func wantsCondition(r *Region) bool {
	if r.Parent == nil {
		return false
	}
	switch r.Parent.Kind {
	case OpWhile:
		return len(r.Parent.Regions) > 0 && r.Parent.Regions[RegionCond] == r
	case OpAwait:
		return len(r.Parent.Regions) > 0 && r.Parent.Regions[RegionReady] == r
	}
	return false
}

func (v *validator) region(r *Region) {
	name := regionName(r)
	if len(r.Blocks) == 0 {
		v.errorf("%s has no blocks", name)
		return
	}
	for bi, b := range r.Blocks {
		if b.Parent != r {
			v.errorf("%s: block %d has a stale parent", name, bi)
		}
		if len(b.Ops) == 0 {
			v.errorf("%s: block %d is empty", name, bi)
			continue
		}
		for i, op := range b.Ops {
			last := i == len(b.Ops)-1
			if op.Parent != b {
				v.errorf("%s: %s has a stale parent", name, op.Kind)
			}
			if op.Kind.IsTerminator() && !last {
				v.errorf("%s: terminator %s is not the last op of block %d", name, op.Kind, bi)
			}
			if last && !op.Kind.IsTerminator() {
				v.errorf("%s: block %d is not terminated (ends with %s)", name, bi, op.Kind)
			}
			v.op(op, r, name)
		}
	}
}

func (v *validator) op(op *Op, r *Region, name string) {
	for i, operand := range op.Operands {
		if operand == nil {
			v.errorf("%s: %s operand %d is null", name, op.Kind, i)
			continue
		}
		if operand.Def == nil {
			if operand.Arg < 0 || operand.Arg >= len(v.fn.Args) || v.fn.Args[operand.Arg] != operand {
				v.errorf("%s: %s uses an argument of another function", name, op.Kind)
			}
			continue
		}
		if !v.defined[operand] {
			v.errorf("%s: %s uses a value before its definition", name, op.Kind)
		}
	}
	if op.Result != nil {
		v.defined[op.Result] = true
	}

	cond := wantsCondition(r)
	switch op.Kind {
	case OpCondition:
		if !cond {
			v.errorf("%s: cir.condition outside a condition region", name)
		}
	case OpYield:
		if r.Parent == nil {
			v.errorf("function body: cir.yield at function level")
		}
		if cond {
			v.errorf("%s: must end with cir.condition, found cir.yield", name)
		}
	case OpBr:
		if op.Target == nil || op.Target.Parent != r {
			v.errorf("%s: cir.br leaves its region", name)
		}
	case OpBreak:
		if v.loops == 0 {
			v.errorf("%s: cir.break outside a loop", name)
		}
	case OpStore:
		if len(op.Operands) == 2 && op.Operands[0] != nil && op.Operands[1] != nil &&
			!op.Operands[1].Type.Elem.Equal(op.Operands[0].Type) {
			v.errorf("%s: cir.store of %s through %s", name, op.Operands[0].Type, op.Operands[1].Type)
		}
	case OpCall:
		v.call(op, name)
	case OpAwait:
		if len(op.Regions) != 3 {
			v.errorf("%s: cir.await has %d regions, want 3", name, len(op.Regions))
			return
		}
	case OpIf:
		if len(op.Regions) < 1 || len(op.Regions) > 2 {
			v.errorf("%s: cir.if has %d regions", name, len(op.Regions))
			return
		}
	case OpWhile:
		if len(op.Regions) != 2 {
			v.errorf("%s: cir.while has %d regions, want 2", name, len(op.Regions))
			return
		}
		v.region(op.Regions[RegionCond])
		v.loops++
		v.region(op.Regions[RegionBody])
		v.loops--
		return
	}
	if cond && op.Kind.IsTerminator() && op.Kind != OpCondition {
		v.errorf("%s: must end with cir.condition, found %s", name, op.Kind)
	}
	for _, sub := range op.Regions {
		if sub.Parent != op {
			v.errorf("%s: nested region of %s has a stale parent", name, op.Kind)
		}
		v.region(sub)
	}
}

func (v *validator) call(op *Op, name string) {
	callee := op.Call.Callee
	if callee == nil {
		v.errorf("%s: cir.call without callee", name)
		return
	}
	params := callee.Type.Params
	if len(params) != len(op.Operands) {
		v.errorf("%s: call to %s passes %d arguments, want %d", name, callee.Name, len(op.Operands), len(params))
		return
	}
	for i, p := range params {
		if a := op.Operands[i]; a != nil && !a.Type.Equal(p) {
			v.errorf("%s: call to %s argument %d has type %s, want %s", name, callee.Name, i, a.Type, p)
		}
	}
}

func validateCoroutine(f *Func) []error {
	var ids, begins, inits, finals int
	f.Walk(func(op *Op) {
		switch op.Kind {
		case OpCall:
			if op.Call.Callee == nil {
				return
			}
			switch op.Call.Callee.Name {
			case BuiltinCoroID:
				ids++
			case BuiltinCoroBegin:
				begins++
			}
		case OpAwait:
			switch op.Await {
			case AwaitInit:
				inits++
			case AwaitFinal:
				finals++
			}
		}
	})
	var errs []error
	if ids != 1 {
		errs = append(errs, fmt.Errorf("coroutine has %d %s calls, want 1", ids, BuiltinCoroID))
	}
	if begins != 1 {
		errs = append(errs, fmt.Errorf("coroutine has %d %s calls, want 1", begins, BuiltinCoroBegin))
	}
	if inits > 1 {
		errs = append(errs, fmt.Errorf("coroutine has %d init suspends", inits))
	}
	if finals > 1 {
		errs = append(errs, fmt.Errorf("coroutine has %d final suspends", finals))
	}
	return errs
}
