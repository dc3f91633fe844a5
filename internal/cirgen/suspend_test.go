package cirgen

import (
	"testing"

	"corogen/internal/ast"
	"corogen/internal/cir"
)

func TestResumeValueIsStashedAndReloaded(t *testing.T) {
	mod, _ := mustLower(t, `
task f() {
  int x = co_await A();
  co_return x;
}
`)
	fn := lookup(t, mod, "f")
	slots := allocaNamed(fn, resumeRValName)
	if len(slots) != 1 {
		t.Fatalf("got %d resume slots, want 1", len(slots))
	}
	slot := slots[0]
	if slot.Parent != fn.Body.Entry() {
		t.Error("resume slot must live in the entry block of the enclosing scope")
	}
	if slot.Alloca.Align != 1 || !slot.Alloca.Elem.Equal(cir.S32Ty) {
		t.Errorf("resume slot = %+v", slot.Alloca)
	}

	user := collect(fn, cir.OpAwait)[1]
	if user.Await != cir.AwaitUser {
		t.Fatalf("second await is %s, want user", user.Await)
	}
	resume := user.Regions[cir.RegionResume].Entry().Ops
	var stored bool
	for _, op := range resume {
		if op.Kind == cir.OpStore && op.Operands[1] == slot.Result {
			stored = true
		}
	}
	if !stored {
		t.Error("resume region must store the result into the slot")
	}
	if last := resume[len(resume)-1]; last.Kind != cir.OpYield {
		t.Errorf("resume region ends with %s, want cir.yield", last.Kind)
	}

	ops := user.Parent.Ops
	idx := -1
	for i, op := range ops {
		if op == user {
			idx = i
		}
	}
	next := ops[idx+1]
	if next.Kind != cir.OpLoad || next.Operands[0] != slot.Result {
		t.Errorf("op after the await is %s, want a reload of the slot", next.Kind)
	}
}

func TestSuspendRegions(t *testing.T) {
	mod, _ := mustLower(t, `
task f() {
  co_await A();
  co_return 0;
}
`)
	fn := lookup(t, mod, "f")
	user := collect(fn, cir.OpAwait)[1]
	if len(user.Regions) != 3 {
		t.Fatalf("await has %d regions", len(user.Regions))
	}
	ready := user.Regions[cir.RegionReady].Entry()
	if term := ready.Terminator(); term == nil || term.Kind != cir.OpCondition {
		t.Error("ready region must end in cir.condition")
	}
	cond := ready.Terminator().Operands[0].Def
	if cond.Kind != cir.OpCall || cond.Call.Callee.Name != "A::await_ready" {
		t.Error("ready condition must come from await_ready")
	}
	suspend := user.Regions[cir.RegionSuspend].Entry()
	var suspendCall *cir.Op
	for _, op := range suspend.Ops {
		if op.Kind == cir.OpCall {
			suspendCall = op
		}
	}
	if suspendCall == nil || suspendCall.Call.Callee.Name != "A::await_suspend" {
		t.Fatal("suspend region must call await_suspend")
	}
	if frame := suspendCall.Operands[1].Def; frame.Call.Callee.Name != cir.BuiltinCoroBegin {
		t.Error("await_suspend must receive the frame from __builtin_coro_begin")
	}
	if term := suspend.Terminator(); term == nil || term.Kind != cir.OpYield {
		t.Error("suspend region must end in cir.yield")
	}
}

func TestCommonExpressionEvaluatedOnce(t *testing.T) {
	res := checkSource(t, `
task f() {
  co_yield 3;
  co_return 0;
}
`)
	f := prepare(t, res, "f", DefaultOptions())
	if err := catch(f.emitBody); err != nil {
		t.Fatal(err)
	}
	if len(f.opaqueLValues) != 0 {
		t.Errorf("%d opaque values still bound after lowering", len(f.opaqueLValues))
	}

	if n := countCalls(f.fn, "task::promise_type::yield_value"); n != 1 {
		t.Errorf("yield_value called %d times, want 1", n)
	}
	var yield *cir.Op
	for _, op := range collect(f.fn, cir.OpAwait) {
		if op.Await == cir.AwaitYield {
			yield = op
		}
	}
	if yield == nil {
		t.Fatal("co_yield must produce a yield await")
	}
	var this []*cir.Value
	for _, r := range yield.Regions {
		for _, op := range r.Entry().Ops {
			if op.Kind == cir.OpCall {
				this = append(this, op.Operands[0])
			}
		}
	}
	if len(this) != 3 {
		t.Fatalf("got %d awaiter calls, want 3", len(this))
	}
	if this[0] != this[1] || this[1] != this[2] {
		t.Error("ready, suspend and resume must share one awaiter object")
	}
	if this[0].Def.Kind != cir.OpAlloca {
		t.Error("awaiter object must be materialized in a temporary")
	}
}

func TestOpaqueUnboundAfterFailure(t *testing.T) {
	res := checkSource(t, `
job f() {
  co_await Veto();
}
`)
	f := prepare(t, res, "f", DefaultOptions())
	var opaque *ast.Expr
	ast.Inspect(res.Funcs["f"].CoroutineBody().Body, func(n ast.Node) bool {
		if e, ok := n.(*ast.Expr); ok && e.Suspend() != nil {
			opaque = e.Suspend().Opaque
		}
		return true
	})
	if opaque == nil {
		t.Fatal("no suspend point found")
	}
	if err := catch(f.emitBody); err == nil {
		t.Fatal("bool await_suspend must fail")
	}
	if f.isOpaqueBound(opaque) {
		t.Error("opaque value must be unbound after a failed suspend")
	}
}

func TestLocalAwaiterIsNotCopied(t *testing.T) {
	mod, _ := mustLower(t, `
job f() {
  V v;
  co_await v;
}
`)
	fn := lookup(t, mod, "f")
	if got := len(allocaNamed(fn, "ref.tmp")); got != 2 {
		t.Errorf("got %d temporaries, want one per implicit suspend", got)
	}
	local := allocaNamed(fn, "v")
	if len(local) != 1 {
		t.Fatal("local awaiter slot missing")
	}
	user := collect(fn, cir.OpAwait)[1]
	ready := user.Regions[cir.RegionReady].Entry().Ops[0]
	if ready.Kind != cir.OpCall || ready.Operands[0] != local[0].Result {
		t.Error("an lvalue operand must be awaited in place")
	}
}
