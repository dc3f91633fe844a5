package cirgen

import (
	"go.uber.org/zap"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// coroPhase is the position of the body lowering in its fixed sequence.
type coroPhase uint8

const (
	phaseStart coroPhase = iota
	phaseIdentityCreated
	phaseAllocElisionTested
	phaseFrameBegun
	phaseParamsCopied
	phasePromiseConstructed
	phaseReturnObjectMaterialized
	phaseInitialSuspended
	phaseUserBodyLowered
	phaseFallthroughResolved
	phaseFinalSuspendResolved
	phaseFinalSuspendSkipped
	phaseDone
)

var phaseNames = [...]string{
	phaseStart:                    "start",
	phaseIdentityCreated:          "identity-created",
	phaseAllocElisionTested:       "alloc-elision-tested",
	phaseFrameBegun:               "frame-begun",
	phaseParamsCopied:             "params-copied",
	phasePromiseConstructed:       "promise-constructed",
	phaseReturnObjectMaterialized: "return-object-materialized",
	phaseInitialSuspended:         "initial-suspended",
	phaseUserBodyLowered:          "user-body-lowered",
	phaseFallthroughResolved:      "fallthrough-resolved",
	phaseFinalSuspendResolved:     "final-suspend-resolved",
	phaseFinalSuspendSkipped:      "final-suspend-skipped",
	phaseDone:                     "done",
}

func (p coroPhase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// next reports whether to may follow p.
func (p coroPhase) next(to coroPhase) bool {
	switch p {
	case phaseFallthroughResolved:
		return to == phaseFinalSuspendResolved || to == phaseFinalSuspendSkipped
	case phaseFinalSuspendResolved, phaseFinalSuspendSkipped:
		return to == phaseDone
	case phaseDone:
		return false
	}
	return to == p+1
}

// coroData is the bookkeeping of one coroutine being lowered. It belongs to
// exactly one Function.
type coroData struct {
	phase            coroPhase
	currentAwaitKind cir.AwaitKind

	coroID    *cir.Op
	coroBegin *cir.Value

	// finalSuspendInsPoint is the branch of the most recent co_return.
	finalSuspendInsPoint *cir.Op
	coreturnCount        int
	finalSuspendEmitted  bool

	exceptionHandler *ast.Stmt
}

// createCoroData attaches fresh coroutine state to f.
func (f *Function) createCoroData(coroID *cir.Op) *coroData {
	if f.curCoro != nil {
		panic(cirerr.Internal("coro.body", "coroutine state already exists for @%s", f.fn.Name))
	}
	f.curCoro = &coroData{coroID: coroID}
	f.advance(phaseIdentityCreated)
	return f.curCoro
}

// coro returns the coroutine state; lowering coroutine constructs without it
// is a front-end contract breach.
func (f *Function) coro() *coroData {
	if f.curCoro == nil {
		panic(cirerr.Internal("coro", "coroutine construct outside of a coroutine body"))
	}
	return f.curCoro
}

func (f *Function) advance(to coroPhase) {
	c := f.coro()
	if !c.phase.next(to) {
		panic(cirerr.Internal("coro.body", "phase %s cannot follow %s", to, c.phase))
	}
	c.phase = to
	f.tracePoint("coro:"+to.String(), "")
	Logger().Debug("coroutine phase", zap.String("func", f.fn.Name), zap.Stringer("phase", to))
}
