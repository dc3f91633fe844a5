// Package trace provides a tracing subsystem for corogen.
//
// The trace package records driver passes, per-function lowering and the
// individual steps of coroutine body lowering so that a lowering run can be
// inspected after the fact.
//
// # Usage
//
//	corogen lower --trace=- --trace-level=debug task.coro
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer kept in memory (tests, crash dumps)
//   - MultiTracer: fan-out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-function lowering
//   - LevelDebug: everything including coroutine lowering steps
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "lower", parentID)
//	defer span.End("")
package trace
