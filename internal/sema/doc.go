// Package sema resolves names and types in a parsed file and synthesizes the
// coroutine parts lowering relies on.
//
// For every coroutine the user body is wrapped in a StmtCoroutineBody whose
// data carries the promise declaration, the implicit initial and final
// suspends, the fallthrough and exception handlers, the allocation call, the
// return object and one copy declaration per parameter. Every suspend point is
// expanded into its common, ready, suspend and resume expressions sharing a
// single opaque value.
package sema
