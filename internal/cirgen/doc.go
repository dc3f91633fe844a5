// Package cirgen lowers checked function bodies into CIR.
//
// Each definition is lowered by its own Function, which owns the builder, the
// local declaration map, the lexical scope stack and, for coroutines, the
// per-function coroutine state. Coroutine bodies go through a fixed sequence
// of phases:
//
//	coro.id -> coro.alloc -> frame alloc -> coro.begin -> parameter copies ->
//	promise -> get_return_object -> initial suspend -> body -> fallthrough ->
//	final suspend
//
// Every suspend point becomes one cir.await op with ready, suspend and resume
// regions. Functions can be lowered concurrently against one Generator; the
// module serializes callee declarations.
package cirgen
