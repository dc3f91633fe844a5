// Package syntax turns .coro source text into unresolved ast trees.
//
// The lexer and the recursive-descent parser report problems through a
// diag.Reporter and keep going; callers check the bag before passing the
// tree on to sema.
package syntax
