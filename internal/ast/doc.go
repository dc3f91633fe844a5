// Package ast defines the syntax tree consumed by coroutine lowering.
//
// Statements and expressions follow the Kind + Data layout: the Kind selects
// which *XxxData payload is stored in Data. The front end (package syntax)
// builds unresolved trees; package sema resolves names, assigns types and
// synthesizes CoroutineBodyData for every coroutine.
//
// A coroutine body mirrors what a C++ front end hands to code generation:
// the user body together with the promise declaration, initial and final
// suspend points, parameter copies, the allocation call, the return object
// expression and the implicit fallthrough co_return.
package ast
