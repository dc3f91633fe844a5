// Package cir is a small structured IR in the style of MLIR's CIR dialect.
//
// A Module holds functions. A function body is a Region made of Blocks, and
// blocks hold Ops. Structured ops (if, while, scope, await) own nested
// regions instead of branching between blocks; a region's blocks may only
// branch to each other. The Builder tracks an insertion point and creates ops
// there, Print renders the textual form and Validate checks the structural
// rules lowering relies on.
package cir
