// Package cirerr provides the error taxonomy of CIR generation.
//
// Errors are categorized by Kind:
//
//   - KindInternal: a broken front-end contract or a lowering invariant violation
//     (double coroutine state, parameter-copy mismatch, missing promise declaration).
//     These are raised with panic(Internal(...)) at the point of detection and
//     recovered only at the function-lowering boundary.
//   - KindUnsupported: a construct the generator deliberately does not handle yet.
//   - KindLowering: an ordinary failure propagated from a nested statement or expression.
//
// Sentinels match by kind:
//
//	if errors.Is(err, cirerr.ErrUnsupported) { ... }
package cirerr
