// Package errors provides structured error types for the marshalling
// layer.
//
// Every fallible operation reports a *Error carrying the Phase where the
// failure occurred and a Kind categorizing it. Boundary callers that need
// a by-value result map errors to the closed Code enumeration with
// CodeOf:
//
//	_, err := a.GetStringArgument(h, id, 3)
//	switch errors.CodeOf(err) {
//	case errors.CodeOK:
//	case errors.CodeInvalidModel:
//	    // handle was closed
//	case errors.CodeOutOfRange:
//	    // no such argument
//	}
//
// Engine-side panics never escape the façade; they are recovered and
// surfaced as KindInternal errors.
package errors
