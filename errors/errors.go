package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegistry Phase = "registry" // handle lifecycle
	PhaseLoad     Phase = "load"     // model opening / byte ingestion
	PhaseSave     Phase = "save"     // model serialization
	PhaseQuery    Phase = "query"    // line and argument reads
	PhaseWrite    Phase = "write"    // line mutations
	PhaseGeometry Phase = "geometry" // mesh evaluation and flattening
	PhaseEncode   Phase = "encode"   // text codec and transfer protocol
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidModel    Kind = "invalid_model"
	KindInvalidArgument Kind = "invalid_argument"
	KindOutOfRange      Kind = "out_of_range"
	KindInternal        Kind = "internal"
	KindAllocation      Kind = "allocation"
	KindNotFound        Kind = "not_found"
	KindInvalidData     Kind = "invalid_data"
)

// Code is the closed error enumeration returned by value across the
// boundary for operations that cannot signal failure through a sentinel.
type Code int32

const (
	CodeOK Code = iota
	CodeInvalidModel
	CodeInvalidArgument
	CodeInternal
	CodeOutOfRange
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidModel:
		return "invalid-model"
	case CodeInvalidArgument:
		return "invalid-argument"
	case CodeInternal:
		return "internal"
	case CodeOutOfRange:
		return "out-of-range"
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// CodeOf maps an error to its boundary code. A nil error maps to CodeOK;
// unrecognized errors map to CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	e, ok := err.(*Error)
	if !ok {
		return CodeInternal
	}
	switch e.Kind {
	case KindInvalidModel:
		return CodeInvalidModel
	case KindInvalidArgument, KindAllocation, KindInvalidData:
		return CodeInvalidArgument
	case KindOutOfRange, KindNotFound:
		return CodeOutOfRange
	}
	return CodeInternal
}

// Error is the structured error type used throughout the layer
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// InvalidModel reports an unknown or closed handle.
func InvalidModel(phase Phase, handle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidModel,
		Detail: fmt.Sprintf("model %d is not open", handle),
	}
}

// InvalidArgument reports a null, empty, or malformed input.
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// OutOfRange reports an index or identifier beyond model bounds.
func OutOfRange(phase Phase, what string, index uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("%s %d out of range", what, index),
	}
}

// NotFound reports a missing element or argument.
func NotFound(phase Phase, what string, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %d not found", what, id),
	}
}

// Internal reports an unexpected failure inside the engine or this layer.
func Internal(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
	}
}

// AllocationFailed reports a failed auto-allocation in the transfer
// protocol.
func AllocationFailed(phase Phase, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// InvalidData reports malformed payload bytes.
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
