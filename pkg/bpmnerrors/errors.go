// Package bpmnerrors provides structured error types for the layout engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, HTTP API, and pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every code falls under one of the four error kinds the pipeline can
// produce: invalid input, unsatisfiable constraints, routing failure, or an
// internal invariant violation. Within INVALID_INPUT, finer codes identify
// the specific input violation.
//
// # Usage
//
//	err := bpmnerrors.New(bpmnerrors.ErrCodeDanglingReference, "edge %q targets unknown node %q", edgeID, targetID)
//	if bpmnerrors.Is(err, bpmnerrors.ErrCodeDanglingReference) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := bpmnerrors.Wrap(bpmnerrors.ErrCodeRoutingFailure, origErr, "no route found between %s and %s", a, b)
package bpmnerrors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the four pipeline error kinds, plus finer-grained
// sub-codes for INVALID_INPUT.
const (
	// ErrCodeInvalidInput is the umbrella code for any input-graph violation
	// detected during validation, before layout begins.
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Sub-codes of ErrCodeInvalidInput naming the specific violation.
	ErrCodeMissingChildren        Code = "INVALID_INPUT_MISSING_CHILDREN"
	ErrCodeDanglingReference      Code = "INVALID_INPUT_DANGLING_REFERENCE"
	ErrCodeCyclicBoundaryAttach   Code = "INVALID_INPUT_CYCLIC_BOUNDARY_ATTACHMENT"
	ErrCodeMissingAttribute       Code = "INVALID_INPUT_MISSING_ATTRIBUTE"
	ErrCodeMissingDefaultFlow     Code = "INVALID_INPUT_MISSING_DEFAULT_FLOW"
	ErrCodeCrossPoolSequenceFlow  Code = "INVALID_INPUT_CROSS_POOL_SEQUENCE_FLOW"
	ErrCodeDuplicateID            Code = "INVALID_INPUT_DUPLICATE_ID"

	// ErrCodeUnsatisfiableConstraints tags the debug log line the pipeline
	// writes when constraint refinement does not converge; ToBpmn keeps the
	// positions it has and does not return this code as an error.
	ErrCodeUnsatisfiableConstraints Code = "UNSATISFIABLE_CONSTRAINTS"

	// ErrCodeRoutingFailure tags a debug-logged recovery when the
	// quadrant heuristic had to fall back to the A* router, or when even
	// that found no path within its search budget. Recovered locally,
	// never returned as a pipeline error.
	ErrCodeRoutingFailure Code = "ROUTING_FAILURE"

	// ErrCodeInternalInvariantViolation marks a bug: an assumption a later
	// stage depends on was violated by an earlier one.
	ErrCodeInternalInvariantViolation Code = "INTERNAL_INVARIANT_VIOLATION"

	// Ambient, non-pipeline codes used by the CLI/API/cache layers.
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInvalidInput reports whether code names any INVALID_INPUT sub-case.
func IsInvalidInput(code Code) bool {
	switch code {
	case ErrCodeInvalidInput, ErrCodeMissingChildren, ErrCodeDanglingReference,
		ErrCodeCyclicBoundaryAttach, ErrCodeMissingAttribute, ErrCodeMissingDefaultFlow,
		ErrCodeCrossPoolSequenceFlow, ErrCodeDuplicateID:
		return true
	default:
		return false
	}
}
