// Package errors provides structured error types for augmedical.
//
// Every failure the library reports carries a machine-readable [Code] so
// callers can tell configuration mistakes apart from shape mismatches and
// missing assets without string matching.
//
// # Error Codes
//
//   - INVALID_SHAPE: image rank, extent or channel count does not match what a
//     transform expects
//   - INVALID_CONFIG: unrecognized mode, out-of-range probability or magnitude
//   - ASSET_LOAD: a stamp asset could not be found or decoded (construction time)
//   - INVALID_INPUT, FILE_NOT_FOUND: CLI and pipeline input problems
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "unknown bleaching mode %q", mode)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeAssetLoad, origErr, "load stamp %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Augmentation errors
	ErrCodeInvalidShape  Code = "INVALID_SHAPE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeAssetLoad     Code = "ASSET_LOAD"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// InvalidShape is shorthand for New(ErrCodeInvalidShape, ...).
func InvalidShape(format string, args ...any) *Error {
	return New(ErrCodeInvalidShape, format, args...)
}

// InvalidConfig is shorthand for New(ErrCodeInvalidConfig, ...).
func InvalidConfig(format string, args ...any) *Error {
	return New(ErrCodeInvalidConfig, format, args...)
}

// AssetLoad is shorthand for Wrap(ErrCodeAssetLoad, ...). cause may be nil.
func AssetLoad(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeAssetLoad, cause, format, args...)
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
