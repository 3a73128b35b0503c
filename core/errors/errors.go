package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure. Kinds are comparable with errors.Is:
//
//	errors.Is(err, errors.BadSelection)
type Kind string

// Error kinds raised by the table engine, the parser and the interpreter
const (
	// Grammar errors
	BadSyntax       Kind = "BAD_SYNTAX"
	CommandNotFound Kind = "COMMAND_NOT_FOUND"

	// Selection shape errors
	BadSelection Kind = "BAD_SELECTION"

	// Input table errors
	BadFormat Kind = "BAD_FORMAT"
	BadInput  Kind = "BAD_INPUT"

	// Runtime errors
	OutOfMemory  Kind = "OUT_OF_MEMORY"
	InfiniteLoop Kind = "INFINITE_LOOP"

	// Boundary errors
	FileAccess Kind = "FILE_ACCESS"
)

// Error implements the error interface so a bare Kind can be used as a sentinel
func (k Kind) Error() string {
	return string(k)
}

// SheetError represents a structured error with kind and context
type SheetError struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *SheetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows error unwrapping
func (e *SheetError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind
func (e *SheetError) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// New creates a new SheetError
func New(kind Kind, message string) *SheetError {
	return &SheetError{
		Kind:    kind,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new SheetError with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *SheetError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a new SheetError wrapping an existing error
func Wrap(kind Kind, message string, cause error) *SheetError {
	return &SheetError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *SheetError) WithContext(key string, value interface{}) *SheetError {
	e.Context[key] = value
	return e
}

// GetContext returns context value by key
func (e *SheetError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// Helper functions for common error scenarios

// NewCommandNotFoundError creates a command not found error.
// suggestion may be empty when nothing in the catalog is close.
func NewCommandNotFoundError(text string, offset int, suggestion string) *SheetError {
	msg := fmt.Sprintf("no command matches %q at offset %d", text, offset)
	if text == "" {
		msg = fmt.Sprintf("empty command at offset %d", offset)
	}
	if suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return New(CommandNotFound, msg).
		WithContext("text", text).
		WithContext("offset", offset).
		WithContext("suggestion", suggestion)
}

// NewFileAccessError creates a file access error
func NewFileAccessError(path string, cause error) *SheetError {
	return Wrap(FileAccess, fmt.Sprintf("cannot access %s", path), cause).
		WithContext("path", path)
}

// KindOf returns the kind of the first SheetError (or bare Kind) in err's chain.
// ok is false when err carries no kind.
func KindOf(err error) (Kind, bool) {
	var se *SheetError
	if stderrors.As(err, &se) {
		return se.Kind, true
	}
	var k Kind
	if stderrors.As(err, &k) {
		return k, true
	}
	return "", false
}

// IsKind checks if an error carries a specific kind
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, kind)
}
