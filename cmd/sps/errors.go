package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsage        = 1
	ExitFileAccess   = 2
	ExitSyntax       = 3
	ExitBadFormat    = 4
	ExitBadSelection = 5
	ExitInfiniteLoop = 6
	ExitOther        = 7
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "usage", "config", "plan"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
	Err     error  // Underlying error, if any
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) *CLIError {
	return &CLIError{
		Type:    "usage",
		Message: fmt.Sprintf(format, args...),
		Hint:    "Run 'sps --help' for usage.",
	}
}

// ExitCode maps an error to the process exit status. Kinded errors win over
// the CLI wrapper they travel in.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if kind, ok := sperrors.KindOf(err); ok {
		switch kind {
		case sperrors.FileAccess:
			return ExitFileAccess
		case sperrors.BadSyntax, sperrors.CommandNotFound:
			return ExitSyntax
		case sperrors.BadFormat, sperrors.BadInput:
			return ExitBadFormat
		case sperrors.BadSelection:
			return ExitBadSelection
		case sperrors.InfiniteLoop:
			return ExitInfiniteLoop
		default:
			return ExitOther
		}
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) && (cliErr.Type == "usage" || cliErr.Type == "config") {
		return ExitUsage
	}
	return ExitOther
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		formatCLIError(w, cliErr, useColor)
		return
	}

	var sheetErr *sperrors.SheetError
	if errors.As(err, &sheetErr) {
		formatSheetError(w, err, sheetErr, useColor)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
}

// formatSheetError prints the error and where in the input it happened
func formatSheetError(w io.Writer, err error, sheetErr *sperrors.SheetError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())

	var where []string
	for _, key := range []string{"row", "col", "offset"} {
		if v, ok := sheetErr.GetContext(key); ok {
			where = append(where, fmt.Sprintf("%s %v", key, v))
		}
	}
	if len(where) > 0 {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize("  at "+strings.Join(where, ", "), ColorGray, useColor))
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	msg := err.Message
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), msg)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}
