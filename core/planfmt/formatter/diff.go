package formatter

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/sps/core/planfmt"
)

// DiffResult represents the differences between two plans.
type DiffResult struct {
	DialectChanged string     // Non-empty if the dialect changed (format: "old -> new")
	Added          []StepDiff // Steps added in actual
	Removed        []StepDiff // Steps removed from expected
	Modified       []StepDiff // Steps that changed
}

// StepDiff represents a difference in a single step.
type StepDiff struct {
	StepNum  int    // Step number (1-indexed)
	Expected string // Formatted expected step (empty for added steps)
	Actual   string // Formatted actual step (empty for removed steps)
}

// Empty reports whether the plans are equivalent
func (d *DiffResult) Empty() bool {
	return d.DialectChanged == "" && len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Diff compares two plans step by step.
func Diff(expected, actual *planfmt.Plan) *DiffResult {
	result := &DiffResult{}

	if expected.Dialect != actual.Dialect {
		result.DialectChanged = fmt.Sprintf("%s -> %s", expected.Dialect, actual.Dialect)
	}

	steps := max(len(expected.Instructions), len(actual.Instructions))
	for i := 0; i < steps; i++ {
		stepNum := i + 1

		if i >= len(actual.Instructions) {
			result.Removed = append(result.Removed, StepDiff{
				StepNum:  stepNum,
				Expected: FormatInstruction(expected.Instructions[i]),
			})
			continue
		}

		if i >= len(expected.Instructions) {
			result.Added = append(result.Added, StepDiff{
				StepNum: stepNum,
				Actual:  FormatInstruction(actual.Instructions[i]),
			})
			continue
		}

		expectedStr := FormatInstruction(expected.Instructions[i])
		actualStr := FormatInstruction(actual.Instructions[i])
		if expectedStr != actualStr {
			result.Modified = append(result.Modified, StepDiff{
				StepNum:  stepNum,
				Expected: expectedStr,
				Actual:   actualStr,
			})
		}
	}

	return result
}

// FormatDiff returns a human-readable diff display with optional color coding.
func FormatDiff(result *DiffResult, useColor bool) string {
	var b strings.Builder

	if result.DialectChanged != "" {
		fmt.Fprintf(&b, "%s\n\n", Colorize("Dialect changed: "+result.DialectChanged, ColorYellow, useColor))
	}

	if len(result.Modified) > 0 {
		fmt.Fprintf(&b, "%s\n", Colorize("Modified steps:", ColorYellow, useColor))
		for _, diff := range result.Modified {
			fmt.Fprintf(&b, "  step %d:\n", diff.StepNum)
			fmt.Fprintf(&b, "    %s\n", Colorize("- "+diff.Expected, ColorRed, useColor))
			fmt.Fprintf(&b, "    %s\n", Colorize("+ "+diff.Actual, ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "%s\n", Colorize("Added steps:", ColorGreen, useColor))
		for _, diff := range result.Added {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("+ step %d: %s", diff.StepNum, diff.Actual), ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Removed) > 0 {
		fmt.Fprintf(&b, "%s\n", Colorize("Removed steps:", ColorRed, useColor))
		for _, diff := range result.Removed {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("- step %d: %s", diff.StepNum, diff.Expected), ColorRed, useColor))
		}
		fmt.Fprintln(&b)
	}

	if result.Empty() {
		fmt.Fprintln(&b, "No differences found.")
	}

	return b.String()
}
