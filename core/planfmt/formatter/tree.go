package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/sps/core/planfmt"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// FormatTree renders a plan as a tree to the given writer. Jumps are
// annotated with the step they land on.
func FormatTree(w io.Writer, plan *planfmt.Plan, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s:\n", Colorize(plan.Dialect, ColorGray, useColor))

	if len(plan.Instructions) == 0 {
		_, _ = fmt.Fprintf(w, "(no steps)\n")
		return
	}

	n := len(plan.Instructions)
	for i, in := range plan.Instructions {
		prefix := "├─ "
		if i == n-1 {
			prefix = "└─ "
		}
		step := i + 1
		_, _ = fmt.Fprintf(w, "%s%2d  %s%s\n", prefix, step, renderInstruction(in, useColor), jumpNote(in, step, n, useColor))
	}
}

// renderInstruction colors an instruction by category
func renderInstruction(in planfmt.Instruction, useColor bool) string {
	text := in.Source()
	switch {
	case in.Name == planfmt.SelectName || strings.HasPrefix(in.Name, "["):
		return Colorize(text, ColorCyan, useColor)
	case in.Name == "goto " || in.Name == "iszero ":
		return Colorize(text, ColorYellow, useColor)
	default:
		name := Colorize(in.Name, ColorBlue, useColor)
		return name + strings.TrimPrefix(text, in.Name)
	}
}

// jumpNote describes where a jump lands; n+1 is the end of the program
func jumpNote(in planfmt.Instruction, step, n int, useColor bool) string {
	target, ok := JumpTarget(in, step)
	if !ok {
		return ""
	}
	switch {
	case target < 1 || target > n+1:
		return Colorize(fmt.Sprintf("  → out of range (%d)", target), ColorRed, useColor)
	case target == n+1:
		return Colorize("  → end", ColorGray, useColor)
	case target == step:
		return Colorize(fmt.Sprintf("  → step %d (itself)", target), ColorRed, useColor)
	default:
		return Colorize(fmt.Sprintf("  → step %d", target), ColorGray, useColor)
	}
}
