// Package formatter provides human-readable formatting for plans.
// This includes text output, diffs, and tree displays.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aledsdavies/sps/core/planfmt"
)

// Format returns a human-readable text representation of the plan.
//
// Format:
//
//	dialect: <version>
//	step 1: <instruction>
//	step 2: <instruction>
func Format(plan *planfmt.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "dialect: %s\n", plan.Dialect)
	for i, in := range plan.Instructions {
		fmt.Fprintf(&b, "step %d: %s\n", i+1, FormatInstruction(in))
	}

	return b.String()
}

// FormatInstruction returns one instruction in command syntax
func FormatInstruction(in planfmt.Instruction) string {
	return in.Source()
}

// JumpTarget returns the 1-based step a goto or iszero instruction at 1-based
// step would move to. ok is false for other instructions and malformed offsets.
func JumpTarget(in planfmt.Instruction, step int) (target int, ok bool) {
	var offset string
	switch in.Name {
	case "goto ":
		offset = in.Arg
	case "iszero ":
		_, off, found := strings.Cut(in.Arg, " ")
		if !found {
			return 0, false
		}
		offset = off
	default:
		return 0, false
	}

	n, err := strconv.Atoi(offset)
	if err != nil {
		return 0, false
	}
	return step + n, true
}
