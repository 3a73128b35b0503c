package main

import (
	"fmt"
	"io"

	"github.com/aledsdavies/sps/core/planfmt"
	"github.com/aledsdavies/sps/core/planfmt/formatter"
	"github.com/aledsdavies/sps/runtime/commands"
)

// DisplayPlan renders a plan as a tree structure
func DisplayPlan(w io.Writer, plan *planfmt.Plan, useColor bool) {
	formatter.FormatTree(w, plan, useColor)
}

// DisplayDialects lists dialects oldest first and marks the latest
func DisplayDialects(w io.Writer, dialects []commands.Dialect, latest string, useColor bool) {
	for _, d := range dialects {
		version := fmt.Sprintf("%-16s", d.Version)
		if d.Version == latest {
			version = Colorize(version, ColorGreen, useColor)
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", version, d.Description)
		_, _ = fmt.Fprintf(w, "%s\n", Colorize(fmt.Sprintf("                 use_broadcast=%t find=%s max_steps=%d explicit_zero_bounds=%t",
			d.UseBroadcast, d.FindMatch, d.MaxSteps, d.ExplicitZeroBounds), ColorGray, useColor))
	}
}
