package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/planfmt"
	"github.com/aledsdavies/sps/core/planfmt/formatter"
)

// planOptions are the flags of sps plan
type planOptions struct {
	sourceOptions
	format  string // tree, text or source
	against string // compiled plan to diff with
}

func (a *app) newPlanCommand() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan [flags] (COMMANDS | -c CMDFILE | --program PLAN)",
		Short: "Parse a command sequence and show the resulting plan",
		Long: `plan parses the command sequence without touching any table and prints
its steps, the dialect it was parsed under and its content hash.
With --against, the plan is compared with a compiled plan file instead.`,
		Args: a.programArgs(&opts.sourceOptions),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showPlan(opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.commandFile, "command-file", "c", "", "Read the command sequence from a file (- for stdin)")
	f.StringVar(&opts.program, "program", "", "Show a compiled plan file")
	f.StringVar(&opts.format, "format", "tree", "Output format: tree, text or source")
	f.StringVar(&opts.against, "against", "", "Compiled plan file to diff against")
	return cmd
}

func (a *app) newCompileCommand() *cobra.Command {
	opts := &sourceOptions{}
	var output string
	cmd := &cobra.Command{
		Use:   "compile [flags] (COMMANDS | -c CMDFILE) -o PLAN",
		Short: "Compile a command sequence into a plan file for later runs",
		Args:  a.programArgs(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return usageError("compile needs an output file (-o)")
			}
			return a.compile(opts, args, output)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.commandFile, "command-file", "c", "", "Read the command sequence from a file (- for stdin)")
	f.StringVarP(&output, "output", "o", "", "Plan file to write")
	return cmd
}

// programArgs accepts COMMANDS unless -c or --program supplies the program
func (a *app) programArgs(opts *sourceOptions) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if opts.commandFile != "" && opts.program != "" {
			return usageError("-c and --program cannot be used together")
		}
		want := 1
		if opts.commandFile != "" || opts.program != "" {
			want = 0
		}
		if len(args) != want {
			if want == 0 {
				return usageError("unexpected arguments %q", args)
			}
			return usageError("expected one COMMANDS argument, got %d", len(args))
		}
		return nil
	}
}

func (a *app) showPlan(opts *planOptions, args []string) error {
	dialect, err := a.resolveDialect()
	if err != nil {
		return err
	}
	plan, err := a.loadPlan(opts.sourceOptions, args, a.executorConfig(dialect))
	if err != nil {
		return err
	}
	useColor := ShouldUseColor(a.noColor, a.stdout)

	if opts.against != "" {
		expected, err := readPlanFile(opts.against)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(a.stdout, formatter.FormatDiff(formatter.Diff(expected, plan), useColor))
		return nil
	}

	switch opts.format {
	case "tree":
		DisplayPlan(a.stdout, plan, useColor)
	case "text":
		_, _ = fmt.Fprint(a.stdout, formatter.Format(plan))
	case "source":
		_, _ = fmt.Fprintln(a.stdout, plan.Source())
		return nil
	default:
		return usageError("unknown format %q (want tree, text or source)", opts.format)
	}
	return displayPlanIdentity(a.stdout, plan, useColor)
}

func (a *app) compile(opts *sourceOptions, args []string, output string) error {
	dialect, err := a.resolveDialect()
	if err != nil {
		return err
	}
	plan, err := a.loadPlan(*opts, args, a.executorConfig(dialect))
	if err != nil {
		return err
	}
	id, err := planfmt.DisplayID(plan)
	if err != nil {
		return err
	}

	if err := writePlanFile(output, plan); err != nil {
		return err
	}
	a.logger.Debug("plan compiled", "output", output, "id", id, "steps", len(plan.Instructions))
	_, _ = fmt.Fprintf(a.stdout, "compiled %d steps (%s) to %s  %s\n", len(plan.Instructions), plan.Dialect, output, id)
	return nil
}

// writePlanFile encodes plan to path, replacing any existing file
func writePlanFile(path string, plan *planfmt.Plan) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return sperrors.NewFileAccessError(path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = sperrors.NewFileAccessError(path, cerr)
		}
	}()

	if _, err := planfmt.Encode(f, plan); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return nil
}

// displayPlanIdentity prints the hash and short id under a plan listing
func displayPlanIdentity(w io.Writer, plan *planfmt.Plan, useColor bool) error {
	hash, err := plan.Hash()
	if err != nil {
		return err
	}
	id, err := planfmt.DisplayID(plan)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\n", Colorize(fmt.Sprintf("id:   %s", id), ColorGray, useColor))
	_, _ = fmt.Fprintf(w, "%s\n", Colorize(fmt.Sprintf("hash: %s", hash), ColorGray, useColor))
	return nil
}
