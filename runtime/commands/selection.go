package commands

import (
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/runtime/parser"
)

func init() {
	Register(&SelectCommand{})
	Register(&MinMaxCommand{wantMax: false})
	Register(&MinMaxCommand{wantMax: true})
	Register(&FindCommand{})
	Register(&StoreSelectionCommand{})
	Register(&LoadSelectionCommand{})
}

// SelectCommand handles [r,c] and [r1,c1,r2,c2]
type SelectCommand struct{}

func (c *SelectCommand) Name() string { return parser.SelectName }

func (c *SelectCommand) Description() string {
	return "Select a cell or rectangle by coordinates; _ leaves a bound open"
}

func (c *SelectCommand) Execute(env *Env, arg string) Result {
	sel, err := parser.ParseSelection(arg, env.Dialect.ParserOpts()...)
	if err != nil {
		return Halt(err)
	}
	return fromError(env.Table.SelectRectangle(sel))
}

// MinMaxCommand handles [min] and [max]
type MinMaxCommand struct {
	wantMax bool
}

func (c *MinMaxCommand) Name() string {
	if c.wantMax {
		return "[max]"
	}
	return "[min]"
}

func (c *MinMaxCommand) Description() string {
	if c.wantMax {
		return "Narrow the selection to the cell with the largest number"
	}
	return "Narrow the selection to the cell with the smallest number"
}

func (c *MinMaxCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	env.Table.SelectMinMax(c.wantMax)
	return Continue()
}

// FindCommand handles [find STR]
type FindCommand struct{}

func (c *FindCommand) Name() string { return "[find " }

func (c *FindCommand) Description() string {
	return "Narrow the selection to the first cell matching STR"
}

func (c *FindCommand) Execute(env *Env, arg string) Result {
	needle, ok := strings.CutSuffix(arg, "]")
	if !ok {
		return Halt(sperrors.Newf(sperrors.BadSyntax, "[find %s is missing its closing bracket", arg))
	}
	env.Table.Find(func(value string) bool {
		return env.Dialect.Match(value, needle)
	})
	return Continue()
}

// StoreSelectionCommand handles [set]
type StoreSelectionCommand struct{}

func (c *StoreSelectionCommand) Name() string { return "[set]" }

func (c *StoreSelectionCommand) Description() string {
	return "Save the current selection"
}

func (c *StoreSelectionCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	env.Vars.SaveSelection(env.Table.Selection())
	return Continue()
}

// LoadSelectionCommand handles [_]
type LoadSelectionCommand struct{}

func (c *LoadSelectionCommand) Name() string { return "[_]" }

func (c *LoadSelectionCommand) Description() string {
	return "Restore the saved selection"
}

func (c *LoadSelectionCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	env.Table.Restore(env.Vars.Selection())
	return Continue()
}

// requireNoArg rejects any argument for commands that take none
func requireNoArg(cmd Command, arg string) error {
	if arg != "" {
		return sperrors.Newf(sperrors.BadSyntax, "%s takes no argument, got %q", strings.TrimSpace(cmd.Name()), arg).
			WithContext("command", cmd.Name())
	}
	return nil
}
