package commands

import (
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/runtime/parser"
)

func init() {
	Register(&GotoCommand{})
	Register(&IsZeroCommand{})
}

// GotoCommand handles goto ±K. goto +1 is the next instruction, goto 0 repeats itself.
type GotoCommand struct{}

func (c *GotoCommand) Name() string { return "goto " }

func (c *GotoCommand) Description() string {
	return "Jump K instructions relative to this one"
}

func (c *GotoCommand) Execute(env *Env, arg string) Result {
	offset, err := parser.ParseOffset(arg)
	if err != nil {
		return Halt(err)
	}
	return Jump(offset)
}

// IsZeroCommand handles iszero _N ±K
type IsZeroCommand struct{}

func (c *IsZeroCommand) Name() string { return "iszero " }

func (c *IsZeroCommand) Description() string {
	return "Jump K instructions if register _N holds exactly 0"
}

func (c *IsZeroCommand) Execute(env *Env, arg string) Result {
	reg, off, ok := strings.Cut(arg, " ")
	if !ok {
		return Halt(sperrors.Newf(sperrors.BadSyntax, "iszero needs a register and an offset, got %q", arg))
	}
	n, err := parser.ParseRegister(reg)
	if err != nil {
		return Halt(err)
	}
	offset, err := parser.ParseOffset(off)
	if err != nil {
		return Halt(err)
	}

	if env.Vars.Get(n) == "0" {
		return Jump(offset)
	}
	return Continue()
}
