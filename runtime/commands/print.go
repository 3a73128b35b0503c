package commands

import (
	"github.com/aledsdavies/sps/runtime/sheetio"
)

func init() {
	Register(&PrintCommand{})
}

// PrintCommand handles print: it dumps the table to the diagnostic writer
// without trimming empty columns.
type PrintCommand struct{}

func (c *PrintCommand) Name() string { return "print" }

func (c *PrintCommand) Description() string {
	return "Write the current table to the diagnostic output"
}

func (c *PrintCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	return fromError(sheetio.Write(env.out(), env.Table))
}
