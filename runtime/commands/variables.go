package commands

import (
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/parser"
)

func init() {
	Register(&DefCommand{})
	Register(&UseCommand{})
	Register(&IncCommand{})
}

// DefCommand handles def _N
type DefCommand struct{}

func (c *DefCommand) Name() string { return "def " }

func (c *DefCommand) Description() string {
	return "Copy the selected cell into register _N"
}

func (c *DefCommand) Execute(env *Env, arg string) Result {
	n, err := parser.ParseRegister(arg)
	if err != nil {
		return Halt(err)
	}
	row, col, err := env.Table.SelectedCell()
	if err != nil {
		return Halt(err)
	}
	env.Vars.Set(n, env.Table.Get(row, col))
	return Continue()
}

// UseCommand handles use _N. Whether it writes one cell or the whole
// selection depends on the dialect.
type UseCommand struct{}

func (c *UseCommand) Name() string { return "use " }

func (c *UseCommand) Description() string {
	return "Write register _N into the selection"
}

func (c *UseCommand) Execute(env *Env, arg string) Result {
	n, err := parser.ParseRegister(arg)
	if err != nil {
		return Halt(err)
	}
	v := env.Vars.Get(n)

	if env.Dialect.UseBroadcast {
		return fromError(fill(env.Table, v))
	}
	row, col, err := env.Table.SelectedCell()
	if err != nil {
		return Halt(err)
	}
	env.Table.Cell(row, col).Set(v)
	return Continue()
}

// IncCommand handles inc _N. A register that is not a number counts as 0.
type IncCommand struct{}

func (c *IncCommand) Name() string { return "inc " }

func (c *IncCommand) Description() string {
	return "Add one to register _N"
}

func (c *IncCommand) Execute(env *Env, arg string) Result {
	n, err := parser.ParseRegister(arg)
	if err != nil {
		return Halt(err)
	}
	v, _ := table.ParseNumber(env.Vars.Get(n))
	env.Vars.Set(n, table.FormatNumber(v+1))
	return Continue()
}
