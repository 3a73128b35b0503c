package commands

import (
	"strconv"

	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/parser"
)

func init() {
	Register(&SetCommand{})
	Register(&ClearCommand{})
	Register(&SwapCommand{})
	Register(&AggregateCommand{name: "sum ", kind: aggSum})
	Register(&AggregateCommand{name: "avg ", kind: aggAvg})
	Register(&AggregateCommand{name: "count ", kind: aggCount})
	Register(&AggregateCommand{name: "len ", kind: aggLen})
}

// SetCommand handles set STR
type SetCommand struct{}

func (c *SetCommand) Name() string { return "set " }

func (c *SetCommand) Description() string {
	return "Write STR into every selected cell"
}

func (c *SetCommand) Execute(env *Env, arg string) Result {
	return fromError(fill(env.Table, arg))
}

// ClearCommand handles clear
type ClearCommand struct{}

func (c *ClearCommand) Name() string { return "clear" }

func (c *ClearCommand) Description() string {
	return "Empty every selected cell"
}

func (c *ClearCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	return fromError(fill(env.Table, ""))
}

// fill materializes the selection and overwrites each cell with v
func fill(t *table.Table, v string) error {
	rect, err := t.Materialize()
	if err != nil {
		return err
	}
	for row := rect.Top; row <= rect.Bottom; row++ {
		for col := rect.Left; col <= rect.Right; col++ {
			t.Cell(row, col).Set(v)
		}
	}
	return nil
}

// SwapCommand handles swap [r,c]
type SwapCommand struct{}

func (c *SwapCommand) Name() string { return "swap " }

func (c *SwapCommand) Description() string {
	return "Exchange the selected cell with the cell at [R,C]"
}

func (c *SwapCommand) Execute(env *Env, arg string) Result {
	row, col, err := parser.ParseCoordinate(arg)
	if err != nil {
		return Halt(err)
	}
	selRow, selCol, err := env.Table.SelectedCell()
	if err != nil {
		return Halt(err)
	}
	if err := env.Table.AssureSize(row, col); err != nil {
		return Halt(err)
	}
	env.Table.SwapCells(selRow, selCol, row, col)
	return Continue()
}

type aggregate int

const (
	aggSum   aggregate = iota // sum of numeric cells
	aggAvg                    // mean of numeric cells
	aggCount                  // non-empty cells
	aggLen                    // length of the single selected cell
)

// AggregateCommand handles sum, avg, count and len. The result goes to the
// cell named by the argument, which may lie outside the selection.
type AggregateCommand struct {
	name string
	kind aggregate
}

func (c *AggregateCommand) Name() string { return c.name }

func (c *AggregateCommand) Description() string {
	switch c.kind {
	case aggSum:
		return "Write the sum of the selected numbers to [R,C]"
	case aggAvg:
		return "Write the mean of the selected numbers to [R,C]"
	case aggCount:
		return "Write the number of non-empty selected cells to [R,C]"
	default:
		return "Write the length of the selected cell to [R,C]"
	}
}

func (c *AggregateCommand) Execute(env *Env, arg string) Result {
	row, col, err := parser.ParseCoordinate(arg)
	if err != nil {
		return Halt(err)
	}

	value, ok, err := c.compute(env.Table)
	if err != nil {
		return Halt(err)
	}
	if !ok {
		return Continue()
	}
	return fromError(env.Table.Set(row, col, value))
}

// compute evaluates the aggregate before any target growth. ok is false when
// there is nothing to write.
func (c *AggregateCommand) compute(t *table.Table) (string, bool, error) {
	if c.kind == aggLen {
		r, col, err := t.SelectedCell()
		if err != nil {
			return "", false, err
		}
		return strconv.Itoa(len(t.Get(r, col))), true, nil
	}

	var sum float64
	var numeric, nonEmpty int
	t.Each(func(_, _ int, value string) bool {
		if value != "" {
			nonEmpty++
		}
		if v, ok := table.ParseNumber(value); ok {
			sum += v
			numeric++
		}
		return true
	})

	switch c.kind {
	case aggSum:
		return table.FormatNumber(sum), true, nil
	case aggAvg:
		if numeric == 0 {
			return "", false, nil
		}
		return table.FormatNumber(sum / float64(numeric)), true, nil
	default:
		return strconv.Itoa(nonEmpty), true, nil
	}
}
