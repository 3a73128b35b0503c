package commands

func init() {
	Register(&RowCommand{name: "irow", op: insertBefore})
	Register(&RowCommand{name: "arow", op: insertAfter})
	Register(&RowCommand{name: "drow", op: removeRange})
	Register(&ColCommand{name: "icol", op: insertBefore})
	Register(&ColCommand{name: "acol", op: insertAfter})
	Register(&ColCommand{name: "dcol", op: removeRange})
}

type layoutOp int

const (
	insertBefore layoutOp = iota // empty unit before the first selected one
	insertAfter                  // empty unit after the last selected one
	removeRange                  // delete every selected unit
)

// RowCommand handles irow, arow and drow
type RowCommand struct {
	name string
	op   layoutOp
}

func (c *RowCommand) Name() string { return c.name }

func (c *RowCommand) Description() string {
	switch c.op {
	case insertBefore:
		return "Insert an empty row above the selection"
	case insertAfter:
		return "Insert an empty row below the selection"
	default:
		return "Delete the selected rows"
	}
}

func (c *RowCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	t := env.Table

	if c.op == removeRange {
		for row := min(t.LowerBound(), t.Rows()); row >= t.UpperBound(); row-- {
			t.RemoveRow(row)
		}
		return Continue()
	}

	rect, err := t.Materialize()
	if err != nil {
		return Halt(err)
	}
	if c.op == insertBefore {
		t.InsertRow(rect.Top)
	} else {
		t.InsertRow(rect.Bottom + 1)
	}
	return Continue()
}

// ColCommand handles icol, acol and dcol
type ColCommand struct {
	name string
	op   layoutOp
}

func (c *ColCommand) Name() string { return c.name }

func (c *ColCommand) Description() string {
	switch c.op {
	case insertBefore:
		return "Insert an empty column left of the selection"
	case insertAfter:
		return "Insert an empty column right of the selection"
	default:
		return "Delete the selected columns"
	}
}

func (c *ColCommand) Execute(env *Env, arg string) Result {
	if err := requireNoArg(c, arg); err != nil {
		return Halt(err)
	}
	t := env.Table

	if c.op == removeRange {
		for col := min(t.RightBound(), t.Cols()); col >= t.LeftBound(); col-- {
			t.RemoveCol(col)
		}
		return Continue()
	}

	rect, err := t.Materialize()
	if err != nil {
		return Halt(err)
	}
	if c.op == insertBefore {
		t.InsertCol(rect.Left)
	} else {
		t.InsertCol(rect.Right + 1)
	}
	return Continue()
}
