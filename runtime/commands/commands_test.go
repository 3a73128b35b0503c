package commands

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/vars"
)

func newEnv(t *testing.T, rows [][]string) *Env {
	t.Helper()
	tbl, err := table.FromRows(',', rows)
	require.NoError(t, err)
	return &Env{Table: tbl, Vars: vars.New(), Dialect: LatestDialect()}
}

// exec runs one command by catalog name and fails the test if it halts
func exec(t *testing.T, env *Env, name, arg string) Result {
	t.Helper()
	res := execResult(t, env, name, arg)
	require.NotEqual(t, SignalHalt, res.Signal, "%s%s halted: %v", name, arg, res.Err)
	return res
}

func execResult(t *testing.T, env *Env, name, arg string) Result {
	t.Helper()
	cmd, err := Get(name)
	require.NoError(t, err)
	return cmd.Execute(env, arg)
}

func assertHaltKind(t *testing.T, res Result, kind sperrors.Kind) {
	t.Helper()
	require.Equal(t, SignalHalt, res.Signal, "expected halt, got %s", res)
	assert.True(t, sperrors.IsKind(res.Err, kind), "want %s, got %v", kind, res.Err)
}

func assertGrid(t *testing.T, want [][]string, env *Env) {
	t.Helper()
	if diff := cmp.Diff(want, env.Table.Grid()); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog(t *testing.T) {
	want := []string{
		"",
		"[_]", "[find ", "[max]", "[min]", "[set]",
		"acol", "arow", "avg ", "clear", "count ", "dcol", "def ", "drow",
		"goto ", "icol", "inc ", "irow", "iszero ", "len ", "print",
		"set ", "sum ", "swap ", "use ",
	}
	if diff := cmp.Diff(want, Catalog()); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}

	for _, cmd := range ListAll() {
		assert.NotEmpty(t, cmd.Description(), "command %q has no description", cmd.Name())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&ClearCommand{})
	assert.Panics(t, func() { r.Register(&ClearCommand{}) })

	_, ok := r.Get("clear")
	assert.True(t, ok)
	_, err := Get("nope")
	assert.Error(t, err)
}

func TestNoArgCommandsRejectArguments(t *testing.T) {
	for _, name := range []string{"[min]", "[max]", "[set]", "[_]", "irow", "arow", "drow", "icol", "acol", "dcol", "clear", "print"} {
		t.Run(name, func(t *testing.T) {
			env := newEnv(t, [][]string{{"1"}})
			assertHaltKind(t, execResult(t, env, name, "x"), sperrors.BadSyntax)
		})
	}
}

func TestRegisterCommandsRejectBadRegisters(t *testing.T) {
	for _, name := range []string{"def ", "use ", "inc "} {
		for _, arg := range []string{"", "_", "_a", "_10", "3", "_3 "} {
			env := newEnv(t, [][]string{{"1"}})
			res := execResult(t, env, name, arg)
			assertHaltKind(t, res, sperrors.BadSyntax)
		}
	}
}

func TestSelect(t *testing.T) {
	env := newEnv(t, [][]string{{"1", "2"}, {"3", "4"}})

	exec(t, env, "", "[2,1]")
	assert.Equal(t, table.CellAt(2, 1), env.Table.Selection())

	exec(t, env, "", "[1,_,2,_]")
	assert.Equal(t, table.Rect{Top: 1, Left: 1, Bottom: 2, Right: 2}, env.Table.Resolve())

	// selecting beyond the table grows it
	exec(t, env, "", "[3,3]")
	assert.Equal(t, 3, env.Table.Rows())
	assert.Equal(t, 3, env.Table.Cols())
}

func TestSelect_Errors(t *testing.T) {
	env := newEnv(t, [][]string{{"1"}})
	assertHaltKind(t, execResult(t, env, "", "[1]"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "", "[1,x]"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "", "[0,1]"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "", "[2,1,1,1]"), sperrors.BadSelection)
}

func TestSelect_ZeroBoundDialect(t *testing.T) {
	env := newEnv(t, [][]string{{"1", "2"}})
	v1, err := LookupDialect("v1")
	require.NoError(t, err)
	env.Dialect = v1

	exec(t, env, "", "[1,0,1,0]")
	assert.Equal(t, table.Rect{Top: 1, Left: 1, Bottom: 1, Right: 2}, env.Table.Resolve())
}

func TestMinMax(t *testing.T) {
	env := newEnv(t, [][]string{{"3", "x", "1"}, {"7", "1", "7"}})

	exec(t, env, "", "[_,_,_,_]")
	exec(t, env, "[max]", "")
	assert.Equal(t, table.CellAt(2, 1), env.Table.Selection())

	exec(t, env, "", "[_,_,_,_]")
	exec(t, env, "[min]", "")
	assert.Equal(t, table.CellAt(1, 3), env.Table.Selection())
}

func TestMinMax_NoNumbersLeavesSelection(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}})
	exec(t, env, "", "[1,1,1,2]")
	exec(t, env, "[min]", "")
	assert.Equal(t, table.Selection{StartRow: 1, StartCol: 1, EndRow: 1, EndCol: 2}, env.Table.Selection())
}

func TestFind(t *testing.T) {
	env := newEnv(t, [][]string{{"apple", "pear"}, {"pea", "pear"}})
	exec(t, env, "", "[_,_,_,_]")

	exec(t, env, "[find ", "pear]")
	assert.Equal(t, table.CellAt(1, 2), env.Table.Selection())

	// no match keeps the selection
	exec(t, env, "[find ", "plum]")
	assert.Equal(t, table.CellAt(1, 2), env.Table.Selection())

	assertHaltKind(t, execResult(t, env, "[find ", "pear"), sperrors.BadSyntax)
}

func TestFind_Dialects(t *testing.T) {
	tests := []struct {
		version string
		want    table.Selection
	}{
		{"v2.0.0", table.CellAt(2, 1)}, // exact
		{"v1.0.0", table.CellAt(1, 1)}, // substring
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			env := newEnv(t, [][]string{{"peach"}, {"pea"}})
			d, err := LookupDialect(tt.version)
			require.NoError(t, err)
			env.Dialect = d

			exec(t, env, "", "[_,_,_,_]")
			exec(t, env, "[find ", "pea]")
			assert.Equal(t, tt.want, env.Table.Selection())
		})
	}
}

func TestStoreAndLoadSelection(t *testing.T) {
	env := newEnv(t, [][]string{{"1", "2"}, {"3", "4"}})

	// the stored selection starts as the whole table
	exec(t, env, "[_]", "")
	assert.Equal(t, table.WholeTable(), env.Table.Selection())

	exec(t, env, "", "[2,2]")
	exec(t, env, "[set]", "")
	exec(t, env, "", "[1,1]")
	exec(t, env, "[_]", "")
	assert.Equal(t, table.CellAt(2, 2), env.Table.Selection())
}

func TestRowLayout(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		cmd  string
		want [][]string
	}{
		{
			name: "irow above selection",
			sel:  "[2,1]",
			cmd:  "irow",
			want: [][]string{{"1"}, {""}, {"2"}, {"3"}},
		},
		{
			name: "arow below selection",
			sel:  "[2,1]",
			cmd:  "arow",
			want: [][]string{{"1"}, {"2"}, {""}, {"3"}},
		},
		{
			name: "arow after last row",
			sel:  "[3,1]",
			cmd:  "arow",
			want: [][]string{{"1"}, {"2"}, {"3"}, {""}},
		},
		{
			name: "drow range",
			sel:  "[1,1,2,1]",
			cmd:  "drow",
			want: [][]string{{"3"}},
		},
		{
			name: "drow open range",
			sel:  "[2,_,_,_]",
			cmd:  "drow",
			want: [][]string{{"1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, [][]string{{"1"}, {"2"}, {"3"}})
			exec(t, env, "", tt.sel)
			exec(t, env, tt.cmd, "")
			assertGrid(t, tt.want, env)
		})
	}
}

func TestColLayout(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		cmd  string
		want [][]string
	}{
		{"icol", "[1,2]", "icol", [][]string{{"a", "", "b", "c"}}},
		{"acol", "[1,2]", "acol", [][]string{{"a", "b", "", "c"}}},
		{"dcol", "[1,1,1,2]", "dcol", [][]string{{"c"}}},
		{"dcol whole column", "[_,3]", "dcol", [][]string{{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, [][]string{{"a", "b", "c"}})
			exec(t, env, "", tt.sel)
			exec(t, env, tt.cmd, "")
			assertGrid(t, tt.want, env)
		})
	}
}

func TestSetAndClear(t *testing.T) {
	env := newEnv(t, [][]string{{"1", "2"}, {"3", "4"}})

	exec(t, env, "", "[1,_,2,1]")
	exec(t, env, "set ", "X")
	assertGrid(t, [][]string{{"X", "2"}, {"X", "4"}}, env)

	exec(t, env, "", "[2,_]")
	exec(t, env, "clear", "")
	assertGrid(t, [][]string{{"X", "2"}, {"", ""}}, env)

	// writing past the table grows it
	exec(t, env, "", "[3,3]")
	exec(t, env, "set ", "Z")
	assertGrid(t, [][]string{{"X", "2", ""}, {"", "", ""}, {"", "", "Z"}}, env)
}

func TestSwap(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}, {"c", "d"}})
	exec(t, env, "", "[1,1]")
	exec(t, env, "swap ", "[2,2]")
	assertGrid(t, [][]string{{"d", "b"}, {"c", "a"}}, env)

	exec(t, env, "swap ", "[1,3]")
	assertGrid(t, [][]string{{"", "b", "d"}, {"c", "a", ""}}, env)
}

func TestSwap_Errors(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}})

	exec(t, env, "", "[1,1,1,2]")
	assertHaltKind(t, execResult(t, env, "swap ", "[1,1]"), sperrors.BadSelection)
	// argument syntax is checked first
	assertHaltKind(t, execResult(t, env, "swap ", "[1,1,2,2]"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "swap ", "1,1"), sperrors.BadSyntax)
}

func TestAggregates(t *testing.T) {
	tests := []struct {
		name   string
		sel    string
		cmd    string
		target string
		want   string
	}{
		{"sum", "[1,_]", "sum ", "[3,1]", "6.5"},
		{"avg", "[1,_]", "avg ", "[3,1]", "3.25"},
		{"count", "[1,_]", "count ", "[3,1]", "3"},
		{"count empty", "[2,_]", "count ", "[3,1]", "0"},
		{"len", "[1,3]", "len ", "[3,1]", "3"},
		{"sum without numbers", "[2,_]", "sum ", "[3,1]", "0"},
		{"single cell sum", "[1,1]", "sum ", "[3,1]", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, [][]string{{"1.5", "5", "abc"}, {"", "", ""}})
			exec(t, env, "", tt.sel)
			exec(t, env, tt.cmd, tt.target)
			assert.Equal(t, tt.want, env.Table.Get(3, 1))
		})
	}
}

func TestSum_WritesOutsideSelection(t *testing.T) {
	env := newEnv(t, [][]string{{"1", "2", "3"}})
	exec(t, env, "", "[1,1,1,3]")
	exec(t, env, "sum ", "[2,1]")
	assertGrid(t, [][]string{{"1", "2", "3"}, {"6", "", ""}}, env)
}

func TestAvg_NoNumbersLeavesTarget(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "keep"}})
	exec(t, env, "", "[1,1]")
	exec(t, env, "avg ", "[1,2]")
	assertGrid(t, [][]string{{"a", "keep"}}, env)
}

func TestLen_NeedsSingleCell(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}})
	exec(t, env, "", "[1,_]")
	assertHaltKind(t, execResult(t, env, "len ", "[2,1]"), sperrors.BadSelection)
	assert.Equal(t, 1, env.Table.Rows())
}

func TestDef(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}})
	exec(t, env, "", "[1,2]")
	exec(t, env, "def ", "_3")
	assert.Equal(t, "b", env.Vars.Get(3))
}

func TestDef_MultiCellSelectionLeavesRegister(t *testing.T) {
	env := newEnv(t, [][]string{{"a", "b"}})
	env.Vars.Set(3, "old")

	exec(t, env, "", "[1,1,1,2]")
	assertHaltKind(t, execResult(t, env, "def ", "_3"), sperrors.BadSelection)
	assert.Equal(t, "old", env.Vars.Get(3))
}

func TestUse_Dialects(t *testing.T) {
	t.Run("broadcast", func(t *testing.T) {
		env := newEnv(t, [][]string{{"a", "b"}})
		env.Vars.Set(0, "R")
		exec(t, env, "", "[1,_]")
		exec(t, env, "use ", "_0")
		assertGrid(t, [][]string{{"R", "R"}}, env)
	})

	t.Run("single cell", func(t *testing.T) {
		env := newEnv(t, [][]string{{"a", "b"}})
		d, err := LookupDialect("1.0.0")
		require.NoError(t, err)
		env.Dialect = d
		env.Vars.Set(0, "R")

		exec(t, env, "", "[1,_]")
		assertHaltKind(t, execResult(t, env, "use ", "_0"), sperrors.BadSelection)

		exec(t, env, "", "[1,2]")
		exec(t, env, "use ", "_0")
		assertGrid(t, [][]string{{"a", "R"}}, env)
	})
}

func TestInc(t *testing.T) {
	env := newEnv(t, nil)

	exec(t, env, "inc ", "_1")
	assert.Equal(t, "1", env.Vars.Get(1))
	exec(t, env, "inc ", "_1")
	assert.Equal(t, "2", env.Vars.Get(1))

	env.Vars.Set(2, "1.5")
	exec(t, env, "inc ", "_2")
	assert.Equal(t, "2.5", env.Vars.Get(2))

	env.Vars.Set(3, "text")
	exec(t, env, "inc ", "_3")
	assert.Equal(t, "1", env.Vars.Get(3))

	env.Vars.Set(4, "-1")
	exec(t, env, "inc ", "_4")
	assert.Equal(t, "0", env.Vars.Get(4))
}

func TestGoto(t *testing.T) {
	env := newEnv(t, nil)
	assert.Equal(t, Jump(3), exec(t, env, "goto ", "+3"))
	assert.Equal(t, Jump(-2), exec(t, env, "goto ", "-2"))
	assert.Equal(t, Jump(0), exec(t, env, "goto ", "0"))

	assertHaltKind(t, execResult(t, env, "goto ", ""), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "goto ", "x"), sperrors.BadSyntax)
}

func TestIsZero(t *testing.T) {
	env := newEnv(t, nil)

	assert.Equal(t, Continue(), exec(t, env, "iszero ", "_0 +2"))

	env.Vars.Set(0, "0")
	assert.Equal(t, Jump(2), exec(t, env, "iszero ", "_0 +2"))

	// only the literal string 0 counts
	env.Vars.Set(0, "0.0")
	assert.Equal(t, Continue(), exec(t, env, "iszero ", "_0 +2"))

	assertHaltKind(t, execResult(t, env, "iszero ", "_0"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "iszero ", "_x +1"), sperrors.BadSyntax)
	assertHaltKind(t, execResult(t, env, "iszero ", "_0 one"), sperrors.BadSyntax)
}

func TestPrint(t *testing.T) {
	env := newEnv(t, [][]string{{"a", ""}, {"b,c", ""}})
	var out bytes.Buffer
	env.Out = &out

	exec(t, env, "print", "")
	assert.Equal(t, "a,\n\"b,c\",\n", out.String())
	assert.Equal(t, 2, env.Table.Cols())
}

func TestPrint_NilWriterDiscards(t *testing.T) {
	env := newEnv(t, [][]string{{"a"}})
	assert.Equal(t, Continue(), exec(t, env, "print", ""))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "continue", Continue().String())
	assert.Equal(t, "jump(+2)", Jump(2).String())
	assert.Equal(t, "jump(-1)", Jump(-1).String())
	assert.Equal(t, "halt(BAD_SYNTAX: bad)", Halt(sperrors.New(sperrors.BadSyntax, "bad")).String())
}
