// Package table implements the in-memory spreadsheet: a rectangular grid of
// string cells, the active selection and the structural primitives every
// command is built from.
//
// All coordinates in the public API are 1-based. Cells live in a single
// row-major backing slice; a table only grows through explicit size
// assurance and only shrinks through DeleteRow/DeleteCol.
package table

import (
	"fmt"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/invariant"
)

// MaxCells bounds the grid. Growing past it fails with OutOfMemory instead of
// letting a runaway coordinate exhaust the process.
const MaxCells = 1 << 26

// Cell is the unit of storage
type Cell struct {
	value string
}

// String returns the cell contents
func (c *Cell) String() string { return c.value }

// Set overwrites the cell contents
func (c *Cell) Set(v string) { c.value = v }

// Table is a rows x cols grid of cells plus the active selection
type Table struct {
	rows, cols int
	cells      []Cell
	selection  Selection
	delim      byte
}

// New creates an empty table that serializes with delim.
// The active selection starts on cell [1,1].
func New(delim byte) *Table {
	return &Table{
		delim:     delim,
		selection: CellAt(1, 1),
	}
}

// FromRows builds a table from a row slice. Short rows are padded.
func FromRows(delim byte, rows [][]string) (*Table, error) {
	t := New(delim)
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if err := t.AssureSize(len(rows), width); err != nil {
		return nil, err
	}
	for r, row := range rows {
		for c, v := range row {
			if err := t.Set(r+1, c+1, v); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Rows returns the number of rows
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns
func (t *Table) Cols() int { return t.cols }

// Delim returns the primary delimiter used for serialization
func (t *Table) Delim() byte { return t.delim }

// Cell returns the cell at (row, col); the position must exist
func (t *Table) Cell(row, col int) *Cell {
	invariant.InRange(row, 1, t.rows, "row")
	invariant.InRange(col, 1, t.cols, "col")
	return &t.cells[t.index(row, col)]
}

// Get returns the value at (row, col), or "" when the position lies outside the table
func (t *Table) Get(row, col int) string {
	if row < 1 || col < 1 || row > t.rows || col > t.cols {
		return ""
	}
	return t.cells[t.index(row, col)].value
}

// Set writes v at (row, col), growing the table to include it
func (t *Table) Set(row, col int, v string) error {
	if err := t.AssureSize(row, col); err != nil {
		return err
	}
	t.Cell(row, col).Set(v)
	return nil
}

// Grid returns a copy of the contents as a row slice
func (t *Table) Grid() [][]string {
	out := make([][]string, t.rows)
	for r := 1; r <= t.rows; r++ {
		row := make([]string, t.cols)
		for c := 1; c <= t.cols; c++ {
			row[c-1] = t.cells[t.index(r, c)].value
		}
		out[r-1] = row
	}
	return out
}

func (t *Table) index(row, col int) int {
	return (row-1)*t.cols + (col - 1)
}

// AssureSize grows the table until it has at least rows x cols cells. It never shrinks.
func (t *Table) AssureSize(rows, cols int) error {
	invariant.Precondition(rows >= 0 && cols >= 0, "size must be non-negative, got %dx%d", rows, cols)

	wantRows := max(rows, t.rows)
	wantCols := max(cols, t.cols)
	if wantRows == t.rows && wantCols == t.cols {
		return nil
	}
	if max(wantCols, 1) > MaxCells/max(wantRows, 1) {
		return sperrors.Newf(sperrors.OutOfMemory, "table of %dx%d cells exceeds limit of %d", wantRows, wantCols, MaxCells)
	}

	if wantCols == t.cols {
		t.cells = append(t.cells, make([]Cell, (wantRows-t.rows)*t.cols)...)
		t.rows = wantRows
	} else {
		t.resize(wantRows, wantCols)
	}

	invariant.Postcondition(len(t.cells) == t.rows*t.cols, "grid has %d cells, want %d", len(t.cells), t.rows*t.cols)
	return nil
}

// AddRow appends one empty row
func (t *Table) AddRow() {
	t.cells = append(t.cells, make([]Cell, t.cols)...)
	t.rows++
}

// AddCol appends one empty column
func (t *Table) AddCol() {
	t.resize(t.rows, t.cols+1)
}

// DeleteRow drops the last row
func (t *Table) DeleteRow() {
	invariant.Precondition(t.rows > 0, "cannot delete a row from an empty table")
	t.rows--
	t.cells = t.cells[:t.rows*t.cols]
}

// DeleteCol drops the last column
func (t *Table) DeleteCol() {
	invariant.Precondition(t.cols > 0, "cannot delete a column from an empty table")
	t.resize(t.rows, t.cols-1)
}

// resize moves the grid into one new backing slice of rows x cols, keeping the
// overlapping cells at their positions.
func (t *Table) resize(rows, cols int) {
	next := make([]Cell, rows*cols)
	keep := min(cols, t.cols)
	for r := 0; r < min(rows, t.rows); r++ {
		copy(next[r*cols:r*cols+keep], t.cells[r*t.cols:r*t.cols+keep])
	}
	t.cells, t.rows, t.cols = next, rows, cols
}

// MoveRow relocates row from to position to. Rows strictly between shift one
// place toward from, so MoveRow(a, b) followed by MoveRow(b, a) is the identity.
func (t *Table) MoveRow(from, to int) {
	invariant.InRange(from, 1, t.rows, "from row")
	invariant.InRange(to, 1, t.rows, "to row")
	if from == to || t.cols == 0 {
		return
	}

	moving := make([]Cell, t.cols)
	copy(moving, t.cells[t.index(from, 1):t.index(from, 1)+t.cols])

	if from < to {
		// shift rows from+1..to up by one
		copy(t.cells[t.index(from, 1):t.index(to, 1)], t.cells[t.index(from+1, 1):t.index(to, 1)+t.cols])
	} else {
		// shift rows to..from-1 down by one
		copy(t.cells[t.index(to+1, 1):t.index(from, 1)+t.cols], t.cells[t.index(to, 1):t.index(from, 1)])
	}
	copy(t.cells[t.index(to, 1):], moving)
}

// MoveCol relocates column from to position to with the same rotation as MoveRow
func (t *Table) MoveCol(from, to int) {
	invariant.InRange(from, 1, t.cols, "from col")
	invariant.InRange(to, 1, t.cols, "to col")
	if from == to {
		return
	}

	step := 1
	if to < from {
		step = -1
	}
	for r := 1; r <= t.rows; r++ {
		moving := t.cells[t.index(r, from)]
		for c := from; c != to; c += step {
			t.cells[t.index(r, c)] = t.cells[t.index(r, c+step)]
		}
		t.cells[t.index(r, to)] = moving
	}
}

// SwapCells exchanges the contents of two cells
func (t *Table) SwapCells(r1, c1, r2, c2 int) {
	a, b := t.Cell(r1, c1), t.Cell(r2, c2)
	*a, *b = *b, *a
}

// SwapCols exchanges two whole columns
func (t *Table) SwapCols(a, b int) {
	invariant.InRange(a, 1, t.cols, "col")
	invariant.InRange(b, 1, t.cols, "col")
	for r := 1; r <= t.rows; r++ {
		t.SwapCells(r, a, r, b)
	}
}

// InsertRow inserts an empty row so that it ends up at position at (1..rows+1)
func (t *Table) InsertRow(at int) {
	invariant.InRange(at, 1, t.rows+1, "insert row")
	t.AddRow()
	t.MoveRow(t.rows, at)
}

// RemoveRow deletes the row at position at
func (t *Table) RemoveRow(at int) {
	invariant.InRange(at, 1, t.rows, "remove row")
	t.MoveRow(at, t.rows)
	t.DeleteRow()
}

// InsertCol inserts an empty column so that it ends up at position at (1..cols+1)
func (t *Table) InsertCol(at int) {
	invariant.InRange(at, 1, t.cols+1, "insert col")
	t.AddCol()
	t.MoveCol(t.cols, at)
}

// RemoveCol deletes the column at position at
func (t *Table) RemoveCol(at int) {
	invariant.InRange(at, 1, t.cols, "remove col")
	t.MoveCol(at, t.cols)
	t.DeleteCol()
}

// DeleteExcessCols trims trailing columns that are empty in every row
func (t *Table) DeleteExcessCols() {
	width := t.cols
	for width > 0 && t.colEmpty(width) {
		width--
	}
	if width != t.cols {
		t.resize(t.rows, width)
	}
}

func (t *Table) colEmpty(col int) bool {
	for r := 1; r <= t.rows; r++ {
		if t.cells[t.index(r, col)].value != "" {
			return false
		}
	}
	return true
}

// String renders the table dimensions for debugging
func (t *Table) String() string {
	return fmt.Sprintf("table(%dx%d, sel=%s)", t.rows, t.cols, t.selection)
}
