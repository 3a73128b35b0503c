package table

import (
	"fmt"
	"strconv"

	sperrors "github.com/aledsdavies/sps/core/errors"
)

// Open marks a selection bound that resolves against the current table extent
const Open = 0

// Selection is a rectangle of cells. Each bound is a 1-based index or Open.
type Selection struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// WholeTable selects every cell, whatever the table size is at resolution time
func WholeTable() Selection {
	return Selection{}
}

// CellAt selects the single cell (row, col)
func CellAt(row, col int) Selection {
	return Selection{StartRow: row, StartCol: col, EndRow: row, EndCol: col}
}

// String renders the selection in command syntax, e.g. [1,_,3,_]
func (s Selection) String() string {
	bound := func(v int) string {
		if v == Open {
			return "_"
		}
		return strconv.Itoa(v)
	}
	if s.StartRow == s.EndRow && s.StartCol == s.EndCol {
		return fmt.Sprintf("[%s,%s]", bound(s.StartRow), bound(s.StartCol))
	}
	return fmt.Sprintf("[%s,%s,%s,%s]", bound(s.StartRow), bound(s.StartCol), bound(s.EndRow), bound(s.EndCol))
}

// Rect is a resolved selection with concrete, non-inverted bounds
type Rect struct {
	Top, Left, Bottom, Right int
}

// Single reports whether the rectangle covers exactly one cell
func (r Rect) Single() bool {
	return r.Top == r.Bottom && r.Left == r.Right
}

// Height returns the number of rows covered
func (r Rect) Height() int { return r.Bottom - r.Top + 1 }

// Width returns the number of columns covered
func (r Rect) Width() int { return r.Right - r.Left + 1 }

// Selection returns the active selection
func (t *Table) Selection() Selection { return t.selection }

// Restore replaces the active selection without validation or growth.
// It is used to load a stored snapshot.
func (t *Table) Restore(s Selection) { t.selection = s }

// UpperBound resolves the first selected row
func (t *Table) UpperBound() int {
	if t.selection.StartRow == Open {
		return 1
	}
	return t.selection.StartRow
}

// LowerBound resolves the last selected row. An open end never resolves above the start.
func (t *Table) LowerBound() int {
	if t.selection.EndRow == Open {
		return max(t.rows, 1, t.UpperBound())
	}
	return t.selection.EndRow
}

// LeftBound resolves the first selected column
func (t *Table) LeftBound() int {
	if t.selection.StartCol == Open {
		return 1
	}
	return t.selection.StartCol
}

// RightBound resolves the last selected column
func (t *Table) RightBound() int {
	if t.selection.EndCol == Open {
		return max(t.cols, 1, t.LeftBound())
	}
	return t.selection.EndCol
}

// Resolve returns the active selection as concrete bounds
func (t *Table) Resolve() Rect {
	return Rect{
		Top:    t.UpperBound(),
		Left:   t.LeftBound(),
		Bottom: t.LowerBound(),
		Right:  t.RightBound(),
	}
}

// Materialize resolves the selection and grows the table so every selected cell exists
func (t *Table) Materialize() (Rect, error) {
	r := t.Resolve()
	if err := t.AssureSize(r.Bottom, r.Right); err != nil {
		return Rect{}, err
	}
	return r, nil
}

// SelectCell collapses the selection onto (row, col), growing the table to include it
func (t *Table) SelectCell(row, col int) error {
	if row < 1 || col < 1 {
		return sperrors.Newf(sperrors.BadSelection, "cell [%d,%d] is outside the table", row, col)
	}
	if err := t.AssureSize(row, col); err != nil {
		return err
	}
	t.selection = CellAt(row, col)
	return nil
}

// SelectRectangle validates s and makes it the active selection.
// Concrete bounds must be positive and non-inverted; the table grows to
// include every concrete corner.
func (t *Table) SelectRectangle(s Selection) error {
	if s.StartRow < 0 || s.StartCol < 0 || s.EndRow < 0 || s.EndCol < 0 {
		return sperrors.Newf(sperrors.BadSelection, "selection %s has a negative bound", s)
	}
	if inverted(s.StartRow, s.EndRow) || inverted(s.StartCol, s.EndCol) {
		return sperrors.Newf(sperrors.BadSelection, "selection %s is inverted", s)
	}
	if err := t.AssureSize(max(s.StartRow, s.EndRow), max(s.StartCol, s.EndCol)); err != nil {
		return err
	}
	t.selection = s
	return nil
}

func inverted(start, end int) bool {
	return start != Open && end != Open && start > end
}

// SelectedCell returns the coordinates of the only selected cell.
// It fails with BadSelection when the selection covers more than one cell.
func (t *Table) SelectedCell() (row, col int, err error) {
	r := t.Resolve()
	if !r.Single() {
		return 0, 0, sperrors.Newf(sperrors.BadSelection, "selection %s covers %dx%d cells, want exactly one",
			t.selection, r.Height(), r.Width())
	}
	if err := t.AssureSize(r.Top, r.Left); err != nil {
		return 0, 0, err
	}
	return r.Top, r.Left, nil
}

// Each calls fn for every selected cell that exists, in row-major order.
// Iteration stops early when fn returns false.
func (t *Table) Each(fn func(row, col int, value string) bool) {
	r := t.Resolve()
	for row := r.Top; row <= min(r.Bottom, t.rows); row++ {
		for col := r.Left; col <= min(r.Right, t.cols); col++ {
			if !fn(row, col, t.cells[t.index(row, col)].value) {
				return
			}
		}
	}
}

// SelectMinMax collapses the selection onto the smallest (or largest) numeric cell.
// Ties keep the first cell in row-major order. Non-numeric cells are skipped; if
// none is numeric the selection is left unchanged.
func (t *Table) SelectMinMax(wantMax bool) {
	found := false
	var best float64
	var bestRow, bestCol int

	t.Each(func(row, col int, value string) bool {
		v, ok := ParseNumber(value)
		if !ok {
			return true
		}
		if !found || (wantMax && v > best) || (!wantMax && v < best) {
			found = true
			best, bestRow, bestCol = v, row, col
		}
		return true
	})

	if found {
		t.selection = CellAt(bestRow, bestCol)
	}
}

// Find collapses the selection onto the first cell accepted by match.
// It reports whether a cell was found; a miss leaves the selection unchanged.
func (t *Table) Find(match func(value string) bool) bool {
	found := false
	t.Each(func(row, col int, value string) bool {
		if match(value) {
			t.selection = CellAt(row, col)
			found = true
			return false
		}
		return true
	})
	return found
}
