// Package sheetio reads and writes tables in the delimited text format.
//
// Fields are separated by any byte of a delimiter set and rows by '\n'. A
// field may be double-quoted when the quote is its first byte, and any byte
// may be backslash-escaped. Output uses only the primary delimiter (the first
// byte of the set) and quotes a cell iff it contains that delimiter or a quote.
package sheetio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/parser"
)

// DefaultDelimiters is used when the caller supplies none
const DefaultDelimiters = " "

// ValidateDelimiters rejects delimiter sets that could never round-trip
func ValidateDelimiters(delims string) error {
	if delims == "" {
		return sperrors.New(sperrors.BadInput, "delimiter set is empty")
	}
	if i := strings.IndexAny(delims, "\n\"\\"); i >= 0 {
		return sperrors.Newf(sperrors.BadInput, "delimiter %q is reserved", delims[i])
	}
	return nil
}

// Load parses a whole table from r. The primary delimiter is delims[0].
func Load(r io.Reader, delims string) (*table.Table, error) {
	if err := ValidateDelimiters(delims); err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return Parse(string(buf), delims)
}

// Parse builds a table from src. Short rows are padded with empty cells.
func Parse(src, delims string) (*table.Table, error) {
	if err := ValidateDelimiters(delims); err != nil {
		return nil, err
	}

	var rows [][]string
	var cur []string
	last := parser.TermEOF
	for pos := 0; pos < len(src); {
		f, err := parser.ParseField(src[pos:], delims)
		if err != nil {
			var se *sperrors.SheetError
			if errors.As(err, &se) {
				return nil, se.WithContext("row", len(rows)+1).WithContext("col", len(cur)+1)
			}
			return nil, err
		}
		pos += f.Consumed
		last = f.Term

		switch f.Term {
		case parser.TermDelimiter:
			cur = append(cur, f.Value)
		case parser.TermNewline:
			rows = append(rows, append(cur, f.Value))
			cur = nil
		case parser.TermEOF:
			// a final row without '\n' still counts
			if f.Value != "" || len(cur) > 0 {
				cur = append(cur, f.Value)
			}
		}
	}

	// "a," ends with an empty field
	if last == parser.TermDelimiter {
		cur = append(cur, "")
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	return table.FromRows(delims[0], rows)
}

// Write serializes every row and column of t, including empty trailing columns
func Write(w io.Writer, t *table.Table) error {
	var buf bytes.Buffer
	delim := t.Delim()
	for r := 1; r <= t.Rows(); r++ {
		if t.Cols() == 0 {
			continue
		}
		for c := 1; c <= t.Cols(); c++ {
			if c > 1 {
				buf.WriteByte(delim)
			}
			buf.WriteString(Quote(t.Get(r, c), delim))
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Save trims trailing empty columns and writes t
func Save(w io.Writer, t *table.Table) error {
	t.DeleteExcessCols()
	return Write(w, t)
}

// Quote renders one cell in output format
func Quote(v string, delim byte) string {
	needsQuotes := strings.IndexByte(v, delim) >= 0 || strings.IndexByte(v, '"') >= 0
	if !needsQuotes && strings.IndexByte(v, '\\') < 0 {
		return v
	}

	var b strings.Builder
	if needsQuotes {
		b.WriteByte('"')
	}
	for i := 0; i < len(v); i++ {
		if v[i] == '"' || v[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(v[i])
	}
	if needsQuotes {
		b.WriteByte('"')
	}
	return b.String()
}

// LoadFile reads a table from path; open failures are FileAccess errors
func LoadFile(path, delims string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sperrors.NewFileAccessError(path, err)
	}
	defer f.Close()
	return Load(f, delims)
}

// SaveFile trims and writes t to path, replacing its contents
func SaveFile(path string, t *table.Table) error {
	var buf bytes.Buffer
	if err := Save(&buf, t); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return sperrors.NewFileAccessError(path, err)
	}
	return nil
}
