package parser

import (
	"strconv"
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/table"
)

// ParseSelection parses a selection literal: [row,col] or [r1,c1,r2,c2].
// Each token is a positive decimal integer or '_' for an open bound.
func ParseSelection(s string, opts ...ParserOpt) (table.Selection, error) {
	cfg := newConfig(opts)

	tokens, err := bracketTokens(s)
	if err != nil {
		return table.Selection{}, err
	}
	if len(tokens) != 2 && len(tokens) != 4 {
		return table.Selection{}, sperrors.Newf(sperrors.BadSyntax, "selection %q needs 2 or 4 coordinates, got %d", s, len(tokens))
	}

	bounds := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := parseBound(tok, cfg.explicitZeroBounds)
		if err != nil {
			return table.Selection{}, err.WithContext("selection", s)
		}
		bounds[i] = v
	}

	if len(bounds) == 2 {
		return table.CellAt(bounds[0], bounds[1]), nil
	}
	return table.Selection{
		StartRow: bounds[0],
		StartCol: bounds[1],
		EndRow:   bounds[2],
		EndCol:   bounds[3],
	}, nil
}

// ParseCoordinate parses a [row,col] target with two concrete positive indices
func ParseCoordinate(s string) (row, col int, err error) {
	tokens, err := bracketTokens(s)
	if err != nil {
		return 0, 0, err
	}
	if len(tokens) != 2 {
		return 0, 0, sperrors.Newf(sperrors.BadSyntax, "coordinate %q needs exactly 2 indices", s)
	}
	row, perr := parsePositive(tokens[0])
	if perr != nil {
		return 0, 0, perr
	}
	col, perr = parsePositive(tokens[1])
	if perr != nil {
		return 0, 0, perr
	}
	return row, col, nil
}

// ParseRegister parses a register reference _0 .. _9 and returns its digit
func ParseRegister(s string) (int, error) {
	if len(s) != 2 || s[0] != '_' || s[1] < '0' || s[1] > '9' {
		return 0, sperrors.Newf(sperrors.BadSyntax, "register %q must be _0 to _9", s)
	}
	return int(s[1] - '0'), nil
}

// ParseOffset parses a signed jump offset such as +3, -2 or 0
func ParseOffset(s string) (int, error) {
	if s == "" || strings.ContainsAny(s, " \t") {
		return 0, sperrors.Newf(sperrors.BadSyntax, "jump offset %q is not an integer", s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, sperrors.Wrap(sperrors.BadSyntax, "jump offset "+strconv.Quote(s)+" is not an integer", err)
	}
	return v, nil
}

func bracketTokens(s string) ([]string, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, sperrors.Newf(sperrors.BadSyntax, "%q must be enclosed in brackets", s)
	}
	return strings.Split(s[1:len(s)-1], ","), nil
}

func parseBound(tok string, zeroIsOpen bool) (int, *sperrors.SheetError) {
	if tok == "_" {
		return table.Open, nil
	}
	v, err := parseUnsigned(tok)
	if err != nil {
		return 0, err
	}
	if v == 0 && !zeroIsOpen {
		return 0, sperrors.New(sperrors.BadSyntax, "coordinates start at 1; use _ for an open bound")
	}
	return v, nil
}

func parsePositive(tok string) (int, *sperrors.SheetError) {
	v, err := parseUnsigned(tok)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, sperrors.New(sperrors.BadSyntax, "coordinates start at 1")
	}
	return v, nil
}

func parseUnsigned(tok string) (int, *sperrors.SheetError) {
	if tok == "" {
		return 0, sperrors.New(sperrors.BadSyntax, "empty coordinate")
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, sperrors.Newf(sperrors.BadSyntax, "coordinate %q is not a number", tok)
		}
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, sperrors.Wrap(sperrors.BadSyntax, "coordinate "+strconv.Quote(tok)+" is out of range", err)
	}
	return v, nil
}
