package parser

import (
	"strings"

	sperrors "github.com/aledsdavies/sps/core/errors"
)

// Terminator identifies what ended a field
type Terminator int

const (
	TermEOF       Terminator = iota // ran out of input
	TermDelimiter                   // a byte from the delimiter set
	TermNewline                     // a literal '\n'
)

func (t Terminator) String() string {
	switch t {
	case TermEOF:
		return "eof"
	case TermDelimiter:
		return "delimiter"
	case TermNewline:
		return "newline"
	default:
		return "unknown"
	}
}

// Field is one unescaped value scanned from the front of a source buffer
type Field struct {
	Value    string
	Consumed int        // source bytes scanned, including the terminator byte (none at EOF)
	Term     Terminator // what ended the field
	Delim    byte       // the delimiter byte when Term == TermDelimiter
}

// ParseField scans one field from the front of src.
//
// A backslash copies the next byte literally. A '"' at byte 0 opens a quoted
// section that runs to the next unescaped '"'; delimiters inside it are data.
// Outside quotes, any byte in delims ends the field. A newline always ends the
// field and may be neither escaped nor quoted.
func ParseField(src, delims string) (Field, error) {
	var b strings.Builder
	quoted, escaped := false, false

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if ch == '\n' {
			if escaped || quoted {
				return Field{}, sperrors.Newf(sperrors.BadFormat, "newline inside %s field at byte %d", fieldState(escaped), i)
			}
			return Field{Value: b.String(), Consumed: i + 1, Term: TermNewline}, nil
		}

		if escaped {
			b.WriteByte(ch)
			escaped = false
			continue
		}

		switch {
		case ch == '\\':
			escaped = true
		case ch == '"' && i == 0:
			quoted = true
		case ch == '"' && quoted:
			quoted = false
		case !quoted && strings.IndexByte(delims, ch) >= 0:
			return Field{Value: b.String(), Consumed: i + 1, Term: TermDelimiter, Delim: ch}, nil
		default:
			b.WriteByte(ch)
		}
	}

	if escaped {
		return Field{}, sperrors.New(sperrors.BadFormat, "dangling escape at end of input")
	}
	if quoted {
		return Field{}, sperrors.New(sperrors.BadFormat, "unterminated quote")
	}
	return Field{Value: b.String(), Consumed: len(src), Term: TermEOF}, nil
}

func fieldState(escaped bool) string {
	if escaped {
		return "escaped"
	}
	return "quoted"
}
