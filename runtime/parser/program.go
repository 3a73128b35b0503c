package parser

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	sperrors "github.com/aledsdavies/sps/core/errors"
)

// SelectName is the catalog name of the coordinate selection command. It is
// empty: a bracketed literal like [1,2] is the whole argument.
const SelectName = ""

// Instruction is one parsed command and its literal argument
type Instruction struct {
	Name   string // catalog name, including any trailing space
	Arg    string // unescaped argument text
	Offset int    // byte offset of the command in the source text
}

// String renders the instruction back in command syntax (unescaped)
func (in Instruction) String() string {
	return in.Name + in.Arg
}

// Program is the ordered instruction list executed by the interpreter
type Program struct {
	Instructions []Instruction
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.Instructions)
}

// ParseProgram splits command text into instructions.
//
// At each position the longest name in catalog that prefixes the remaining text
// is the command. A position starting with '[' that matches no name is a
// coordinate selection. The argument runs to the next unescaped ';' or newline
// and is unescaped with ParseField rules.
func ParseProgram(text string, catalog []string, opts ...ParserOpt) (*Program, error) {
	cfg := newConfig(opts)
	text = strings.TrimRight(text, "\r\n")

	names := sortedNames(catalog)
	prog := &Program{}
	pos := 0

	for pos < len(text) {
		rest := text[pos:]
		name, ok := matchName(rest, names)
		if !ok {
			if rest[0] != '[' {
				word := leadingWord(rest)
				return nil, sperrors.NewCommandNotFoundError(word, pos, suggest(word, catalog))
			}
			name = SelectName
		}

		field, err := ParseField(rest[len(name):], ";")
		if err != nil {
			kind, _ := sperrors.KindOf(err)
			if kind == sperrors.BadFormat {
				kind = sperrors.BadSyntax
			}
			return nil, sperrors.Wrap(kind, "argument of "+strings.TrimSpace(displayName(name))+" is malformed", err).
				WithContext("offset", pos)
		}

		in := Instruction{Name: name, Arg: field.Value, Offset: pos}
		prog.Instructions = append(prog.Instructions, in)
		cfg.logger.Debug("parsed instruction", "index", len(prog.Instructions)-1, "command", displayName(name), "arg", in.Arg, "offset", pos)

		pos += len(name) + field.Consumed
	}

	return prog, nil
}

// matchName returns the longest name prefixing rest. names must be sorted longest first.
func matchName(rest string, names []string) (string, bool) {
	for _, n := range names {
		if n != "" && strings.HasPrefix(rest, n) {
			return n, true
		}
	}
	return "", false
}

func sortedNames(catalog []string) []string {
	names := append([]string(nil), catalog...)
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}

// leadingWord returns the text up to the first separator, for error messages
func leadingWord(rest string) string {
	if i := strings.IndexAny(rest, "; \n"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// suggest finds the closest catalog name to word
func suggest(word string, catalog []string) string {
	if word == "" {
		return ""
	}

	var targets []string
	for _, n := range catalog {
		if n != "" {
			targets = append(targets, strings.TrimSpace(n))
		}
	}

	ranks := fuzzy.RankFindFold(word, targets)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, target := range targets {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(word), target); d < bestDist {
			best, bestDist = target, d
		}
	}
	return best
}

func displayName(name string) string {
	if name == SelectName {
		return "[selection]"
	}
	return name
}
