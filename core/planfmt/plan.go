// Package planfmt freezes parsed programs into plans: an ordered instruction
// list plus the dialect it was parsed under. Plans have a canonical CBOR
// encoding, a content hash and a small binary file format so a program can be
// compiled once and executed many times.
package planfmt

import (
	"fmt"
	"math"
	"strings"
)

// SelectName is the instruction name of a coordinate selection such as [1,2]
const SelectName = ""

// MaxInstructions bounds a plan so every count fits the binary format
const MaxInstructions = math.MaxUint16

// Plan is a parsed program ready for inspection, hashing or storage
type Plan struct {
	Dialect      string        // Dialect version the program was parsed under
	Instructions []Instruction // Program order
}

// Instruction is one command name and its unescaped argument
type Instruction struct {
	Name string
	Arg  string
}

// Source renders the instruction in command syntax. Bytes the argument parser
// would treat specially are escaped so the text parses back to the same instruction.
func (in Instruction) Source() string {
	if !strings.ContainsAny(in.Arg, "\\;\"") {
		return in.Name + in.Arg
	}
	var b strings.Builder
	b.WriteString(in.Name)
	for i := 0; i < len(in.Arg); i++ {
		switch in.Arg[i] {
		case '\\', ';', '"':
			b.WriteByte('\\')
		}
		b.WriteByte(in.Arg[i])
	}
	return b.String()
}

// Source renders the whole plan as command text
func (p *Plan) Source() string {
	parts := make([]string, len(p.Instructions))
	for i, in := range p.Instructions {
		parts[i] = in.Source()
	}
	return strings.Join(parts, ";")
}

// Validate checks the structural limits of the plan
func (p *Plan) Validate() error {
	if p.Dialect == "" {
		return fmt.Errorf("plan has no dialect")
	}
	if len(p.Instructions) > MaxInstructions {
		return fmt.Errorf("instruction count %d exceeds maximum %d", len(p.Instructions), MaxInstructions)
	}
	for i, in := range p.Instructions {
		if strings.ContainsRune(in.Arg, '\n') {
			return fmt.Errorf("instruction %d: argument contains a newline", i+1)
		}
	}
	return nil
}

// Hash returns the hex SHA3-256 digest of the canonical encoding: "sha3-256:<hex>"
func (p *Plan) Hash() (string, error) {
	digest, err := p.Canonicalize().Hash()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sha3-256:%x", digest), nil
}
