// Package vars holds interpreter memory: ten string registers and one stored selection.
package vars

import (
	"github.com/aledsdavies/sps/core/invariant"
	"github.com/aledsdavies/sps/core/table"
)

// NumRegisters is the number of scalar registers, _0 through _9
const NumRegisters = 10

// Store is created fresh for every program execution
type Store struct {
	registers [NumRegisters]string
	selection table.Selection
}

// New returns a store with empty registers and a stored selection covering the whole table
func New() *Store {
	return &Store{selection: table.WholeTable()}
}

// Get returns register n
func (s *Store) Get(n int) string {
	invariant.InRange(n, 0, NumRegisters-1, "register")
	return s.registers[n]
}

// Set overwrites register n
func (s *Store) Set(n int, v string) {
	invariant.InRange(n, 0, NumRegisters-1, "register")
	s.registers[n] = v
}

// Selection returns the stored selection snapshot
func (s *Store) Selection() table.Selection {
	return s.selection
}

// SaveSelection replaces the stored selection snapshot
func (s *Store) SaveSelection(sel table.Selection) {
	s.selection = sel
}
