package planfmt

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// CanonicalVersion is the version of the canonical encoding
const CanonicalVersion uint8 = 1

// CanonicalPlan is the intermediate form for deterministic hashing and storage.
// The dialect is part of it: the same text under two dialects behaves
// differently and must hash differently.
type CanonicalPlan struct {
	Version      uint8
	Dialect      string
	Instructions []CanonicalInstruction
}

// CanonicalInstruction is an instruction in canonical form
type CanonicalInstruction struct {
	Name string
	Arg  string
}

// Canonicalize converts the plan to canonical form
func (p *Plan) Canonicalize() *CanonicalPlan {
	cp := &CanonicalPlan{
		Version:      CanonicalVersion,
		Dialect:      p.Dialect,
		Instructions: make([]CanonicalInstruction, len(p.Instructions)),
	}
	for i, in := range p.Instructions {
		cp.Instructions[i] = CanonicalInstruction(in)
	}
	return cp
}

// Plan converts the canonical form back to a plan
func (cp *CanonicalPlan) Plan() *Plan {
	p := &Plan{
		Dialect:      cp.Dialect,
		Instructions: make([]Instruction, len(cp.Instructions)),
	}
	for i, in := range cp.Instructions {
		p.Instructions[i] = Instruction(in)
	}
	return p
}

// MarshalBinary produces deterministic CBOR encoding of the canonical plan.
// Uses CBOR canonical encoding (RFC 7049 Section 3.9) for determinism.
func (cp *CanonicalPlan) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// Use type alias to avoid infinite recursion
	// (CBOR would call MarshalBinary recursively otherwise)
	type canonicalPlanAlias CanonicalPlan
	data, err := encMode.Marshal((*canonicalPlanAlias)(cp))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canonical plan: %w", err)
	}
	return data, nil
}

// UnmarshalCanonical decodes a canonical plan, rejecting unknown versions
// and malformed maps.
func UnmarshalCanonical(data []byte) (*CanonicalPlan, error) {
	decMode, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: MaxInstructions,
		MaxNestedLevels:  8,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR decoder: %w", err)
	}

	type canonicalPlanAlias CanonicalPlan
	var alias canonicalPlanAlias
	if err := decMode.Unmarshal(data, &alias); err != nil {
		return nil, fmt.Errorf("failed to unmarshal canonical plan: %w", err)
	}

	cp := (*CanonicalPlan)(&alias)
	if cp.Version != CanonicalVersion {
		return nil, fmt.Errorf("unsupported canonical version %d, expected %d", cp.Version, CanonicalVersion)
	}
	return cp, nil
}

// Hash computes the SHA3-256 hash of the canonical plan
func (cp *CanonicalPlan) Hash() ([32]byte, error) {
	data, err := cp.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return sha3.Sum256(data), nil
}
