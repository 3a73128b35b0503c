package planfmt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// ErrDigestMismatch reports a plan file whose body does not match its digest
var ErrDigestMismatch = errors.New("plan digest mismatch")

// Decode reads a plan written by Encode and returns it with its body digest.
// The stored digest is verified before the body is decoded.
func Decode(r io.Reader) (*Plan, [32]byte, error) {
	var preamble [preambleLen]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	magic := string(preamble[0:4])
	if magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("invalid magic: got %q, expected %q", magic, Magic)
	}

	version := binary.LittleEndian.Uint16(preamble[4:6])
	if version != Version {
		return nil, [32]byte{}, fmt.Errorf("unsupported version: got 0x%04x, expected 0x%04x", version, Version)
	}

	// Reject unknown flags for this version
	flags := Flags(binary.LittleEndian.Uint16(preamble[6:8]))
	if flags != 0 {
		return nil, [32]byte{}, fmt.Errorf("unsupported flags: 0x%04x", uint16(flags))
	}

	// Validate length to prevent OOM on corrupt input
	bodyLen := binary.LittleEndian.Uint32(preamble[8:12])
	if bodyLen > MaxBodyLen {
		return nil, [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", bodyLen, MaxBodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read body: %w", err)
	}

	var stored [32]byte
	if _, err := io.ReadFull(r, stored[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read digest: %w", err)
	}
	digest := blake2b.Sum256(body)
	if !bytes.Equal(stored[:], digest[:]) {
		return nil, [32]byte{}, fmt.Errorf("%w: stored %x, computed %x", ErrDigestMismatch, stored[:8], digest[:8])
	}

	cp, err := UnmarshalCanonical(body)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse body: %w", err)
	}
	plan := cp.Plan()
	if err := plan.Validate(); err != nil {
		return nil, [32]byte{}, fmt.Errorf("invalid plan: %w", err)
	}
	return plan, digest, nil
}
