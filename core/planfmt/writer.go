package planfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

const (
	// Magic is the file magic number "SPSP" (4 bytes)
	Magic = "SPSP"

	// Version is the format version (uint16, little-endian)
	// 0x0001 = version 1.0
	Version uint16 = 0x0001

	// preambleLen is MAGIC(4) | VERSION(2) | FLAGS(2) | BODY_LEN(4)
	preambleLen = 12

	// MaxBodyLen bounds the CBOR body accepted by Decode
	MaxBodyLen = 16 * 1024 * 1024
)

// Flags is a bitmask for optional features. No flags are defined yet.
type Flags uint16

// Encode writes p to w and returns the 32-byte body digest (BLAKE2b-256).
//
// Format: MAGIC(4) | VERSION(2) | FLAGS(2) | BODY_LEN(4) | BODY | DIGEST(32)
//
// BODY is the canonical CBOR encoding of the plan and DIGEST its BLAKE2b-256 hash.
func Encode(w io.Writer, p *Plan) ([32]byte, error) {
	if err := p.Validate(); err != nil {
		return [32]byte{}, fmt.Errorf("invalid plan: %w", err)
	}

	body, err := p.Canonicalize().MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	if len(body) > MaxBodyLen {
		return [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", len(body), MaxBodyLen)
	}
	digest := blake2b.Sum256(body)

	var buf bytes.Buffer
	buf.Grow(preambleLen + len(body) + len(digest))
	if err := writePreamble(&buf, uint32(len(body))); err != nil {
		return [32]byte{}, err
	}
	buf.Write(body)
	buf.Write(digest[:])

	if _, err := w.Write(buf.Bytes()); err != nil {
		return [32]byte{}, err
	}
	return digest, nil
}

// writePreamble writes the fixed-size preamble
func writePreamble(buf *bytes.Buffer, bodyLen uint32) error {
	if _, err := buf.WriteString(Magic); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, Version); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(Flags(0))); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, bodyLen)
}
