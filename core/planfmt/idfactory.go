package planfmt

import (
	"encoding/base32"
	"fmt"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// displayEncoding renders display IDs in lowercase without padding
var displayEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DisplayID returns a short stable identifier for the plan, e.g. "sps:k3q7x2ab".
// It is derived from the canonical hash, so equal plans share an ID.
func DisplayID(p *Plan) (string, error) {
	planHash, err := p.Canonicalize().Hash()
	if err != nil {
		return "", fmt.Errorf("failed to compute canonical hash: %w", err)
	}

	info := []byte("sps/displayid/plan/v1")
	kdf := hkdf.New(sha3.New256, planHash[:], nil, info)

	key := make([]byte, 5)
	if _, err := kdf.Read(key); err != nil {
		return "", fmt.Errorf("failed to derive display key: %w", err)
	}
	return "sps:" + strings.ToLower(displayEncoding.EncodeToString(key)), nil
}
