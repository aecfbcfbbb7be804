// Package addr defines the 20-byte account address used to identify actors,
// collections, and external registries.
package addr

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Size is the address length in bytes.
const Size = 20

// Address identifies an account. The zero value is the "unset" address.
type Address [Size]byte

// Zero is the unset address.
var Zero Address

// Defined reports whether a is a non-zero address.
func (a Address) Defined() bool {
	return a != Zero
}

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Parse decodes a 0x-prefixed (or bare) 40-hex-char address string.
func Parse(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != Size*2 {
		return Zero, errors.New("addr: address must be 20 bytes of hex")
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return Zero, errors.New("addr: invalid hex")
	}
	copy(a[:], b)
	return a, nil
}

// MustParse is Parse that panics on error. For tests and fixtures.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromPublicKey derives an address from raw public key bytes: the last 20
// bytes of sha3-256(pub). The mapping is stable across key algorithms because
// it hashes the raw encoded key.
func FromPublicKey(pub []byte) Address {
	sum := sha3.Sum256(pub)
	var a Address
	copy(a[:], sum[len(sum)-Size:])
	return a
}

// Derive produces a deterministic address from a domain-separated byte
// sequence. Used to assign collection addresses at creation time.
func Derive(parts ...[]byte) Address {
	h := sha3.New256()
	for _, p := range parts {
		_, _ = h.Write(p)
		_, _ = h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	var a Address
	copy(a[:], sum[len(sum)-Size:])
	return a
}
