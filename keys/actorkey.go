package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"mintlock.io/mintlock/addr"
)

// Signature algorithms accepted in admin envelopes.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// ActorKeyFromPublicKey encodes a raw public key into the actor-key string
// "alg:" + base64(pubkey).
func ActorKeyFromPublicKey(alg string, pub []byte) string {
	return alg + ":" + base64.StdEncoding.EncodeToString(pub)
}

// ParseActorKey splits an actor-key string into its algorithm and raw public
// key bytes, validating the key length for the named algorithm.
func ParseActorKey(actorKey string) (alg string, pub []byte, err error) {
	alg, b64, ok := strings.Cut(actorKey, ":")
	if !ok {
		return "", nil, fmt.Errorf("malformed actor key: missing algorithm prefix")
	}
	pub, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("malformed actor key: %w", err)
	}
	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return "", nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
		}
	case AlgDilithium3:
		if len(pub) != mode3.PublicKeySize {
			return "", nil, fmt.Errorf("dilithium3 public key must be %d bytes, got %d", mode3.PublicKeySize, len(pub))
		}
	default:
		return "", nil, fmt.Errorf("unsupported actor key algorithm: %q", alg)
	}
	return alg, pub, nil
}

// ActorAddress derives the on-registry address for an actor-key string.
func ActorAddress(actorKey string) (addr.Address, error) {
	_, pub, err := ParseActorKey(actorKey)
	if err != nil {
		return addr.Zero, err
	}
	return addr.FromPublicKey(pub), nil
}
