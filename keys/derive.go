package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// derivationDomain separates role-seed derivation from every other use of the
// hash. Changing it invalidates all previously derived role keys.
const derivationDomain = "mintlock-keystore-v1"

// ActorKeyFromSeed returns the actor-key string for an Ed25519 seed.
func ActorKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return ActorKeyFromPublicKey(AlgEd25519, pub)
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed from a
// root seed. The same root and role always yield the same subkey, so role
// keys never need independent backup.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha3.New256()
	_, _ = h.Write([]byte(derivationDomain))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
