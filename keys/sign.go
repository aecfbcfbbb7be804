package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// ErrBadSignature is returned when an envelope signature does not verify.
var ErrBadSignature = errors.New("keys: signature verification failed")

// Digest returns the sha3-256 digest all envelope signatures are made over.
func Digest(message []byte) []byte {
	sum := sha3.Sum256(message)
	return sum[:]
}

// SignEd25519 returns a base64 Ed25519 signature over Digest(message).
func SignEd25519(message []byte, privateKey ed25519.PrivateKey) string {
	sig := ed25519.Sign(privateKey, Digest(message))
	return base64.StdEncoding.EncodeToString(sig)
}

// SignDilithium3 returns a base64 Dilithium3 signature over Digest(message).
func SignDilithium3(message []byte, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("missing private key")
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, Digest(message), sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over Digest(message) against a raw public
// key of the named algorithm. It returns ErrBadSignature when the signature
// is well-formed but wrong.
func Verify(alg string, pub []byte, message []byte, sigB64 string) error {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", err)
	}
	digest := Digest(message)
	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return fmt.Errorf("ed25519 public key must be %d bytes", ed25519.PublicKeySize)
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
			return ErrBadSignature
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if len(pub) != mode3.PublicKeySize {
			return fmt.Errorf("dilithium3 public key must be %d bytes", mode3.PublicKeySize)
		}
		pk.Unpack((*[mode3.PublicKeySize]byte)(pub))
		if !mode3.Verify(&pk, digest, sig) {
			return ErrBadSignature
		}
	default:
		return fmt.Errorf("unsupported actor key algorithm: %q", alg)
	}
	return nil
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
