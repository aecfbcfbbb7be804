package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/policy"
)

func TestSigningBytesExcludeSignature(t *testing.T) {
	env := &Envelope{
		Op:         OpMint,
		Collection: "0xc011ec7104c011ec7104c011ec7104c011ec7104",
		Params:     json.RawMessage(`{"to":"0x2222222222222222222222222222222222222222"}`),
		Nonce:      7,
		ActorKey:   "ed25519:AAAA",
		Signature:  "sig-one",
	}
	a, err := env.SigningBytes()
	if err != nil {
		t.Fatalf("SigningBytes: %v", err)
	}
	env.Signature = "sig-two"
	b, err := env.SigningBytes()
	if err != nil {
		t.Fatalf("SigningBytes(2): %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("signature leaked into signing bytes")
	}

	env.Nonce = 8
	c, err := env.SigningBytes()
	if err != nil {
		t.Fatalf("SigningBytes(3): %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatalf("nonce change did not change signing bytes")
	}
}

func TestFromErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{policy.ErrUnauthorized, CodeUnauthorized},
		{policy.ErrInvalidManager, CodeInvalidManager},
		{policy.ErrManagerSwapBlocked, CodeManagerSwapBlocked},
		{policy.ErrRoyaltyBPSInvalid, CodeRoyaltyBPSInvalid},
		{policy.ErrAddressFiltered, CodeAddressFiltered},
		{collection.ErrTokenDoesNotExist, CodeTokenDoesNotExist},
		{collection.ErrSupplyFrozen, CodeSupplyFrozen},
		{collection.ErrNotFound, CodeNotFound},
		{errors.New("who knows"), CodeInternal},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		if got.Code != tc.code {
			t.Errorf("FromError(%v).Code = %s, want %s", tc.err, got.Code, tc.code)
		}
	}
	if FromError(nil) != nil {
		t.Errorf("FromError(nil) != nil")
	}
}

func TestFromErrorUnwrapsAndPassesThrough(t *testing.T) {
	wrapped := fmt.Errorf("while minting: %w", collection.ErrSupplyCapReached)
	if got := FromError(wrapped); got.Code != CodeSupplyCapReached {
		t.Fatalf("wrapped sentinel: got %s", got.Code)
	}

	coded := NewError(CodeBadNonce, "nonce 3 <= 5")
	if got := FromError(coded); got != coded {
		t.Fatalf("CodedError did not pass through")
	}
}
