package keys

import (
	"bytes"
	"crypto/ed25519"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s
}

func TestStoreRootKeyLifecycle(t *testing.T) {
	s := testStore(t)
	seed := bytes.Repeat([]byte{1}, ed25519.SeedSize)

	actorKey, _, err := s.InitRootKey("creator", seed, false)
	if err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	if actorKey != ActorKeyFromSeed(seed) {
		t.Fatalf("actor key mismatch")
	}

	// Second init without overwrite must refuse.
	if _, _, err := s.InitRootKey("creator", seed, false); err == nil {
		t.Fatalf("InitRootKey clobbered existing key")
	}
	if _, _, err := s.InitRootKey("creator", seed, true); err != nil {
		t.Fatalf("InitRootKey overwrite: %v", err)
	}

	got, err := s.ActorKey("creator", "")
	if err != nil {
		t.Fatalf("ActorKey: %v", err)
	}
	if got != actorKey {
		t.Fatalf("ActorKey mismatch after reload")
	}
}

func TestStoreDeriveRoleKey(t *testing.T) {
	s := testStore(t)
	seed := bytes.Repeat([]byte{2}, ed25519.SeedSize)
	if _, _, err := s.InitRootKey("creator", seed, false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}

	roleKey, _, err := s.DeriveRoleKey("creator", "minting", false)
	if err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}

	wantSeed, err := DeriveRoleSeed(seed, "minting")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if roleKey != ActorKeyFromSeed(wantSeed) {
		t.Fatalf("role key does not match derivation")
	}

	loaded, err := s.Seed("creator", "minting")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !bytes.Equal(loaded, wantSeed) {
		t.Fatalf("stored role seed mismatch")
	}

	if _, _, err := s.DeriveRoleKey("ghost", "minting", false); err == nil {
		t.Fatalf("DeriveRoleKey from missing root accepted")
	}
}

func TestStoreResolveSeedPrecedence(t *testing.T) {
	s := testStore(t)
	stored := bytes.Repeat([]byte{4}, ed25519.SeedSize)
	if _, _, err := s.InitRootKey("creator", stored, false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}

	literal := "0x" + "06060606060606060606060606060606" + "06060606060606060606060606060606"
	seed, err := s.ResolveSeed(literal, "creator", "", "")
	if err != nil {
		t.Fatalf("ResolveSeed(literal): %v", err)
	}
	if bytes.Equal(seed, stored) {
		t.Fatalf("literal seed should win over store entry")
	}

	seed, err = s.ResolveSeed("", "creator", "", "")
	if err != nil {
		t.Fatalf("ResolveSeed(name): %v", err)
	}
	if !bytes.Equal(seed, stored) {
		t.Fatalf("named resolution returned wrong seed")
	}

	if _, err := s.ResolveSeed("", "", "", ""); err == nil {
		t.Fatalf("empty resolution accepted")
	}
}

func TestStoreList(t *testing.T) {
	s := testStore(t)
	if entries, err := s.List(); err != nil || entries != nil {
		t.Fatalf("List on missing dir: entries=%v err=%v", entries, err)
	}

	seed := bytes.Repeat([]byte{8}, ed25519.SeedSize)
	for _, name := range []string{"beta", "alpha"} {
		if _, _, err := s.InitRootKey(name, seed, false); err != nil {
			t.Fatalf("InitRootKey(%s): %v", name, err)
		}
	}
	if _, _, err := s.DeriveRoleKey("alpha", "royalty", false); err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "alpha" || entries[1].Name != "beta" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Roles) != 1 || entries[0].Roles[0] != "royalty" {
		t.Fatalf("unexpected roles for alpha: %+v", entries[0].Roles)
	}
}

func TestCheckKeyName(t *testing.T) {
	for _, ok := range []string{"creator", "Key-1", "a_b"} {
		if err := CheckKeyName(ok); err != nil {
			t.Errorf("CheckKeyName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a/b", "dot.", "sp ace"} {
		if err := CheckKeyName(bad); err == nil {
			t.Errorf("CheckKeyName(%q) accepted", bad)
		}
	}
}
