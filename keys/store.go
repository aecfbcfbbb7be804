package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a local-first keystore backed by the filesystem.
//
// Layout under Directory:
//
//	<name>/root.key          hex Ed25519 seed, one per named key
//	<name>/roles/<role>.key  deterministically derived role subkeys
//
// Seeds are stored as hex with 0600 permissions. Only Ed25519 seeds live on
// disk; Dilithium3 keys are generated per session and carried in envelopes.
type Store struct {
	Directory string
}

type Entry struct {
	Name  string
	Roles []string
}

// DefaultDirectory returns ~/.mintlock/keys.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".mintlock", "keys"), nil
}

// OpenStore opens a keystore rooted at directory, falling back to
// DefaultDirectory when directory is empty. The directory is created lazily
// on first write.
func OpenStore(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) rootKeyPath(name string) string {
	return filepath.Join(s.Directory, name, "root.key")
}

func (s *Store) roleKeyPath(name, role string) string {
	return filepath.Join(s.Directory, name, "roles", role+".key")
}

// CheckKeyName validates a key name. Names become directory components, so
// only [a-zA-Z0-9_-] is allowed.
func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("key name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in key name", char)
	}
	return nil
}

// CheckRole validates a role name under the same rules as CheckKeyName.
func CheckRole(role string) error {
	if role == "" {
		return errors.New("role cannot be empty")
	}
	for _, char := range role {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in role", char)
	}
	return nil
}

// ParseSeedHex decodes a hex-encoded Ed25519 seed, accepting an optional 0x
// prefix and surrounding whitespace.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (s *Store) saveSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) loadSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitRootKey stores seed as the root key for name and returns the actor-key
// string. Without overwrite it refuses to clobber an existing key.
func (s *Store) InitRootKey(name string, seed []byte, overwrite bool) (actorKey string, path string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	path = s.rootKeyPath(name)
	if err := s.saveSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return ActorKeyFromSeed(seed), path, nil
}

// DeriveRoleKey derives and stores the role subkey of an existing root key.
func (s *Store) DeriveRoleKey(from, role string, overwrite bool) (actorKey string, path string, err error) {
	if err := CheckKeyName(from); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := s.loadSeed(s.rootKeyPath(from))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = s.roleKeyPath(from, role)
	if err := s.saveSeed(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	return ActorKeyFromSeed(roleSeed), path, nil
}

// ActorKey returns the actor-key string for a stored key without exposing the
// seed. An empty role names the root key.
func (s *Store) ActorKey(name, role string) (string, error) {
	seed, err := s.Seed(name, role)
	if err != nil {
		return "", err
	}
	return ActorKeyFromSeed(seed), nil
}

// Seed loads the raw seed of a stored key. An empty role names the root key.
func (s *Store) Seed(name, role string) ([]byte, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	if role == "" {
		return s.loadSeed(s.rootKeyPath(name))
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	return s.loadSeed(s.roleKeyPath(name, role))
}

// ResolveSeed loads a signing seed from the first available source: a literal
// hex seed, an explicit key file, or a named store entry.
func (s *Store) ResolveSeed(seedHex, name, role, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return s.loadSeed(keyFile)
	}
	if name != "" {
		return s.Seed(name, role)
	}
	return nil, errors.New("no signer provided")
}

// List enumerates stored keys and their derived roles, sorted by name.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		rolesDir := filepath.Join(s.Directory, name, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, Entry{Name: name, Roles: roles})
	}
	return result, nil
}
