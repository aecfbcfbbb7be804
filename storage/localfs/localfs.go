// Package localfs is a filesystem-backed metadata blob store.
//
// Blobs are written once, keyed strictly by CID, and verified against their
// CID on every read. Writes are staged to a scratch file and renamed into
// place, so a crash mid-write never leaves a partial blob under a valid CID.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"mintlock.io/mintlock/cidutil"
	"mintlock.io/mintlock/storage"
)

const (
	blobDir  = "blobs"
	stageDir = "stage"
)

// CAS is a local filesystem-backed content-addressable store.
type CAS struct {
	root string
}

var _ storage.CAS = (*CAS)(nil)

// New constructs a filesystem CAS rooted at root, creating the blob and
// staging directories if needed.
func New(root string) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	for _, d := range []string{blobDir, stageDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, err
		}
	}
	return &CAS{root: root}, nil
}

// Put stores data under its CID. Storing the same content again is a no-op;
// a pre-existing file under the CID with different bytes is ErrCIDMismatch.
func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	path := c.pathFor(id)
	if existing, err := os.ReadFile(path); err == nil {
		if !bytes.Equal(existing, data) {
			return cid.Undef, storage.ErrCIDMismatch
		}
		return id, nil
	} else if !os.IsNotExist(err) {
		return cid.Undef, err
	}

	if err := c.stageAndRename(path, data); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// stageAndRename writes data to a scratch file, makes it read-only, and moves
// it into place. Concurrent writers of the same CID race on the rename, which
// is harmless: the content is identical.
func (c *CAS) stageAndRename(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Join(c.root, stageDir), "put-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	abort := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}
	if _, err := f.Write(data); err != nil {
		abort()
		return err
	}
	if err := f.Sync(); err != nil {
		abort()
		return err
	}
	if err := f.Chmod(0o444); err != nil {
		abort()
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get loads the blob for id and re-derives its CID before returning, so a
// blob corrupted on disk surfaces as ErrCIDMismatch instead of bad bytes.
func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	got, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

// Has reports blob presence without verifying content.
func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

// pathFor shards blobs by the last two characters of the CID string. The
// tail of the base32 hash varies uniformly, unlike the head, which is the
// constant multibase/version prefix for every CIDv1.
func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, blobDir, s)
	}
	return filepath.Join(c.root, blobDir, s[len(s)-2:], s)
}
