// Package cidutil pins the metadata CID convention: CIDv1, raw multicodec,
// sha2-256 multihash.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns the CIDv1 string (raw + sha2-256) for data.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length this is unreachable.
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns the CIDv1 (raw + sha2-256) for data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// MustCID is CIDv1RawSHA256CID that panics on error. For tests and fixtures.
func MustCID(data []byte) cid.Cid {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		panic(err)
	}
	return id
}
