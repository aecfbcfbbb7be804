package storage

import "errors"

var (
	// ErrNotFound reports that no blob is stored under the requested CID.
	ErrNotFound = errors.New("storage: metadata blob not found")

	// ErrInvalidCID rejects operations on the undefined CID.
	ErrInvalidCID = errors.New("storage: undefined cid")

	// ErrCIDMismatch reports stored bytes that no longer hash to their CID,
	// or an attempt to overwrite a CID with different content.
	ErrCIDMismatch = errors.New("storage: blob does not match its cid")
)

// IsNotFound reports whether err means the blob is absent rather than broken.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
