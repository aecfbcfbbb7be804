package collection

import "errors"

var (
	// ErrTokenDoesNotExist rejects operations naming an unminted token.
	ErrTokenDoesNotExist = errors.New("collection: token does not exist")

	// ErrTokenAlreadyMinted rejects minting an id that is already taken.
	ErrTokenAlreadyMinted = errors.New("collection: token already minted")

	// ErrSupplyCapReached rejects minting past the configured cap.
	ErrSupplyCapReached = errors.New("collection: supply cap reached")

	// ErrSupplyFrozen rejects minting after a one-way supply freeze.
	ErrSupplyFrozen = errors.New("collection: supply frozen")

	// ErrZeroAddress rejects a zero address where a real one is required.
	ErrZeroAddress = errors.New("collection: zero address")

	// ErrNoMetadata is returned when a token has no metadata recorded.
	ErrNoMetadata = errors.New("collection: no metadata for token")

	// ErrNotFound is returned by the registry for an unknown collection.
	ErrNotFound = errors.New("collection: not found")
)
