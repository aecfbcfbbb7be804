package policy

import "errors"

// The administrative error taxonomy. All are non-retryable: the caller must
// change the request (or their identity) for the call to succeed.
var (
	// ErrUnauthorized rejects a non-owner caller on an owner-gated operation.
	ErrUnauthorized = errors.New("policy: caller is not the collection owner")

	// ErrInvalidManager rejects a candidate that failed the validity probe.
	ErrInvalidManager = errors.New("policy: candidate manager failed validity probe")

	// ErrManagerDoesNotExist rejects a remove against an unset slot.
	ErrManagerDoesNotExist = errors.New("policy: manager does not exist")

	// ErrManagerSwapBlocked means the current manager declined its replacement.
	ErrManagerSwapBlocked = errors.New("policy: current manager blocked the swap")

	// ErrManagerRemoveBlocked means the current manager declined its removal.
	ErrManagerRemoveBlocked = errors.New("policy: current manager blocked the removal")

	// ErrRoyaltyBPSInvalid rejects a royalty record above 10000 basis points.
	ErrRoyaltyBPSInvalid = errors.New("policy: royalty basis points exceed 10000")

	// ErrRoyaltySetBlocked means the royalty manager declined a royalty mutation.
	ErrRoyaltySetBlocked = errors.New("policy: royalty manager blocked the mutation")

	// ErrMismatchedLengths rejects a batch with unequal id/value slices.
	ErrMismatchedLengths = errors.New("policy: mismatched batch lengths")

	// ErrMinterRegistrationInvalid rejects a minter (un)registration against
	// the wrong current membership state.
	ErrMinterRegistrationInvalid = errors.New("policy: minter registration invalid")

	// ErrAddressFiltered means the operator-filter registry declined a
	// transfer-affecting operation.
	ErrAddressFiltered = errors.New("policy: operator address filtered")
)
