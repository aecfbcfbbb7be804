package model

import (
	"errors"
	"fmt"

	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/policy"
	"mintlock.io/mintlock/storage"
)

type ErrorCode string

const (
	CodeUnauthorized              ErrorCode = "UNAUTHORIZED"
	CodeInvalidManager            ErrorCode = "INVALID_MANAGER"
	CodeManagerDoesNotExist       ErrorCode = "MANAGER_DOES_NOT_EXIST"
	CodeManagerSwapBlocked        ErrorCode = "MANAGER_SWAP_BLOCKED"
	CodeManagerRemoveBlocked      ErrorCode = "MANAGER_REMOVE_BLOCKED"
	CodeRoyaltyBPSInvalid         ErrorCode = "ROYALTY_BPS_INVALID"
	CodeRoyaltySetBlocked         ErrorCode = "ROYALTY_SET_BLOCKED"
	CodeMismatchedLengths         ErrorCode = "MISMATCHED_LENGTHS"
	CodeMinterRegistrationInvalid ErrorCode = "MINTER_REGISTRATION_INVALID"
	CodeAddressFiltered           ErrorCode = "ADDRESS_FILTERED"
	CodeTokenDoesNotExist         ErrorCode = "TOKEN_DOES_NOT_EXIST"
	CodeTokenAlreadyMinted        ErrorCode = "TOKEN_ALREADY_MINTED"
	CodeSupplyCapReached          ErrorCode = "SUPPLY_CAP_REACHED"
	CodeSupplyFrozen              ErrorCode = "SUPPLY_FROZEN"
	CodeZeroAddress               ErrorCode = "ZERO_ADDRESS"
	CodeNoMetadata                ErrorCode = "NO_METADATA"
	CodeNotFound                  ErrorCode = "NOT_FOUND"
	CodeBadSignature              ErrorCode = "BAD_SIGNATURE"
	CodeBadNonce                  ErrorCode = "BAD_NONCE"
	CodeInvalidRequest            ErrorCode = "INVALID_REQUEST"
	CodeInternal                  ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human
// message. It is the only error shape that crosses the RPC boundary.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// sentinelCodes maps every domain sentinel to its wire code.
var sentinelCodes = []struct {
	err  error
	code ErrorCode
}{
	{policy.ErrUnauthorized, CodeUnauthorized},
	{policy.ErrInvalidManager, CodeInvalidManager},
	{policy.ErrManagerDoesNotExist, CodeManagerDoesNotExist},
	{policy.ErrManagerSwapBlocked, CodeManagerSwapBlocked},
	{policy.ErrManagerRemoveBlocked, CodeManagerRemoveBlocked},
	{policy.ErrRoyaltyBPSInvalid, CodeRoyaltyBPSInvalid},
	{policy.ErrRoyaltySetBlocked, CodeRoyaltySetBlocked},
	{policy.ErrMismatchedLengths, CodeMismatchedLengths},
	{policy.ErrMinterRegistrationInvalid, CodeMinterRegistrationInvalid},
	{policy.ErrAddressFiltered, CodeAddressFiltered},
	{collection.ErrTokenDoesNotExist, CodeTokenDoesNotExist},
	{collection.ErrTokenAlreadyMinted, CodeTokenAlreadyMinted},
	{collection.ErrSupplyCapReached, CodeSupplyCapReached},
	{collection.ErrSupplyFrozen, CodeSupplyFrozen},
	{collection.ErrZeroAddress, CodeZeroAddress},
	{collection.ErrNoMetadata, CodeNoMetadata},
	{collection.ErrNotFound, CodeNotFound},
	{storage.ErrNotFound, CodeNotFound},
	{storage.ErrInvalidCID, CodeInvalidRequest},
	{storage.ErrCIDMismatch, CodeInternal},
}

// FromError projects any domain error onto a CodedError. Unknown errors
// become INTERNAL; a nil error maps to nil.
func FromError(err error) *CodedError {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return &CodedError{Code: sc.code, Message: err.Error()}
		}
	}
	return &CodedError{Code: CodeInternal, Message: err.Error()}
}
