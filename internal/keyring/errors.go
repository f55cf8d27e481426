package keyring

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingAddress indicates a private key record without an
	// address was handed to CreateAccount.
	ErrMissingAddress = errors.New("private key record is missing an address")

	// ErrMissingShareID indicates a private key record without a key
	// share identifier was handed to CreateAccount.
	ErrMissingShareID = errors.New("private key record is missing a key share identifier")

	// ErrMissingResult indicates ApproveRequest was called without a
	// signed result.
	ErrMissingResult = errors.New("approving a request requires a signed result")
)

// AccountNotFoundError indicates no account matched the given
// identifier or address.
type AccountNotFoundError struct {
	ID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account '%s' not found", e.ID)
}

// RequestNotFoundError indicates the pending request does not exist,
// either because it was never submitted or because it has already
// been resolved. A request id can be resolved exactly once.
type RequestNotFoundError struct {
	ID string
}

func (e *RequestNotFoundError) Error() string {
	return fmt.Sprintf("request '%s' not found", e.ID)
}
