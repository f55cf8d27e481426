package httperrors

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring"
)

// FromKeyringError maps a keyring layer error to its HTTP payload.
func FromKeyringError(err error) *HTTPError {
	var accountNotFound *keyring.AccountNotFoundError
	var requestNotFound *keyring.RequestNotFoundError

	switch {
	case errors.As(err, &accountNotFound):
		return NewHTTPError(http.StatusNotFound, TypeAccountNotFound, accountNotFound.Error())
	case errors.As(err, &requestNotFound):
		return NewHTTPError(http.StatusNotFound, TypeRequestNotFound, requestNotFound.Error())
	case errors.Is(err, keyring.ErrMissingAddress),
		errors.Is(err, keyring.ErrMissingShareID),
		errors.Is(err, keyring.ErrMissingResult):
		return NewHTTPError(http.StatusBadRequest, TypeValidation, err.Error())
	}
	return NewHTTPError(http.StatusInternalServerError, TypeGeneric, "keyring operation failed").WithDetail(err.Error())
}
