// Package httperrors defines the typed error payloads returned by the
// keyring RPC surface.
package httperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Public error types surfaced to the host runtime.
const (
	TypeGeneric         = "generic"
	TypeValidation      = "validation"
	TypeAccountNotFound = "account_not_found"
	TypeRequestNotFound = "request_not_found"
	TypeRelay           = "relay"
)

// HTTPError is the JSON error body for every failed request.
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
}

// NewHTTPError creates a typed HTTP error.
func NewHTTPError(code int, errType, title string) *HTTPError {
	return &HTTPError{Code: code, Type: errType, Title: title}
}

// WithDetail attaches human-readable detail.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	e.Detail = detail
	return e
}

// HandleError is the echo error handler rendering HTTPError payloads
// and converting echo's own errors.
func HandleError(hideInternalDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var payload *HTTPError
		switch typed := err.(type) {
		case *HTTPError:
			payload = typed
		case *echo.HTTPError:
			payload = NewHTTPError(typed.Code, TypeGeneric, fmt.Sprintf("%v", typed.Message))
		default:
			payload = NewHTTPError(http.StatusInternalServerError, TypeGeneric, http.StatusText(http.StatusInternalServerError))
			if !hideInternalDetails {
				payload.Detail = err.Error()
			}
		}

		_ = c.JSON(payload.Code, payload)
	}
}
