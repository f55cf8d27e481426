package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Validatable payloads validate themselves after binding.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the request body into v and, when v is
// Validatable, validates it. Failures surface as 400 responses.
func BindAndValidateBody(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if payload, ok := v.(Validatable); ok {
		if err := payload.Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return nil
}
