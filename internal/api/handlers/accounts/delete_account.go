package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
)

func DeleteAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.DELETE("/accounts/:id", deleteAccountHandler(s))
}

func deleteAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := s.Keyring.DeleteAccount(ctx, c.Param("id")); err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
