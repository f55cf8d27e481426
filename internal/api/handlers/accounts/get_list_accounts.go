// Package accounts implements the account routes of the keyring RPC
// surface.
package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
)

func GetListAccountsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/accounts", getListAccountsHandler(s))
}

func getListAccountsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.Keyring.ListAccounts())
	}
}
