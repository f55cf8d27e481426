package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
)

func GetAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/accounts/:id", getAccountHandler(s))
}

func getAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		account, err := s.Keyring.GetAccount(c.Param("id"))
		if err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.JSON(http.StatusOK, account)
	}
}
