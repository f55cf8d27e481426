package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func GetExportAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/accounts/:id/export", getExportAccountHandler(s))
}

func getExportAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromEchoContext(c)

		shares, err := s.Keyring.ExportAccount(c.Param("id"))
		if err != nil {
			return httperrors.FromKeyringError(err)
		}

		// The response body contains raw key material.
		log.Warn().Str("account_id", c.Param("id")).Msg("account key shares exported")
		return c.JSON(http.StatusOK, shares)
	}
}
