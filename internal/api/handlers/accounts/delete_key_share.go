package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
)

func DeleteKeyShareRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.DELETE("/accounts/:id/shares/:shareId", deleteKeyShareHandler(s))
}

func deleteKeyShareHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		deletedAccount, err := s.Keyring.DeleteKeyShare(ctx, c.Param("id"), c.Param("shareId"))
		if err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.JSON(http.StatusOK, &types.DeleteKeyShareResponse{DeletedAccount: deletedAccount})
	}
}
