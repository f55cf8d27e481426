package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func PutUpdateAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.PUT("/accounts/:id", putUpdateAccountHandler(s))
}

func putUpdateAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body types.UpdateAccountPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}
		body.Account.ID = c.Param("id")

		if err := s.Keyring.UpdateAccount(ctx, *body.Account); err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
