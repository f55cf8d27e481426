package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func PostCreateAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/accounts", postCreateAccountHandler(s))
}

func postCreateAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.CreateAccountPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		account, err := s.Keyring.CreateAccount(ctx, *body.PrivateKey, body.Name)
		if err != nil {
			log.Debug().Err(err).Msg("failed to create account")
			return httperrors.FromKeyringError(err)
		}

		return c.JSON(http.StatusCreated, account)
	}
}
