package requests

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func PostApproveRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/requests/:id/approve", postApproveRequestHandler(s))
}

func postApproveRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.ApproveRequestPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		id := c.Param("id")
		if err := s.Keyring.ApproveRequest(ctx, id, body.Result); err != nil {
			log.Debug().Err(err).Str("request_id", id).Msg("failed to approve request")
			return httperrors.FromKeyringError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
