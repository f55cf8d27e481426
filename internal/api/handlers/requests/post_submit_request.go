package requests

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func PostSubmitRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/requests", postSubmitRequestHandler(s))
}

func postSubmitRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body types.SubmitRequestPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		response, err := s.Keyring.SubmitRequest(ctx, swag.StringValue(body.ID), *body.Request)
		if err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.JSON(http.StatusOK, response)
	}
}
