package requests

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
)

func PostRejectRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/requests/:id/reject", postRejectRequestHandler(s))
}

func postRejectRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := s.Keyring.RejectRequest(ctx, c.Param("id")); err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
