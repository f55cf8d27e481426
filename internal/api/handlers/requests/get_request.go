package requests

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
)

func GetRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/requests/:id", getRequestHandler(s))
}

func getRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		detail, err := s.Keyring.GetPendingRequest(c.Param("id"))
		if err != nil {
			return httperrors.FromKeyringError(err)
		}
		return c.JSON(http.StatusOK, &types.PendingRequestDetailResponse{
			Request: types.NewPendingRequestResponse(detail.Request),
			Account: detail.Account,
		})
	}
}
