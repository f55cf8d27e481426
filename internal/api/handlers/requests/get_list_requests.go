// Package requests implements the pending signing request routes of
// the keyring RPC surface.
package requests

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
)

func GetListRequestsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/requests", getListRequestsHandler(s))
}

func getListRequestsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		pending := s.Keyring.ListRequests()

		response := make([]*types.PendingRequestResponse, 0, len(pending))
		for _, request := range pending {
			response = append(response, types.NewPendingRequestResponse(request))
		}
		return c.JSON(http.StatusOK, response)
	}
}
