package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

func PostFilterChainsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/accounts/:id/chains", postFilterChainsHandler(s))
}

func postFilterChainsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.FilterChainsPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		filtered := s.Keyring.FilterAccountChains(c.Param("id"), body.Chains)
		return c.JSON(http.StatusOK, &types.FilterChainsResponse{Chains: filtered})
	}
}
