// Package events exposes buffered keyring lifecycle events to the
// host runtime.
package events

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
)

func GetEventsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/events", getEventsHandler(s))
}

// getEventsHandler drains the event buffer; the host runtime polls
// this endpoint and applies the events in order.
func getEventsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, &types.EventsResponse{Events: s.Events.Drain()})
	}
}
