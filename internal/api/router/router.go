// Package router wires the echo instance, middleware and routes onto
// an api.Server.
package router

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/handlers/accounts"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/handlers/events"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/handlers/requests"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/httperrors"
	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

// Init builds the echo instance and attaches all routes.
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = httperrors.HandleError(s.Config.Echo.HideInternalServerErrorDetails)

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(requestLogger())

	root := s.Echo.Group("")
	apiV1 := s.Echo.Group("/api/v1")

	if !s.Config.Auth.Disabled {
		apiV1.Use(echojwt.WithConfig(echojwt.Config{
			SigningKey:    s.JWT.Secret(),
			SigningMethod: "HS256",
		}))
	} else {
		log.Warn().Msg("management API authentication is disabled")
	}

	s.Router = &api.Router{Root: root, APIV1: apiV1}

	s.Router.Routes = []*echo.Route{
		accounts.GetListAccountsRoute(s),
		accounts.GetAccountRoute(s),
		accounts.PostCreateAccountRoute(s),
		accounts.PutUpdateAccountRoute(s),
		accounts.DeleteAccountRoute(s),
		accounts.DeleteKeyShareRoute(s),
		accounts.GetExportAccountRoute(s),
		accounts.PostFilterChainsRoute(s),
		requests.GetListRequestsRoute(s),
		requests.GetRequestRoute(s),
		requests.PostSubmitRequestRoute(s),
		requests.PostApproveRequestRoute(s),
		requests.PostRejectRequestRoute(s),
		events.GetEventsRoute(s),
	}
}

// requestLogger attaches a request-scoped zerolog logger and records
// the outcome of every request.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(util.WithLogger(req.Context(), l)))

			err := next(c)
			if err != nil {
				l.Debug().Err(err).Int("status", c.Response().Status).Msg("request failed")
			}
			return err
		}
	}
}
