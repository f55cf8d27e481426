// Package api exposes the keyring to the host runtime as an
// RPC-style HTTP surface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/auth"
	"github.com/mpc-sdk/multi-factor-accounts/internal/broadcast"
	"github.com/mpc-sdk/multi-factor-accounts/internal/config"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring"
)

// Router groups the route tree of the server.
type Router struct {
	Routes []*echo.Route
	Root   *echo.Group
	APIV1  *echo.Group
}

// Server keeps all dependencies of the HTTP surface. The Echo and
// Router fields are initialized by router.Init.
type Server struct {
	Config config.Server
	Echo   *echo.Echo
	Router *Router

	Clock   time2.Clock
	JWT     *auth.JWTManager
	Keyring *keyring.Keyring
	Events  *keyring.ChannelEmitter
	Broker  broadcast.Broker
}

// NewServer assembles a server from its dependencies; routes are
// attached separately via router.Init.
func NewServer(cfg config.Server, clock time2.Clock, jwt *auth.JWTManager, kr *keyring.Keyring, events *keyring.ChannelEmitter, broker broadcast.Broker) *Server {
	return &Server{
		Config:  cfg,
		Clock:   clock,
		JWT:     jwt,
		Keyring: kr,
		Events:  events,
		Broker:  broker,
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Info().Str("listen_address", s.Config.Echo.ListenAddress).Msg("starting server")
	err := s.Echo.Start(s.Config.Echo.ListenAddress)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.Echo.Shutdown(shutdownCtx)
}
