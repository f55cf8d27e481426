// Package server implements the `server` subcommand running the
// keyring RPC surface for the host runtime.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/router"
	"github.com/mpc-sdk/multi-factor-accounts/internal/auth"
	"github.com/mpc-sdk/multi-factor-accounts/internal/broadcast"
	"github.com/mpc-sdk/multi-factor-accounts/internal/config"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring/storage"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the keyring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	cfg := config.DefaultServiceConfigFromEnv()
	initLogger(cfg.Logger)

	if !cfg.Auth.Disabled && cfg.Auth.Secret == "" {
		return errors.New("MFA_AUTH_SECRET is required unless auth is disabled")
	}

	store, redisClient, err := newStore(cfg.Keyring.Store)
	if err != nil {
		return err
	}

	var broker broadcast.Broker
	if redisClient != nil {
		redisBroker := broadcast.NewRedisBroker(redisClient)
		defer redisBroker.Close()
		broker = redisBroker
	} else {
		broker = broadcast.NewMemoryBroker()
	}

	events := keyring.NewChannelEmitter(cfg.Keyring.EventBufferSize)
	kr, err := keyring.New(ctx, store, events, broker, time2.DefaultClock, cfg.Keyring.DappURL)
	if err != nil {
		return err
	}

	jwt := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)

	s := api.NewServer(cfg, time2.DefaultClock, jwt, kr, events, broker)
	router.Init(s)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return s.Shutdown(context.Background())
	}
}

func newStore(cfg config.KeyringStore) (storage.Store, *redis.Client, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil, nil
	case "file":
		store, err := storage.NewFileStore(cfg.FilePath, cfg.EncryptionSecret)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		return storage.NewRedisStore(client), client, nil
	}
	return nil, nil, errors.Errorf("unknown keyring store backend %q", cfg.Backend)
}

func initLogger(cfg config.Logger) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter())
	}
}
