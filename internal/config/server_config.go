// Package config assembles the service configuration from environment
// variables with sane defaults for local development.
package config

import (
	"time"

	"github.com/mpc-sdk/multi-factor-accounts/internal/util"
)

type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
}

type AuthServer struct {
	// Disabled skips JWT verification on the management API. Local
	// development only.
	Disabled      bool
	Secret        string
	Issuer        string
	TokenDuration time.Duration
}

type Relay struct {
	// URL of the external relay server; ws:/wss: URLs are converted
	// to their http(s) equivalents for the REST endpoints.
	ServerURL string
}

type KeyringStore struct {
	// Backend selects the persistence implementation:
	// memory | file | redis.
	Backend          string
	FilePath         string
	EncryptionSecret string
	RedisAddress     string
}

type Keyring struct {
	// Base URL of the approval UI used in submit redirects.
	DappURL string
	Store   KeyringStore
	// Buffered lifecycle events held for the host runtime.
	EventBufferSize int
}

type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

type Server struct {
	Echo    EchoServer
	Auth    AuthServer
	Relay   Relay
	Keyring Keyring
	Logger  Logger
	// DevMode substitutes the external cryptographic module with the
	// insecure local module.
	DevMode bool
}

// DefaultServiceConfigFromEnv returns the full server configuration
// resolved from the environment.
func DefaultServiceConfigFromEnv() Server {
	return Server{
		Echo: EchoServer{
			ListenAddress:                  util.GetEnv("MFA_SERVER_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("MFA_SERVER_HIDE_INTERNAL_ERRORS", true),
		},
		Auth: AuthServer{
			Disabled:      util.GetEnvAsBool("MFA_AUTH_DISABLED", false),
			Secret:        util.GetEnv("MFA_AUTH_SECRET", ""),
			Issuer:        util.GetEnv("MFA_AUTH_ISSUER", "multi-factor-accounts"),
			TokenDuration: util.GetEnvAsDuration("MFA_AUTH_TOKEN_DURATION", 24*time.Hour),
		},
		Relay: Relay{
			ServerURL: util.GetEnv("MFA_RELAY_SERVER_URL", "wss://relay.localhost:3030"),
		},
		Keyring: Keyring{
			DappURL:         util.GetEnv("MFA_DAPP_URL", "http://localhost:7070"),
			EventBufferSize: util.GetEnvAsInt("MFA_EVENT_BUFFER_SIZE", 128),
			Store: KeyringStore{
				Backend:          util.GetEnv("MFA_KEYRING_STORE_BACKEND", "file"),
				FilePath:         util.GetEnv("MFA_KEYRING_STORE_FILE", "data/keyring.state"),
				EncryptionSecret: util.GetEnv("MFA_KEYRING_STORE_SECRET", ""),
				RedisAddress:     util.GetEnv("MFA_KEYRING_REDIS_ADDRESS", "localhost:6379"),
			},
		},
		Logger: Logger{
			Level:              util.GetEnv("MFA_LOGGER_LEVEL", "info"),
			PrettyPrintConsole: util.GetEnvAsBool("MFA_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		DevMode: util.GetEnvAsBool("MFA_DEV_MODE", false),
	}
}
