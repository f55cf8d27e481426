package rendezvous

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

// Cache holds the process-scoped memoized state used by every session:
// the relay server's public key (keyed by server URL) and the noise
// session keypair. Both are fetched or generated once and reused; a
// server URL change invalidates the cached server public key but not
// the keypair.
type Cache struct {
	mu sync.Mutex

	serverURL       string
	serverPublicKey string

	keypair *mpc.Keypair
}

func NewCache() *Cache {
	return &Cache{}
}

// ServerPublicKey returns the relay server's public key, fetching it
// on first use. Changing the server URL discards the previous value.
func (c *Cache) ServerPublicKey(ctx context.Context, serverURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.serverPublicKey != "" && c.serverURL == serverURL {
		return c.serverPublicKey, nil
	}

	publicKey, err := FetchServerPublicKey(ctx, serverURL)
	if err != nil {
		return "", err
	}

	if c.serverURL != "" && c.serverURL != serverURL {
		log.Debug().
			Str("previous", c.serverURL).
			Str("current", serverURL).
			Msg("relay server url changed, cached public key invalidated")
	}

	c.serverURL = serverURL
	c.serverPublicKey = publicKey
	return publicKey, nil
}

// Keypair returns the session keypair, generating it via the module on
// first use.
func (c *Cache) Keypair(ctx context.Context, module mpc.Module) (mpc.Keypair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keypair != nil {
		return *c.keypair, nil
	}

	keypair, err := module.GenerateKeypair(ctx)
	if err != nil {
		return mpc.Keypair{}, err
	}
	c.keypair = &keypair
	return keypair, nil
}

// Invalidate discards all cached state.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverURL = ""
	c.serverPublicKey = ""
	c.keypair = nil
}
