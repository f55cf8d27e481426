package rendezvous_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
	"github.com/mpc-sdk/multi-factor-accounts/internal/rendezvous"
	"github.com/mpc-sdk/multi-factor-accounts/internal/test"
)

type countingModule struct {
	mpc.Module
	generated int
}

func (m *countingModule) GenerateKeypair(ctx context.Context) (mpc.Keypair, error) {
	m.generated++
	return mpc.Keypair{PEM: "pem", PublicKey: "pk"}, nil
}

func TestCache_ServerPublicKeyMemoized(t *testing.T) {
	relay := test.NewFakeRelay(t)
	cache := rendezvous.NewCache()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key, err := cache.ServerPublicKey(ctx, relay.URL())
		require.NoError(t, err)
		assert.Equal(t, relay.PublicKey, key)
	}
	assert.Equal(t, 1, relay.PublicKeyRequests())
}

func TestCache_ServerURLChangeInvalidates(t *testing.T) {
	first := test.NewFakeRelay(t)
	second := test.NewFakeRelay(t)
	second.PublicKey = "second-relay-public-key"

	cache := rendezvous.NewCache()
	ctx := context.Background()

	key, err := cache.ServerPublicKey(ctx, first.URL())
	require.NoError(t, err)
	assert.Equal(t, first.PublicKey, key)

	key, err = cache.ServerPublicKey(ctx, second.URL())
	require.NoError(t, err)
	assert.Equal(t, "second-relay-public-key", key)

	// Switching back refetches instead of serving the stale key.
	_, err = cache.ServerPublicKey(ctx, first.URL())
	require.NoError(t, err)
	assert.Equal(t, 2, first.PublicKeyRequests())
}

func TestCache_KeypairGeneratedOnce(t *testing.T) {
	cache := rendezvous.NewCache()
	module := &countingModule{}
	ctx := context.Background()

	first, err := cache.Keypair(ctx, module)
	require.NoError(t, err)
	second, err := cache.Keypair(ctx, module)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, module.generated)
}

func TestCache_Invalidate(t *testing.T) {
	cache := rendezvous.NewCache()
	module := &countingModule{}
	ctx := context.Background()

	_, err := cache.Keypair(ctx, module)
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.Keypair(ctx, module)
	require.NoError(t, err)
	assert.Equal(t, 2, module.generated)
}
