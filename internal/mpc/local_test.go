package mpc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalModule_GenerateKeypair(t *testing.T) {
	module := NewLocalModule()

	keypair, err := module.GenerateKeypair(context.Background())
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(keypair.PEM))
	require.NotNil(t, block)
	assert.Equal(t, "NOISE PRIVATE KEY", block.Type)

	publicKey, err := hex.DecodeString(keypair.PublicKey)
	require.NoError(t, err)
	assert.Len(t, publicKey, 33)
}

func TestLocalModule_KeygenAndSign(t *testing.T) {
	module := NewLocalModule()
	ctx := context.Background()

	opts := Options{
		ProtocolID: ProtocolGG20,
		Parameters: Parameters{Parties: 3, Threshold: 1},
	}

	key, err := module.Keygen(ctx, opts, []string{"peer-a", "peer-b"})
	require.NoError(t, err)

	assert.Equal(t, ProtocolGG20, key.ProtocolID)
	assert.NotEmpty(t, key.KeyshareID)
	assert.NotEmpty(t, key.PrivateKey)
	assert.Regexp(t, "^0x[0-9a-f]{40}$", key.Address)
	assert.Equal(t, opts.Parameters, key.Parameters)

	digest := sha256.Sum256([]byte("message"))
	signature, err := module.Sign(ctx, opts, []string{"peer-a"}, key, hex.EncodeToString(digest[:]))
	require.NoError(t, err)

	assert.Equal(t, "secp256k1", signature.Signature.R.Curve)
	assert.Len(t, signature.Signature.R.Scalar, 64)
	assert.Len(t, signature.Signature.S.Scalar, 64)
	assert.Equal(t, key.Address, signature.Address)
}

func TestLocalModule_SignRejectsBadDigest(t *testing.T) {
	module := NewLocalModule()
	ctx := context.Background()

	key, err := module.Keygen(ctx, Options{ProtocolID: ProtocolGG20, Parameters: Parameters{Parties: 2, Threshold: 1}}, nil)
	require.NoError(t, err)

	// Not hex.
	_, err = module.Sign(ctx, Options{}, nil, key, "zz")
	assert.Error(t, err)

	// Wrong length.
	_, err = module.Sign(ctx, Options{}, nil, key, "deadbeef")
	assert.Error(t, err)

	// Missing key.
	_, err = module.Sign(ctx, Options{}, nil, nil, "deadbeef")
	assert.Error(t, err)
}
