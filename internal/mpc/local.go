package mpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/chain"
)

const noisePEMType = "NOISE PRIVATE KEY"

// localShare is the module-defined key material produced by the local
// module. Everything outside this package treats it as an opaque blob.
type localShare struct {
	I      int    `json:"i"`
	T      int    `json:"t"`
	N      int    `json:"n"`
	Secret string `json:"secret"`
}

// LocalModule is a development and test implementation of Module.
//
// It produces real secp256k1 material but performs no multi-party
// computation: every participant ends up with an independent key. It
// exists to exercise the coordination layer without the external
// module or a relay-backed protocol run, and must never be used to
// guard real funds.
type LocalModule struct{}

func NewLocalModule() *LocalModule {
	return &LocalModule{}
}

func (m *LocalModule) GenerateKeypair(ctx context.Context) (Keypair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return Keypair{}, errors.Wrap(err, "failed to generate noise keypair")
	}

	block := &pem.Block{Type: noisePEMType, Bytes: priv.Serialize()}
	return Keypair{
		PEM:       string(pem.EncodeToMemory(block)),
		PublicKey: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}, nil
}

func (m *LocalModule) Keygen(ctx context.Context, opts Options, participants []string) (*PrivateKeyRecord, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key share")
	}

	pubKey := priv.PubKey().SerializeCompressed()
	address, err := chain.AddressFromPubKey(pubKey)
	if err != nil {
		return nil, err
	}

	share := localShare{
		// Self is party index 0 followed by the peers.
		I:      0,
		T:      int(opts.Parameters.Threshold),
		N:      int(opts.Parameters.Parties),
		Secret: hex.EncodeToString(priv.Serialize()),
	}
	material, err := json.Marshal(&share)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode key share")
	}

	log.Warn().
		Str("address", address).
		Int("peers", len(participants)).
		Msg("local module keygen produced a single-party key, do not use in production")

	return &PrivateKeyRecord{
		ProtocolID: opts.ProtocolID,
		PrivateKey: material,
		PublicKey:  hex.EncodeToString(pubKey),
		Address:    address,
		KeyshareID: uuid.NewString(),
		Parameters: opts.Parameters,
	}, nil
}

func (m *LocalModule) Sign(ctx context.Context, opts Options, participants []string, key *PrivateKeyRecord, messageHex string) (*Signature, error) {
	if key == nil {
		return nil, errors.New("signing key is required")
	}

	var share localShare
	if err := json.Unmarshal(key.PrivateKey, &share); err != nil {
		return nil, errors.Wrap(err, "failed to decode key share")
	}

	secret, err := hex.DecodeString(share.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode key share secret")
	}
	digest, err := hex.DecodeString(messageHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode message digest")
	}
	if len(digest) != 32 {
		return nil, errors.Errorf("message digest must be 32 bytes, got %d", len(digest))
	}

	priv, _ := btcec.PrivKeyFromBytes(secret)
	ecdsaPriv := priv.ToECDSA()
	// btcec's ToECDSA attaches decred's curve instance, but crypto.Sign
	// only accepts keys carrying crypto.S256().
	ecdsaPriv.Curve = crypto.S256()
	sig, err := crypto.Sign(digest, ecdsaPriv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign digest")
	}

	// crypto.Sign returns r || s || v with v in the final byte.
	return &Signature{
		Signature: SignatureRecID{
			R:     SignPrimitive{Curve: "secp256k1", Scalar: hex.EncodeToString(sig[:32])},
			S:     SignPrimitive{Curve: "secp256k1", Scalar: hex.EncodeToString(sig[32:64])},
			Recid: sig[64],
		},
		PublicKey: key.PublicKey,
		Address:   key.Address,
	}, nil
}
