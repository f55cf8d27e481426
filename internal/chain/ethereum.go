// Package chain provides the small amount of EVM awareness the keyring
// needs: CAIP-2 chain matching and deriving an address from secp256k1
// public key material.
package chain

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// CAIP-2 namespace for EVM chains.
const evmChainPrefix = "eip155:"

// IsEVMChain reports whether the given CAIP-2 chain identifier
// represents an EVM-based chain.
func IsEVMChain(chain string) bool {
	return strings.HasPrefix(chain, evmChainPrefix)
}

// FilterEVMChains returns the subset of chains that are EVM-based.
// Accounts created by this wallet are compatible with any EVM chain.
func FilterEVMChains(chains []string) []string {
	filtered := make([]string, 0, len(chains))
	for _, chain := range chains {
		if IsEVMChain(chain) {
			filtered = append(filtered, chain)
		}
	}
	return filtered
}

// NormalizeAddress lowercases a hex-encoded address so that lookups do
// not depend on EIP-55 checksum casing. All addresses are normalized
// before they are stored or compared.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

// AddressFromPubKey derives the EVM address for a secp256k1 public key.
// Both compressed (33 byte) and uncompressed (65 byte) encodings are
// accepted. The returned address is normalized.
func AddressFromPubKey(pubKey []byte) (string, error) {
	if len(pubKey) == 0 {
		return "", errors.New("public key is required")
	}

	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse secp256k1 public key")
	}

	address := crypto.PubkeyToAddress(*key.ToECDSA())
	return NormalizeAddress(address.Hex()), nil
}
