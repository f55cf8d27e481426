// Package mpc defines the boundary to the external threshold
// cryptography module. The coordination layer never inspects key
// material or signatures produced by the module; it only moves them
// between the rendezvous, session and keyring layers.
package mpc

import "encoding/json"

// Protocol identifies the underlying threshold signature protocol.
type Protocol string

const (
	// ProtocolGG20 is the only protocol currently supported.
	ProtocolGG20 Protocol = "gg20"
)

// Keypair is the noise protocol keypair used to communicate with the
// relay server. One keypair is generated per process and memoized.
type Keypair struct {
	// Full key material, PEM encoded.
	PEM string `json:"pem"`
	// Hex-encoded public key, also used to identify self in the
	// participant public key list.
	PublicKey string `json:"publicKey"`
}

// Parameters are the protocol-level session parameters. Note that
// Threshold uses the protocol convention ("cross this many"), which is
// one less than the human-facing "require T of N" count.
type Parameters struct {
	Parties   uint16 `json:"parties"`
	Threshold uint16 `json:"threshold"`
}

// PrivateKeyRecord is one participant's key share produced by key
// generation. The PrivateKey field is module-defined material and is
// treated as an atomic, indivisible secret by the rest of the system.
type PrivateKeyRecord struct {
	ProtocolID Protocol        `json:"protocolId"`
	PrivateKey json.RawMessage `json:"privateKey"`
	PublicKey  string          `json:"publicKey"`
	Address    string          `json:"address"`
	KeyshareID string          `json:"keyshareId"`
	Parameters Parameters      `json:"parameters"`
}

// SignPrimitive is a single component of an ECDSA signature.
type SignPrimitive struct {
	// For ECDSA this is `secp256k1`.
	Curve string `json:"curve"`
	// Hex-encoded bytes.
	Scalar string `json:"scalar"`
}

// SignatureRecID is an ECDSA signature with a recovery identifier.
type SignatureRecID struct {
	R     SignPrimitive `json:"r"`
	S     SignPrimitive `json:"s"`
	Recid uint8         `json:"recid"`
}

// Signature is the result of a signing session.
type Signature struct {
	Signature SignatureRecID `json:"signature"`
	PublicKey string         `json:"publicKey"`
	Address   string         `json:"address"`
}

// ServerOptions locate the relay server used to exchange protocol
// messages between participants.
type ServerOptions struct {
	ServerURL       string `json:"serverUrl"`
	ServerPublicKey string `json:"serverPublicKey"`
}

// Options are passed to the module for both key generation and
// signing.
type Options struct {
	Server ServerOptions `json:"server"`
	// PEM-encoded noise keypair of the caller.
	Keypair    string     `json:"keypair"`
	ProtocolID Protocol   `json:"protocolId"`
	Parameters Parameters `json:"parameters"`
}
