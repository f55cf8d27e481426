package mpc

import "context"

// Module is the opaque cryptographic module invoked once a session has
// rendezvoused. Implementations run the actual multi-party protocol
// against the relay server; this layer only supplies parameters and
// the peer public key list.
//
// The caller's own public key must be excluded from the participants
// list on both Keygen and Sign; the module always treats "self"
// implicitly.
type Module interface {
	// GenerateKeypair creates a fresh noise protocol keypair.
	GenerateKeypair(ctx context.Context) (Keypair, error)

	// Keygen runs distributed key generation and returns this
	// participant's key share.
	Keygen(ctx context.Context, opts Options, participants []string) (*PrivateKeyRecord, error)

	// Sign runs threshold signing for the given message digest
	// (hex-encoded). The participants list may be nil when the relay
	// session already pinned the cosigners.
	Sign(ctx context.Context, opts Options, participants []string, key *PrivateKeyRecord, messageHex string) (*Signature, error)
}
