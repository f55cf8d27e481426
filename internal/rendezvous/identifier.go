// Package rendezvous implements the session rendezvous protocol: the
// meeting point client used to discover the other participants of a
// key generation or signing session via the relay server.
package rendezvous

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewIdentifier returns a fresh participant identifier: the SHA-256
// hex digest of a random 128-bit token. Identifiers are opaque
// pseudo-identities addressing a single rendezvous slot; they are
// never reused across sessions.
func NewIdentifier() string {
	token := uuid.NewString()
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// NewIdentifiers returns n fresh identifiers. By convention the first
// identifier belongs to the initiator.
func NewIdentifiers(n int) []string {
	identifiers := make([]string, n)
	for i := range identifiers {
		identifiers[i] = NewIdentifier()
	}
	return identifiers
}
