// Package keyring is the threshold key share keyring: the durable
// state machine that stores one or more key shares per logical
// account and the queue of pending signing requests submitted by the
// host runtime. The keyring is the single writer of its state; other
// layers only hand it values.
package keyring

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

// AccountTypeEOA is the account type recorded for every account the
// keyring creates; all accounts are externally-owned EVM accounts.
const AccountTypeEOA = "eip155:eoa"

// Signing methods supported by every account.
func accountMethods() []string {
	return []string{"personal_sign", "eth_sign", "eth_signTransaction"}
}

// AccountOptions is the public metadata attached to an account. It is
// exposed to the host runtime and must never contain key material.
type AccountOptions struct {
	Name string `json:"name"`
	// Shares always equals the key share identifiers present in the
	// wallet; the invariant is restored on every mutation.
	Shares     []string       `json:"shares"`
	Parameters mpc.Parameters `json:"parameters"`
}

// AccountMetadata is the host-runtime-visible account record.
type AccountMetadata struct {
	ID      string         `json:"id"`
	Address string         `json:"address"`
	Type    string         `json:"type"`
	Methods []string       `json:"methods"`
	Options AccountOptions `json:"options"`
}

// Wallet pairs an account with its secret key shares, keyed by key
// share identifier. One wallet exists per distinct address.
type Wallet struct {
	Account    AccountMetadata                 `json:"account"`
	PrivateKey map[string]mpc.PrivateKeyRecord `json:"privateKey"`
}

// RequestPayload is the host runtime's signing request body. The
// params are opaque to the keyring except for the transaction `from`
// field used to pair the request with an account.
type RequestPayload struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// PendingRequest is a signing request awaiting asynchronous approval.
type PendingRequest struct {
	ID          string         `json:"id"`
	Request     RequestPayload `json:"request"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// FromAddress extracts the transaction `from` field of the request
// params.
func (r *PendingRequest) FromAddress() (string, error) {
	var params []struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal(r.Request.Params, &params); err != nil {
		return "", errors.Wrap(err, "failed to decode request params")
	}
	if len(params) == 0 || params[0].From == "" {
		return "", errors.New("request has no from address")
	}
	return params[0].From, nil
}

// PendingRequestDetail pairs a pending request with the account whose
// address matches the request's transaction sender.
type PendingRequestDetail struct {
	Request *PendingRequest  `json:"request"`
	Account *AccountMetadata `json:"account,omitempty"`
}

// Redirect points the host runtime at this wallet's approval route.
type Redirect struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// SubmitResponse is returned to the host runtime when a signing
// request is queued.
type SubmitResponse struct {
	Pending  bool     `json:"pending"`
	Redirect Redirect `json:"redirect"`
}

// State is the whole keyring state, persisted as a single document
// after every mutation.
type State struct {
	Wallets         map[string]*Wallet         `json:"wallets"`
	PendingRequests map[string]*PendingRequest `json:"pendingRequests"`
}

func newState() State {
	return State{
		Wallets:         make(map[string]*Wallet),
		PendingRequests: make(map[string]*PendingRequest),
	}
}

func (s *State) clone() State {
	out := newState()
	for id, wallet := range s.Wallets {
		out.Wallets[id] = wallet.clone()
	}
	for id, request := range s.PendingRequests {
		copied := *request
		out.PendingRequests[id] = &copied
	}
	return out
}

func (w *Wallet) clone() *Wallet {
	out := &Wallet{
		Account:    w.Account,
		PrivateKey: make(map[string]mpc.PrivateKeyRecord, len(w.PrivateKey)),
	}
	out.Account.Methods = append([]string(nil), w.Account.Methods...)
	out.Account.Options.Shares = append([]string(nil), w.Account.Options.Shares...)
	for id, record := range w.PrivateKey {
		out.PrivateKey[id] = record
	}
	return out
}
