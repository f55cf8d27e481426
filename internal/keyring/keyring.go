package keyring

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/broadcast"
	"github.com/mpc-sdk/multi-factor-accounts/internal/chain"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring/storage"
	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

// Keyring owns all wallet and pending request records. Every mutation
// runs under a single mutex, persists the whole state before the lock
// is released, and rolls the in-memory state back when persistence
// fails, so the in-memory and durable views never diverge.
type Keyring struct {
	mu    sync.Mutex
	state State

	store   storage.Store
	emitter Emitter
	broker  broadcast.Broker
	clock   time2.Clock

	// Base URL of this wallet's approval UI, used in submit redirects.
	dappURL string
}

// New loads the persisted state (if any) and returns a ready keyring.
func New(ctx context.Context, store storage.Store, emitter Emitter, broker broadcast.Broker, clock time2.Clock, dappURL string) (*Keyring, error) {
	data, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load keyring state")
	}

	state := newState()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, errors.Wrap(err, "failed to decode keyring state")
		}
		if state.Wallets == nil {
			state.Wallets = make(map[string]*Wallet)
		}
		if state.PendingRequests == nil {
			state.PendingRequests = make(map[string]*PendingRequest)
		}
	}

	return &Keyring{
		state:   state,
		store:   store,
		emitter: emitter,
		broker:  broker,
		clock:   clock,
		dappURL: dappURL,
	}, nil
}

// ListAccounts returns the metadata of every account.
func (k *Keyring) ListAccounts() []AccountMetadata {
	k.mu.Lock()
	defer k.mu.Unlock()

	accounts := make([]AccountMetadata, 0, len(k.state.Wallets))
	for _, wallet := range k.state.Wallets {
		accounts = append(accounts, wallet.clone().Account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

// GetAccount returns the metadata of a single account.
func (k *Keyring) GetAccount(id string) (*AccountMetadata, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	wallet, ok := k.state.Wallets[id]
	if !ok {
		return nil, &AccountNotFoundError{ID: id}
	}
	account := wallet.clone().Account
	return &account, nil
}

// CreateAccount adds a private key share using an upsert keyed by the
// record's address: the account is created if no wallet exists for the
// address, otherwise the share is created or overwritten. The secret
// never appears on the account metadata; only the parameters are
// copied over.
func (k *Keyring) CreateAccount(ctx context.Context, privateKey mpc.PrivateKeyRecord, name string) (*AccountMetadata, error) {
	if privateKey.Address == "" {
		return nil, ErrMissingAddress
	}
	if privateKey.KeyshareID == "" {
		return nil, ErrMissingShareID
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	address := chain.NormalizeAddress(privateKey.Address)
	privateKey.Address = address

	wallet := k.findWalletByAddressLocked(address)
	created := wallet == nil
	if created {
		wallet = &Wallet{
			Account: AccountMetadata{
				ID:      uuid.NewString(),
				Address: address,
				Type:    AccountTypeEOA,
				Methods: accountMethods(),
				Options: AccountOptions{
					Name:       name,
					Parameters: privateKey.Parameters,
				},
			},
			PrivateKey: make(map[string]mpc.PrivateKeyRecord),
		}
	}

	snapshot := k.state.clone()

	wallet.PrivateKey[privateKey.KeyshareID] = privateKey
	wallet.Account.Options.Shares = shareIDs(wallet)
	k.state.Wallets[wallet.Account.ID] = wallet

	eventType := EventAccountUpdated
	if created {
		eventType = EventAccountCreated
	}
	account := wallet.clone().Account
	if err := k.commitLocked(ctx, snapshot, Event{Type: eventType, Account: &account}); err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", account.ID).
		Str("address", account.Address).
		Int("shares", len(account.Options.Shares)).
		Bool("created", created).
		Msg("key share stored")
	return &account, nil
}

// UpdateAccount merges caller-supplied fields onto the stored account.
// The address is immutable once created and the share list always
// reflects the stored key shares; attempts to change either are
// silently discarded rather than rejected.
func (k *Keyring) UpdateAccount(ctx context.Context, account AccountMetadata) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	wallet, ok := k.state.Wallets[account.ID]
	if !ok {
		return &AccountNotFoundError{ID: account.ID}
	}

	snapshot := k.state.clone()

	// Restore read-only properties.
	account.Address = wallet.Account.Address
	account.Options.Shares = shareIDs(wallet)
	wallet.Account = account

	updated := wallet.clone().Account
	return k.commitLocked(ctx, snapshot, Event{Type: EventAccountUpdated, Account: &updated})
}

// DeleteAccount unconditionally removes an account and all its key
// shares.
func (k *Keyring) DeleteAccount(ctx context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deleteAccountLocked(ctx, id)
}

func (k *Keyring) deleteAccountLocked(ctx context.Context, id string) error {
	if _, ok := k.state.Wallets[id]; !ok {
		return &AccountNotFoundError{ID: id}
	}

	snapshot := k.state.clone()
	delete(k.state.Wallets, id)
	return k.commitLocked(ctx, snapshot, Event{Type: EventAccountDeleted, ID: id})
}

// DeleteKeyShare removes a single key share. Deleting the last
// remaining share cascades into full account deletion; the return
// value reports whether the whole account was removed.
func (k *Keyring) DeleteKeyShare(ctx context.Context, id, keyShareID string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	wallet, ok := k.state.Wallets[id]
	if !ok {
		return false, &AccountNotFoundError{ID: id}
	}

	if len(wallet.PrivateKey) == 1 {
		if _, ok := wallet.PrivateKey[keyShareID]; ok {
			if err := k.deleteAccountLocked(ctx, id); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	snapshot := k.state.clone()
	delete(wallet.PrivateKey, keyShareID)
	wallet.Account.Options.Shares = shareIDs(wallet)

	account := wallet.clone().Account
	if err := k.commitLocked(ctx, snapshot, Event{Type: EventAccountUpdated, Account: &account}); err != nil {
		return false, err
	}
	return false, nil
}

// ExportAccount returns the full secret key share map for an account.
// The result is highly sensitive; callers must never display or
// persist it unencrypted.
func (k *Keyring) ExportAccount(id string) (map[string]mpc.PrivateKeyRecord, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	wallet, ok := k.state.Wallets[id]
	if !ok {
		return nil, &AccountNotFoundError{ID: id}
	}

	out := make(map[string]mpc.PrivateKeyRecord, len(wallet.PrivateKey))
	for shareID, record := range wallet.PrivateKey {
		out[shareID] = record
	}
	return out, nil
}

// FindWalletByAddress returns a copy of the first wallet with the
// given address, or nil. Addresses are normalized before comparison.
func (k *Keyring) FindWalletByAddress(address string) *Wallet {
	k.mu.Lock()
	defer k.mu.Unlock()

	wallet := k.findWalletByAddressLocked(chain.NormalizeAddress(address))
	if wallet == nil {
		return nil
	}
	return wallet.clone()
}

// GetWalletByAddress is FindWalletByAddress that fails when no wallet
// matches.
func (k *Keyring) GetWalletByAddress(address string) (*Wallet, error) {
	wallet := k.FindWalletByAddress(address)
	if wallet == nil {
		return nil, &AccountNotFoundError{ID: address}
	}
	return wallet, nil
}

// FilterAccountChains returns the chains the account is compatible
// with. Accounts created by this keyring are compatible with every
// EVM chain, so the account identifier does not influence the result.
func (k *Keyring) FilterAccountChains(_ string, chains []string) []string {
	return chain.FilterEVMChains(chains)
}

func (k *Keyring) findWalletByAddressLocked(address string) *Wallet {
	for _, wallet := range k.state.Wallets {
		if wallet.Account.Address == address {
			return wallet
		}
	}
	return nil
}

func shareIDs(wallet *Wallet) []string {
	ids := make([]string, 0, len(wallet.PrivateKey))
	for id := range wallet.PrivateKey {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// commitLocked persists the mutated state and emits the lifecycle
// event. A persistence failure restores the pre-mutation snapshot and
// fails the operation so the durable view never silently diverges.
func (k *Keyring) commitLocked(ctx context.Context, snapshot State, event Event) error {
	if err := k.persistLocked(ctx, snapshot); err != nil {
		return err
	}

	if err := k.emitter.Emit(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", string(event.Type)).Msg("failed to emit keyring event")
	}
	if k.broker != nil {
		if err := k.broker.Invalidate(ctx, broadcast.TopicAccounts); err != nil {
			log.Warn().Err(err).Msg("failed to broadcast keyring invalidation")
		}
	}
	return nil
}
