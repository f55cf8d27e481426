package keyring

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpc-sdk/multi-factor-accounts/internal/broadcast"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring/storage"
	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

const testDappURL = "https://wallet.example.com"

func newTestKeyring(t *testing.T) (*Keyring, *ChannelEmitter) {
	t.Helper()

	emitter := NewChannelEmitter(64)
	kr, err := New(context.Background(), storage.NewMemoryStore(), emitter, broadcast.NewMemoryBroker(), time2.NewMockClock(time.Now()), testDappURL)
	require.NoError(t, err)
	return kr, emitter
}

func newShare(address, shareID string) mpc.PrivateKeyRecord {
	return mpc.PrivateKeyRecord{
		ProtocolID: mpc.ProtocolGG20,
		PrivateKey: []byte(`{"secret":"` + shareID + `"}`),
		PublicKey:  "04deadbeef",
		Address:    address,
		KeyshareID: shareID,
		Parameters: mpc.Parameters{Parties: 3, Threshold: 1},
	}
}

func TestCreateAccount_NewWallet(t *testing.T) {
	kr, emitter := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xAbC0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", account.Address)
	assert.Equal(t, AccountTypeEOA, account.Type)
	assert.Equal(t, "Savings", account.Options.Name)
	assert.Equal(t, []string{"0"}, account.Options.Shares)
	assert.Equal(t, uint16(3), account.Options.Parameters.Parties)

	events := emitter.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventAccountCreated, events[0].Type)
}

func TestCreateAccount_UpsertByAddress(t *testing.T) {
	kr, emitter := newTestKeyring(t)
	ctx := context.Background()

	first, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	// Different casing, different share: same wallet.
	second, err := kr.CreateAccount(ctx, newShare("0xABC0000000000000000000000000000000000001", "1"), "ignored")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"0", "1"}, second.Options.Shares)
	assert.Equal(t, "Savings", second.Options.Name)
	assert.Len(t, kr.ListAccounts(), 1)

	events := emitter.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EventAccountCreated, events[0].Type)
	assert.Equal(t, EventAccountUpdated, events[1].Type)
}

func TestCreateAccount_OverwriteSameShareID(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	_, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	replacement := newShare("0xabc0000000000000000000000000000000000001", "0")
	replacement.PrivateKey = []byte(`{"secret":"rotated"}`)
	account, err := kr.CreateAccount(ctx, replacement, "Savings")
	require.NoError(t, err)

	assert.Equal(t, []string{"0"}, account.Options.Shares)

	shares, err := kr.ExportAccount(account.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.JSONEq(t, `{"secret":"rotated"}`, string(shares["0"].PrivateKey))
}

func TestCreateAccount_Validation(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	missingAddress := newShare("", "0")
	_, err := kr.CreateAccount(ctx, missingAddress, "x")
	assert.ErrorIs(t, err, ErrMissingAddress)

	missingShare := newShare("0xabc0000000000000000000000000000000000001", "")
	_, err = kr.CreateAccount(ctx, missingShare, "x")
	assert.ErrorIs(t, err, ErrMissingShareID)
}

func TestUpdateAccount_RestoresReadOnlyFields(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	modified := *account
	modified.Address = "0xffff000000000000000000000000000000000000"
	modified.Options.Name = "Renamed"
	modified.Options.Shares = []string{"bogus"}
	require.NoError(t, kr.UpdateAccount(ctx, modified))

	updated, err := kr.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Options.Name)
	assert.Equal(t, account.Address, updated.Address)
	assert.Equal(t, []string{"0"}, updated.Options.Shares)
}

func TestUpdateAccount_NotFound(t *testing.T) {
	kr, _ := newTestKeyring(t)

	err := kr.UpdateAccount(context.Background(), AccountMetadata{ID: "missing"})
	var notFound *AccountNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteKeyShare_KeepsAccount(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)
	_, err = kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "1"), "Savings")
	require.NoError(t, err)

	deleted, err := kr.DeleteKeyShare(ctx, account.ID, "0")
	require.NoError(t, err)
	assert.False(t, deleted)

	remaining, err := kr.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, remaining.Options.Shares)
}

func TestDeleteKeyShare_LastShareCascades(t *testing.T) {
	kr, emitter := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)
	emitter.Drain()

	deleted, err := kr.DeleteKeyShare(ctx, account.ID, "0")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = kr.GetAccount(account.ID)
	var notFound *AccountNotFoundError
	assert.ErrorAs(t, err, &notFound)

	events := emitter.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventAccountDeleted, events[0].Type)
	assert.Equal(t, account.ID, events[0].ID)
}

func TestDeleteKeyShare_UnknownShareOnSingleShareWallet(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	// Deleting a share that does not exist must not cascade.
	deleted, err := kr.DeleteKeyShare(ctx, account.ID, "7")
	require.NoError(t, err)
	assert.False(t, deleted)

	remaining, err := kr.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, remaining.Options.Shares)
}

func TestExportAccount_ReturnsSecrets(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	shares, err := kr.ExportAccount(account.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "0", shares["0"].KeyshareID)
	assert.NotEmpty(t, shares["0"].PrivateKey)
}

func TestGetWalletByAddress(t *testing.T) {
	kr, _ := newTestKeyring(t)
	ctx := context.Background()

	_, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	wallet, err := kr.GetWalletByAddress("0xABC0000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", wallet.Account.Address)

	_, err = kr.GetWalletByAddress("0x0000000000000000000000000000000000000000")
	var notFound *AccountNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestFilterAccountChains(t *testing.T) {
	kr, _ := newTestKeyring(t)

	chains := kr.FilterAccountChains("any-id", []string{"eip155:1", "bip122:000000000019d6689c085ae165831e93", "eip155:137"})
	assert.Equal(t, []string{"eip155:1", "eip155:137"}, chains)
}

func TestNew_RestoresPersistedState(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	kr, err := New(ctx, store, NopEmitter{}, broadcast.NewMemoryBroker(), time2.NewMockClock(time.Now()), testDappURL)
	require.NoError(t, err)
	account, err := kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.NoError(t, err)

	reloaded, err := New(ctx, store, NopEmitter{}, broadcast.NewMemoryBroker(), time2.NewMockClock(time.Now()), testDappURL)
	require.NoError(t, err)

	restored, err := reloaded.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Address, restored.Address)
	assert.Equal(t, []string{"0"}, restored.Options.Shares)
}

// failingStore accepts the initial load but rejects every save.
type failingStore struct {
	storage.Store
}

func (f *failingStore) Save(ctx context.Context, data []byte) error {
	return errors.New("disk full")
}

func TestCreateAccount_RollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	kr, err := New(ctx, &failingStore{Store: storage.NewMemoryStore()}, NopEmitter{}, broadcast.NewMemoryBroker(), time2.NewMockClock(time.Now()), testDappURL)
	require.NoError(t, err)

	_, err = kr.CreateAccount(ctx, newShare("0xabc0000000000000000000000000000000000001", "0"), "Savings")
	require.Error(t, err)

	assert.Empty(t, kr.ListAccounts())
	assert.Nil(t, kr.FindWalletByAddress("0xabc0000000000000000000000000000000000001"))
}
