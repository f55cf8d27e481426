package accounts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpc-sdk/multi-factor-accounts/internal/api"
	"github.com/mpc-sdk/multi-factor-accounts/internal/api/router"
	"github.com/mpc-sdk/multi-factor-accounts/internal/auth"
	"github.com/mpc-sdk/multi-factor-accounts/internal/broadcast"
	"github.com/mpc-sdk/multi-factor-accounts/internal/config"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring"
	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring/storage"
	"github.com/mpc-sdk/multi-factor-accounts/internal/types"
)

func newTestServer(t *testing.T, authDisabled bool) *api.Server {
	t.Helper()

	cfg := config.Server{
		Echo: config.EchoServer{HideInternalServerErrorDetails: true},
		Auth: config.AuthServer{
			Disabled:      authDisabled,
			Secret:        "test-secret",
			Issuer:        "multi-factor-accounts",
			TokenDuration: time.Hour,
		},
		Keyring: config.Keyring{DappURL: "http://localhost:7070", EventBufferSize: 16},
	}

	events := keyring.NewChannelEmitter(cfg.Keyring.EventBufferSize)
	kr, err := keyring.New(context.Background(), storage.NewMemoryStore(), events, broadcast.NewMemoryBroker(), time2.NewMockClock(time.Now()), cfg.Keyring.DappURL)
	require.NoError(t, err)

	jwt := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)
	s := api.NewServer(cfg, time2.NewMockClock(time.Now()), jwt, kr, events, broadcast.NewMemoryBroker())
	router.Init(s)
	return s
}

func doJSON(s *api.Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const createAccountBody = `{
	"name": "Savings",
	"privateKey": {
		"protocolId": "gg20",
		"privateKey": {"share": "material"},
		"publicKey": "04deadbeef",
		"address": "0xAbC0000000000000000000000000000000000001",
		"keyshareId": "0",
		"parameters": {"parties": 3, "threshold": 1}
	}
}`

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(s, http.MethodPost, "/api/v1/accounts", createAccountBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var account keyring.AccountMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", account.Address)
	assert.Equal(t, []string{"0"}, account.Options.Shares)

	rec = doJSON(s, http.MethodGet, "/api/v1/accounts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []keyring.AccountMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(s, http.MethodGet, "/api/v1/accounts/"+account.ID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodGet, "/api/v1/accounts/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/v1/accounts/"+account.ID+"/chains", `{"chains":["eip155:1","bip122:x"]}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chains types.FilterChainsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chains))
	assert.Equal(t, []string{"eip155:1"}, chains.Chains)

	// Deleting the only share cascades into account deletion.
	rec = doJSON(s, http.MethodDelete, "/api/v1/accounts/"+account.ID+"/shares/0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted types.DeleteKeyShareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.True(t, deleted.DeletedAccount)

	rec = doJSON(s, http.MethodGet, "/api/v1/accounts/"+account.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAccount_RejectsMissingKey(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(s, http.MethodPost, "/api/v1/accounts", `{"name":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestRoutes(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(s, http.MethodPost, "/api/v1/accounts", createAccountBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	submit := `{
		"id": "req-1",
		"request": {
			"method": "eth_signTransaction",
			"params": [{"from": "0xabc0000000000000000000000000000000000001"}]
		}
	}`
	rec = doJSON(s, http.MethodPost, "/api/v1/requests", submit, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var submitted keyring.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.True(t, submitted.Pending)
	assert.Contains(t, submitted.Redirect.URL, "/#/approve/req-1")

	rec = doJSON(s, http.MethodGet, "/api/v1/requests/req-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail types.PendingRequestDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.NotNil(t, detail.Account)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", detail.Account.Address)

	rec = doJSON(s, http.MethodPost, "/api/v1/requests/req-1/approve", `{"result":{"r":"0x01"}}`, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Second resolution fails.
	rec = doJSON(s, http.MethodPost, "/api/v1/requests/req-1/approve", `{"result":{"r":"0x01"}}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_RequiredWhenEnabled(t *testing.T) {
	s := newTestServer(t, false)

	rec := doJSON(s, http.MethodGet, "/api/v1/accounts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := s.JWT.Generate("host-1")
	require.NoError(t, err)

	rec = doJSON(s, http.MethodGet, "/api/v1/accounts", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
