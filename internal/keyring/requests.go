package keyring

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/chain"
)

const redirectMessage = "Redirecting to multi-factor accounts to sign transaction"

// SubmitRequest queues a signing request from the host runtime and
// returns a redirect descriptor pointing at this wallet's approval
// route for the request.
func (k *Keyring) SubmitRequest(ctx context.Context, id string, request RequestPayload) (*SubmitResponse, error) {
	if id == "" {
		return nil, errors.New("request id is required")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	snapshot := k.state.clone()
	k.state.PendingRequests[id] = &PendingRequest{
		ID:          id,
		Request:     request,
		SubmittedAt: k.clock.Now(),
	}

	if err := k.persistLocked(ctx, snapshot); err != nil {
		return nil, err
	}

	log.Info().Str("request_id", id).Str("method", request.Method).Msg("signing request queued")
	return &SubmitResponse{
		Pending: true,
		Redirect: Redirect{
			URL:     strings.TrimRight(k.dappURL, "/") + "/#/approve/" + id,
			Message: redirectMessage,
		},
	}, nil
}

// ListRequests returns every pending signing request.
func (k *Keyring) ListRequests() []*PendingRequest {
	k.mu.Lock()
	defer k.mu.Unlock()

	requests := make([]*PendingRequest, 0, len(k.state.PendingRequests))
	for _, request := range k.state.PendingRequests {
		copied := *request
		requests = append(requests, &copied)
	}
	return requests
}

// GetRequest returns a single pending request.
func (k *Keyring) GetRequest(id string) (*PendingRequest, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	request, ok := k.state.PendingRequests[id]
	if !ok {
		return nil, &RequestNotFoundError{ID: id}
	}
	copied := *request
	return &copied, nil
}

// GetPendingRequest returns a request paired with the account whose
// address matches the request's transaction sender.
func (k *Keyring) GetPendingRequest(id string) (*PendingRequestDetail, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	request, ok := k.state.PendingRequests[id]
	if !ok {
		return nil, &RequestNotFoundError{ID: id}
	}
	copied := *request
	detail := &PendingRequestDetail{Request: &copied}

	from, err := request.FromAddress()
	if err != nil {
		log.Debug().Err(err).Str("request_id", id).Msg("request has no resolvable sender")
		return detail, nil
	}

	if wallet := k.findWalletByAddressLocked(chain.NormalizeAddress(from)); wallet != nil {
		account := wallet.clone().Account
		detail.Account = &account
	}
	return detail, nil
}

// ApproveRequest resolves a request with a caller-supplied signed
// result. The request is removed from the queue; a second resolution
// attempt fails with RequestNotFoundError.
func (k *Keyring) ApproveRequest(ctx context.Context, id string, result json.RawMessage) error {
	if len(result) == 0 {
		return ErrMissingResult
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.state.PendingRequests[id]; !ok {
		return &RequestNotFoundError{ID: id}
	}

	snapshot := k.state.clone()
	delete(k.state.PendingRequests, id)

	return k.commitLocked(ctx, snapshot, Event{Type: EventRequestApproved, ID: id, Result: result})
}

// RejectRequest resolves a request negatively and removes it from the
// queue.
func (k *Keyring) RejectRequest(ctx context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.state.PendingRequests[id]; !ok {
		return &RequestNotFoundError{ID: id}
	}

	snapshot := k.state.clone()
	delete(k.state.PendingRequests, id)

	return k.commitLocked(ctx, snapshot, Event{Type: EventRequestRejected, ID: id})
}

// persistLocked saves the state without emitting an event.
func (k *Keyring) persistLocked(ctx context.Context, snapshot State) error {
	data, err := json.Marshal(&k.state)
	if err != nil {
		k.state = snapshot
		return errors.Wrap(err, "failed to encode keyring state")
	}
	if err := k.store.Save(ctx, data); err != nil {
		k.state = snapshot
		return errors.Wrap(err, "failed to persist keyring state")
	}
	return nil
}
