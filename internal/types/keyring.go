// Package types holds the request and response payloads of the
// keyring RPC surface.
package types

import (
	"encoding/json"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"

	"github.com/mpc-sdk/multi-factor-accounts/internal/keyring"
	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

// CreateAccountPayload hands a freshly produced key share to the
// keyring.
type CreateAccountPayload struct {
	Name       string                `json:"name"`
	PrivateKey *mpc.PrivateKeyRecord `json:"privateKey"`
}

func (p *CreateAccountPayload) Validate() error {
	if p.PrivateKey == nil {
		return errors.New("a private key share must be given to create an account")
	}
	return nil
}

// UpdateAccountPayload carries the caller-supplied account fields.
type UpdateAccountPayload struct {
	Account *keyring.AccountMetadata `json:"account"`
}

func (p *UpdateAccountPayload) Validate() error {
	if p.Account == nil || p.Account.ID == "" {
		return errors.New("an account with an id must be given")
	}
	return nil
}

// FilterChainsPayload asks which of the given chains an account is
// compatible with.
type FilterChainsPayload struct {
	Chains []string `json:"chains"`
}

// FilterChainsResponse is the compatible subset.
type FilterChainsResponse struct {
	Chains []string `json:"chains"`
}

// SubmitRequestPayload queues a signing request from the host runtime.
type SubmitRequestPayload struct {
	ID      *string                 `json:"id"`
	Request *keyring.RequestPayload `json:"request"`
}

func (p *SubmitRequestPayload) Validate() error {
	if swag.StringValue(p.ID) == "" {
		return errors.New("a request id must be given")
	}
	if p.Request == nil {
		return errors.New("a request body must be given")
	}
	return nil
}

// ApproveRequestPayload resolves a pending request with a signed
// result.
type ApproveRequestPayload struct {
	Result json.RawMessage `json:"result"`
}

// PendingRequestResponse is the wire form of a pending request.
type PendingRequestResponse struct {
	ID          string                 `json:"id"`
	Request     keyring.RequestPayload `json:"request"`
	SubmittedAt strfmt.DateTime        `json:"submittedAt"`
}

func NewPendingRequestResponse(request *keyring.PendingRequest) *PendingRequestResponse {
	return &PendingRequestResponse{
		ID:          request.ID,
		Request:     request.Request,
		SubmittedAt: strfmt.DateTime(request.SubmittedAt),
	}
}

// PendingRequestDetailResponse pairs a pending request with the
// account resolved from the request's transaction sender, when any.
type PendingRequestDetailResponse struct {
	Request *PendingRequestResponse  `json:"request"`
	Account *keyring.AccountMetadata `json:"account,omitempty"`
}

// DeleteKeyShareResponse reports whether removing a share cascaded
// into deleting the whole account.
type DeleteKeyShareResponse struct {
	DeletedAccount bool `json:"deletedAccount"`
}

// EventsResponse carries buffered keyring lifecycle events.
type EventsResponse struct {
	Events []keyring.Event `json:"events"`
}
