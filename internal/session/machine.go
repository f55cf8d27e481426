package session

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
	"github.com/mpc-sdk/multi-factor-accounts/internal/rendezvous"
)

// Outcome is the result carried by a completed session: a fresh key
// share for keygen sessions or a signature for signing sessions.
type Outcome struct {
	PrivateKey *mpc.PrivateKeyRecord
	Signature  *mpc.Signature
}

// Machine is the session state machine. It advances one step at a
// time; each step validates its own input before the transition and
// invalid input leaves the state unchanged.
//
// A Machine is owned by a single caller and is not safe for concurrent
// use. Relay and module failures abort the operation at the current
// step; the machine never retries on its own.
type Machine struct {
	ownerType   OwnerType
	sessionType SessionType
	step        Step

	create CreateState
	join   JoinState

	client  *rendezvous.Client
	module  mpc.Module
	server  mpc.ServerOptions
	keypair mpc.Keypair

	meeting *rendezvous.MeetingInfo
	// Peer public keys in identifier order, self excluded.
	peers []string
	data  rendezvous.AssociatedData

	// Signing sessions only.
	signingKey  *mpc.PrivateKeyRecord
	messageHex  string
	transaction json.RawMessage

	outcome *Outcome
}

// NewInitiator starts the initiator wizard at the audience step.
func NewInitiator(sessionType SessionType, client *rendezvous.Client, module mpc.Module, server mpc.ServerOptions, keypair mpc.Keypair) *Machine {
	return &Machine{
		ownerType:   OwnerInitiator,
		sessionType: sessionType,
		step:        StepChoosingAudience,
		client:      client,
		module:      module,
		server:      server,
		keypair:     keypair,
	}
}

// NewParticipant starts the participant path at the join step, using
// the meeting and user identifiers from an invitation link.
func NewParticipant(sessionType SessionType, client *rendezvous.Client, module mpc.Module, server mpc.ServerOptions, keypair mpc.Keypair, meetingID, userID string) *Machine {
	return &Machine{
		ownerType:   OwnerParticipant,
		sessionType: sessionType,
		step:        StepAwaitingMeetingJoin,
		join:        JoinState{MeetingID: meetingID, UserID: userID},
		client:      client,
		module:      module,
		server:      server,
		keypair:     keypair,
	}
}

func (m *Machine) OwnerType() OwnerType     { return m.ownerType }
func (m *Machine) SessionType() SessionType { return m.sessionType }
func (m *Machine) Step() Step               { return m.step }

// State returns a copy of the initiator variant state.
func (m *Machine) State() CreateState { return m.create }

// Meeting returns the meeting info registered by Confirm, or nil.
func (m *Machine) Meeting() *rendezvous.MeetingInfo { return m.meeting }

// AssociatedData returns the data published at meeting creation, only
// available once Await has resolved.
func (m *Machine) AssociatedData() rendezvous.AssociatedData { return m.data }

// Outcome returns the session result once the machine is complete.
func (m *Machine) Outcome() *Outcome { return m.outcome }

// ChooseAudience records the key share audience and advances.
func (m *Machine) ChooseAudience(audience Audience) error {
	if m.step != StepChoosingAudience {
		return &TransitionError{Step: m.step, Op: "choose audience"}
	}
	if audience != AudienceSelf && audience != AudienceShared {
		return &ValidationError{Field: "audience", Reason: "must be self or shared"}
	}
	m.create.Audience = audience
	m.step = StepNamingKey
	return nil
}

// SetName records the human-friendly key name and advances.
func (m *Machine) SetName(name string) error {
	if m.step != StepNamingKey {
		return &TransitionError{Step: m.step, Op: "set name"}
	}
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	m.create.Name = name
	m.step = StepChoosingParties
	return nil
}

// SetParties records the number of key shares and advances.
func (m *Machine) SetParties(parties uint16) error {
	if m.step != StepChoosingParties {
		return &TransitionError{Step: m.step, Op: "set parties"}
	}
	if parties < 2 {
		return &ValidationError{Field: "parties", Reason: "at least two parties are required"}
	}
	m.create.Parties = parties
	m.step = StepChoosingThreshold
	return nil
}

// SetThreshold records the human-facing threshold and advances to the
// confirmation step.
func (m *Machine) SetThreshold(threshold uint16) error {
	if m.step != StepChoosingThreshold {
		return &TransitionError{Step: m.step, Op: "set threshold"}
	}
	if threshold < 1 || threshold > m.create.Parties {
		return &ValidationError{Field: "threshold", Reason: "must be between 1 and the number of parties"}
	}
	m.create.Threshold = threshold
	m.step = StepConfirm
	return nil
}

// WithSigningMessage attaches the payload of a signing session. Must
// be set on the initiator before Confirm; the transaction payload and
// chosen key share travel to the participants as associated data.
func (m *Machine) WithSigningMessage(key *mpc.PrivateKeyRecord, messageHex string, transaction json.RawMessage) *Machine {
	m.signingKey = key
	m.messageHex = messageHex
	m.transaction = transaction
	return m
}

// SetSigningKey provides the participant's own key share for a signing
// session, resolved from the keyring using the key share identifier in
// the associated data.
func (m *Machine) SetSigningKey(key *mpc.PrivateKeyRecord) {
	m.signingKey = key
}

// Back moves the wizard one step backwards. From the first step it
// returns true to signal that the wizard exits instead.
func (m *Machine) Back() bool {
	first := StepChoosingAudience
	if m.ownerType == OwnerParticipant {
		first = StepAwaitingMeetingJoin
	}
	if m.step == first {
		return true
	}
	if m.ownerType == OwnerParticipant {
		// The participant path has no intermediate steps to revisit;
		// anything after the join step restarts at the join step.
		m.step = StepAwaitingMeetingJoin
		return false
	}
	m.step--
	return false
}

// Confirm registers the meeting point with the relay server: fresh
// identifiers are generated for every slot (the first belongs to the
// initiator) and the session parameters are published as associated
// data. On success the machine waits at AwaitingMeeting.
func (m *Machine) Confirm(ctx context.Context) (*rendezvous.MeetingInfo, error) {
	if m.step != StepConfirm {
		return nil, &TransitionError{Step: m.step, Op: "confirm"}
	}
	if m.sessionType == SessionSign && (m.signingKey == nil || m.messageHex == "") {
		return nil, &ValidationError{Field: "message", Reason: "signing sessions require a key share and message"}
	}

	identifiers := rendezvous.NewIdentifiers(int(m.create.Parties))
	initiatorID := identifiers[0]

	data := rendezvous.AssociatedData{
		DataName:      m.create.Name,
		DataParties:   m.create.Parties,
		DataThreshold: m.create.Threshold,
	}
	if m.sessionType == SessionSign {
		data[DataMessage] = m.messageHex
		data[DataKeyshareID] = m.signingKey.KeyshareID
		if len(m.transaction) > 0 {
			data[DataTransaction] = json.RawMessage(m.transaction)
		}
	}

	meetingID, err := m.client.CreateMeeting(ctx, identifiers, initiatorID, data)
	if err != nil {
		return nil, err
	}

	m.meeting = &rendezvous.MeetingInfo{MeetingID: meetingID, Identifiers: identifiers}
	m.step = StepAwaitingMeeting
	return m.meeting, nil
}

// InviteLinks builds one invitation link per non-initiator slot. The
// query parameters only serve early display on the join screen; the
// authoritative values travel as associated data.
func (m *Machine) InviteLinks(base string) ([]string, error) {
	if m.meeting == nil {
		return nil, &TransitionError{Step: m.step, Op: "build invite links"}
	}

	prefix := rendezvous.KeygenInvitePrefix
	if m.sessionType == SessionSign {
		prefix = rendezvous.SignInvitePrefix
	}

	params := url.Values{}
	params.Set(DataName, m.create.Name)
	params.Set(DataParties, strconv.Itoa(int(m.create.Parties)))
	params.Set(DataThreshold, strconv.Itoa(int(m.create.Threshold)))

	links := make([]string, 0, len(m.meeting.Identifiers)-1)
	for _, id := range m.meeting.Identifiers[1:] {
		links = append(links, rendezvous.InviteURL(base, prefix, m.meeting.MeetingID, id, params))
	}
	return links, nil
}

// Await joins the caller's own rendezvous slot and suspends until
// every slot has joined. Creation alone does not register presence, so
// the initiator goes through the same join path as everyone else.
func (m *Machine) Await(ctx context.Context) error {
	var meetingID, userID string
	switch m.step {
	case StepAwaitingMeeting:
		meetingID = m.meeting.MeetingID
		userID = m.meeting.Identifiers[0]
	case StepAwaitingMeetingJoin:
		meetingID = m.join.MeetingID
		userID = m.join.UserID
	default:
		return &TransitionError{Step: m.step, Op: "await meeting"}
	}

	publicKeys, data, err := m.client.JoinMeeting(ctx, meetingID, userID)
	if err != nil {
		return err
	}

	// The module treats self implicitly, so the caller's own public
	// key is removed while preserving the identifier order.
	peers := make([]string, 0, len(publicKeys))
	for _, key := range publicKeys {
		if key == m.keypair.PublicKey {
			continue
		}
		peers = append(peers, key)
	}
	m.peers = peers
	m.data = data

	if m.ownerType == OwnerParticipant {
		m.create.Name = data.String(DataName)
		m.create.Parties = data.Uint(DataParties)
		m.create.Threshold = data.Uint(DataThreshold)
		if m.sessionType == SessionSign {
			m.messageHex = data.String(DataMessage)
		}
	}

	log.Info().
		Str("session_type", string(m.sessionType)).
		Str("meeting_id", meetingID).
		Int("peers", len(peers)).
		Msg("meeting resolved, all participants present")

	m.step = StepExecuting
	return nil
}

// Execute invokes the cryptographic module. The protocol-level
// threshold is one less than the human-facing count.
func (m *Machine) Execute(ctx context.Context) (*Outcome, error) {
	if m.step != StepExecuting {
		return nil, &TransitionError{Step: m.step, Op: "execute"}
	}

	opts := mpc.Options{
		Server:     m.server,
		Keypair:    m.keypair.PEM,
		ProtocolID: mpc.ProtocolGG20,
		Parameters: mpc.Parameters{
			Parties:   m.create.Parties,
			Threshold: m.create.Threshold - 1,
		},
	}

	switch m.sessionType {
	case SessionKeygen:
		privateKey, err := m.module.Keygen(ctx, opts, m.peers)
		if err != nil {
			return nil, errors.Wrap(err, "key generation failed")
		}
		m.outcome = &Outcome{PrivateKey: privateKey}
	case SessionSign:
		if m.signingKey == nil {
			return nil, &ValidationError{Field: "signingKey", Reason: "signing sessions require the local key share"}
		}
		signature, err := m.module.Sign(ctx, opts, m.peers, m.signingKey, m.messageHex)
		if err != nil {
			return nil, errors.Wrap(err, "signing failed")
		}
		m.outcome = &Outcome{Signature: signature}
	default:
		return nil, errors.Errorf("unknown session type %q", m.sessionType)
	}

	m.step = StepComplete
	return m.outcome, nil
}
