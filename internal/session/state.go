// Package session drives the initiator and participant wizards that
// bring a set of independent parties into a consistent, ordered state
// before the cryptographic module is invoked.
package session

// OwnerType discriminates who is driving the session.
type OwnerType string

const (
	// OwnerInitiator created the session.
	OwnerInitiator OwnerType = "initiator"
	// OwnerParticipant joined via an invitation link.
	OwnerParticipant OwnerType = "participant"
)

// SessionType discriminates what the session produces.
type SessionType string

const (
	// SessionKeygen is a distributed key generation session.
	SessionKeygen SessionType = "keygen"
	// SessionSign is a threshold signing session.
	SessionSign SessionType = "sign"
)

// Audience is the intended audience for a key share.
type Audience string

const (
	AudienceSelf   Audience = "self"
	AudienceShared Audience = "shared"
)

// Step is a single state of the wizard.
type Step int

const (
	// Initiator path.
	StepChoosingAudience Step = iota
	StepNamingKey
	StepChoosingParties
	StepChoosingThreshold
	StepConfirm
	StepAwaitingMeeting
	StepExecuting
	StepComplete

	// Participant path.
	StepAwaitingMeetingJoin
)

func (s Step) String() string {
	switch s {
	case StepChoosingAudience:
		return "choosing-audience"
	case StepNamingKey:
		return "naming-key"
	case StepChoosingParties:
		return "choosing-parties"
	case StepChoosingThreshold:
		return "choosing-threshold"
	case StepConfirm:
		return "confirm"
	case StepAwaitingMeeting:
		return "awaiting-meeting"
	case StepExecuting:
		return "executing"
	case StepComplete:
		return "complete"
	case StepAwaitingMeetingJoin:
		return "awaiting-meeting-join"
	}
	return "unknown"
}

// CreateState is the initiator variant of the session state. Parties
// and Threshold are the human-facing counts ("require Threshold of
// Parties").
type CreateState struct {
	Audience  Audience
	Name      string
	Parties   uint16
	Threshold uint16
}

// JoinState is the participant variant of the session state, obtained
// from an invitation link.
type JoinState struct {
	MeetingID string
	UserID    string
}

// Associated data keys published via the meeting point.
const (
	DataName        = "name"
	DataParties     = "parties"
	DataThreshold   = "threshold"
	DataMessage     = "message"
	DataTransaction = "transaction"
	DataKeyshareID  = "keyshareId"
)
